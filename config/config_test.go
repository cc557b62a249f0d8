package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv(envMap(nil))

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "manajemen_risiko", cfg.DatabaseName)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, []byte("secret"), cfg.JWTKey)
	assert.Len(t, cfg.Warnings, 2)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"PORT":         "9090",
		"MONGODB_URI":  "mongodb://db:27017",
		"JWT_SECRET":   "s3cr3t",
		"JWT_EXPIRE":   "7d",
		"APP_ENV":      "production",
		"CORS_ORIGINS": "https://rs.example.org, https://admin.example.org ,",
	}))

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiration)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://rs.example.org", "https://admin.example.org"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.Warnings)
}

func TestFromEnvProductionWithoutSecret(t *testing.T) {
	a := FromEnv(envMap(map[string]string{"APP_ENV": "production"}))
	b := FromEnv(envMap(map[string]string{"APP_ENV": "production"}))

	assert.Len(t, a.JWTKey, 32)
	assert.NotEqual(t, []byte("secret"), a.JWTKey)
	assert.NotEqual(t, a.JWTKey, b.JWTKey)
	assert.Contains(t, a.Warnings, "JWT_SECRET not set in production, using a random key for this process")
}

func TestFromEnvLegacyMongoURI(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{"MONGO_URI": "mongodb://legacy:27017"}))
	assert.Equal(t, "mongodb://legacy:27017", cfg.MongoURI)
}

func TestFromEnvInvalidExpire(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{"JWT_EXPIRE": "soon", "JWT_SECRET": "x"}))
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Contains(t, cfg.Warnings, "invalid JWT_EXPIRE soon, using 24h")
}

func TestParseExpire(t *testing.T) {
	d, err := parseExpire("90m")
	assert.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	d, err = parseExpire("2d")
	assert.NoError(t, err)
	assert.Equal(t, 48*time.Hour, d)
}
