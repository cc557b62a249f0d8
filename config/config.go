// config/config.go
package config

import (
	"crypto/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const jwtKeySize = 32

type Config struct {
	Port          string
	MongoURI      string
	DatabaseName  string
	JWTKey        []byte
	JWTExpiration time.Duration
	StaticDir     string
	LogLevel      string
	Env           string
	CORSOrigins   []string

	// Warnings collected while loading; logged once the logger exists.
	Warnings []string
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) *Config {
	cfg := &Config{
		Port:         valueOr(getenv("PORT"), "8080"),
		MongoURI:     valueOr(getenv("MONGODB_URI"), getenv("MONGO_URI")),
		DatabaseName: valueOr(getenv("MONGODB_DATABASE"), "manajemen_risiko"),
		StaticDir:    valueOr(getenv("STATIC_DIR"), "./frontend"),
		LogLevel:     valueOr(getenv("LOG_LEVEL"), "info"),
		Env:          valueOr(getenv("APP_ENV"), "development"),
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
		cfg.Warnings = append(cfg.Warnings, "MONGODB_URI not set, using mongodb://localhost:27017")
	}

	cfg.JWTKey = []byte(getenv("JWT_SECRET"))
	if len(cfg.JWTKey) == 0 {
		if cfg.IsProduction() {
			// Tokens signed with a per-process key stop validating after a restart.
			cfg.JWTKey = randomKey()
			cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set in production, using a random key for this process")
		} else {
			cfg.JWTKey = []byte("secret")
			cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using insecure default")
		}
	}

	cfg.JWTExpiration = 24 * time.Hour
	if expireStr := getenv("JWT_EXPIRE"); expireStr != "" {
		dur, err := parseExpire(expireStr)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, "invalid JWT_EXPIRE "+expireStr+", using 24h")
		} else {
			cfg.JWTExpiration = dur
		}
	}

	for _, origin := range strings.Split(getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// parseExpire accepts Go durations plus a day suffix ("7d").
func parseExpire(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := time.ParseDuration(strings.TrimSuffix(s, "d") + "h")
		if err != nil {
			return 0, err
		}
		return days * 24, nil
	}
	return time.ParseDuration(s)
}

func randomKey() []byte {
	key := make([]byte, jwtKeySize)
	if _, err := rand.Read(key); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return key
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
