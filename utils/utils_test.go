package utils

import (
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, 418, "teapot")

	assert.Equal(t, 418, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"teapot"}`, rec.Body.String())
}

func TestPasswordHash(t *testing.T) {
	SetBcryptCost(4)
	hash, err := HashPassword("rahasia123")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("rahasia123", hash))
	assert.False(t, CheckPasswordHash("salah", hash))
}

func TestGenerateCode(t *testing.T) {
	assert.Equal(t, "RSK-2025-0042", GenerateCode("RSK", 2025, 42))
	assert.Equal(t, "PLG-2025-12345", GenerateCode("PLG", 2025, 12345))
	assert.Regexp(t, regexp.MustCompile(`^RS-\d{4}-0001$`), GenerateCode("RS", 0, 1))
	assert.Len(t, GenerateRandomPassword(12), 12)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate("2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.March, d.Month())

	_, err = ParseDate("31/03/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestTokenSigner(t *testing.T) {
	signer := NewTokenSigner([]byte("k"), time.Hour)
	tok, err := signer.Generate("u1", "Dr. Sari", "admin", "o1")
	require.NoError(t, err)

	claims, err := signer.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "o1", claims.OrganizationID)

	_, err = NewTokenSigner([]byte("other"), time.Hour).Validate(tok)
	assert.Error(t, err)

	expired, err := NewTokenSigner([]byte("k"), -time.Minute).Generate("u1", "n", "admin", "o1")
	require.NoError(t, err)
	_, err = signer.Validate(expired)
	assert.Error(t, err)
}
