package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mukhsinh/manajemenresiko-sub007/handlers"
	"github.com/Mukhsinh/manajemenresiko-sub007/routes"
)

func TestHealthCheck(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.HealthCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "connected", resp.Database)
}

func TestPagesServeIndex(t *testing.T) {
	e := newEnv(t)
	for _, p := range routes.Pages {
		rec := e.do(http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, p)
		assert.Contains(t, rec.Body.String(), "<html", p)
	}

	rec := e.do(http.MethodGet, "/app.js", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	for _, p := range []string{"/halaman-yang-tidak-ada", "/api/tidak-ada", "/manajemen-risiko"} {
		assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, p, "", nil).Code, p)
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/ws/audit", "", nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/ws/audit?token="+e.tokens["viewer"], nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ws", rec.Body.String())
}
