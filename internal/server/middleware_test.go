package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodOptions, "/notes", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, env.cfg.AllowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSHeadersOnNormalResponses(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, env.cfg.AllowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	env := newTestEnv(t)

	req := func(header string) int {
		r := httptest.NewRequest(http.MethodGet, "/notes", nil)
		r.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, req("Basic dXNlcjpwYXNz"))
	assert.Equal(t, http.StatusUnauthorized, req("Bearer"))
}

func TestResponseEnvelopeShape(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/blog", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	envl := parseEnvelope(t, w)
	assert.True(t, envl.Success)
	assert.Zero(t, envl.Total)
	assert.Empty(t, envl.Error)
}
