package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tourbook/internal/config"
)

func authConfig(enabled bool) config.APIConfig {
	return config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled:      enabled,
			HeaderAPIKey: "x-api-key",
			APIKeys: []config.APIClientKey{
				{Key: "admin-key", Name: "admin", Permissions: nil},
				{Key: "reader-key", Name: "reader", Permissions: []string{"bookings:read"}},
			},
		},
	}
}

func wrapOK(cfg config.APIConfig) http.Handler {
	auth := NewHTTPAuth(cfg)
	return auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthOpenRoutesNeedNoKey(t *testing.T) {
	handler := wrapOK(authConfig(true))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/drafts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthProtectedRouteRequiresKey(t *testing.T) {
	handler := wrapOK(authConfig(true))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInvalidKey(t *testing.T) {
	handler := wrapOK(authConfig(true))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("x-api-key", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthValidKey(t *testing.T) {
	handler := wrapOK(authConfig(true))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("x-api-key", "reader-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthPermissionDenied(t *testing.T) {
	handler := wrapOK(authConfig(true))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/export", nil)
	req.Header.Set("x-api-key", "reader-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthEmptyPermissionsAllowAll(t *testing.T) {
	handler := wrapOK(authConfig(true))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/export", nil)
	req.Header.Set("x-api-key", "admin-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthDisabledSkipsChecks(t *testing.T) {
	handler := wrapOK(authConfig(false))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/export", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := authConfig(false)
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 2}
	handler := wrapOK(cfg)

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
	assert.Equal(t, http.StatusTooManyRequests, statuses[3])
}
