package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eventfootprint/eventfootprint/internal/api/middleware"
	"github.com/eventfootprint/eventfootprint/internal/auth"
)

func serve(h http.Handler, remoteAddr, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test/path", http.NoBody)
	req.RemoteAddr = remoteAddr
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	cfg := middleware.RateLimitConfig{RequestLimit: 3, WindowLength: time.Minute}
	handler := middleware.RequestID(middleware.RateLimitByIP(cfg)(okHandler()))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(handler, "10.0.0.1:12345", "").Code, "request %d", i+1)
	}

	rec := serve(handler, "10.0.0.1:12345", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too-many-requests")
	assert.Contains(t, rec.Body.String(), "/test/path")

	assert.Equal(t, http.StatusOK, serve(handler, "10.0.0.2:12345", "").Code, "other IPs keep their own budget")
}

func TestRateLimitByUser_KeysOnSubject(t *testing.T) {
	cfg := middleware.RateLimitConfig{RequestLimit: 2, WindowLength: time.Minute}
	handler := middleware.Auth(testJWT())(middleware.RateLimitByUser(cfg)(okHandler()))
	tok := token(t, auth.RoleAdmin)

	assert.Equal(t, http.StatusOK, serve(handler, "192.168.1.1:1", tok).Code)
	assert.Equal(t, http.StatusOK, serve(handler, "192.168.1.2:1", tok).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, "192.168.1.3:1", tok).Code,
		"the same subject is limited across IPs")
}

func TestRateLimitByUser_FallsBackToIP(t *testing.T) {
	cfg := middleware.RateLimitConfig{RequestLimit: 1, WindowLength: time.Minute}
	handler := middleware.RateLimitByUser(cfg)(okHandler())

	assert.Equal(t, http.StatusOK, serve(handler, "172.16.0.1:1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, "172.16.0.1:1", "").Code)
	assert.Equal(t, http.StatusOK, serve(handler, "172.16.0.2:1", "").Code)
}

func TestDefaultRateLimitConfigs(t *testing.T) {
	assert.Equal(t, 10, middleware.SubmitRateLimit.RequestLimit)
	assert.Greater(t, middleware.IntakeRateLimit.RequestLimit, middleware.StandardRateLimit.RequestLimit)
	assert.Equal(t, time.Minute, middleware.StandardRateLimit.WindowLength)
}
