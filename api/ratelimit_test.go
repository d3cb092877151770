package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-blog-backend/metrics"
)

func TestMemoryLimiter_PerKeyBudget(t *testing.T) {
	l := newMemoryLimiter(3)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, retry, err := l.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, 20*time.Second, retry, float64(time.Second))

	ok, _, err = l.Allow(ctx, "login:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	called := false
	h := rateLimitMiddleware(failingLimiter{}, metrics.Nop{}, "login")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "10.0.0.7", clientIP(req))

	req.RemoteAddr = "10.0.0.7"
	assert.Equal(t, "10.0.0.7", clientIP(req))
}
