package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimiterMiddleware(t *testing.T) {
	rl := newRateLimiter(rate.Every(time.Hour), 2, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest("GET", "/api/suggest", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	t.Run("burst allowed then 429", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)

		w := do("10.0.0.1:1234")
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})

	t.Run("addresses are limited independently", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do("10.0.0.2:999").Code)
	})

	t.Run("port changes do not reset the bucket", func(t *testing.T) {
		assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:9999").Code)
	})
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", clientIP(r))

	// Forwarding headers are ignored.
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "192.0.2.7", clientIP(r))

	r.RemoteAddr = "unparseable"
	assert.Equal(t, "unparseable", clientIP(r))
}
