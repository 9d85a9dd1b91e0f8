package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func doRequest(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/worker/process", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 5, time.Minute)
	defer rl.Stop()
	h := rl.Middleware()(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(h, "1.2.3.4:1234").Code, "запрос %d", i)
	}
}

func TestRateLimiter_BlocksOverBurst(t *testing.T) {
	rl := NewRateLimiter(0.5, 2, time.Minute)
	defer rl.Stop()
	h := rl.Middleware()(okHandler())

	before := testutil.ToFloat64(rateLimitedTotal)
	doRequest(h, "1.2.3.4:1234")
	doRequest(h, "1.2.3.4:1234")
	rec := doRequest(h, "1.2.3.4:1234")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimitedTotal))
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.1, 1, time.Minute)
	defer rl.Stop()
	h := rl.Middleware()(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, "1.1.1.1:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "1.1.1.1:2000").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "2.2.2.2:1000").Code)
}

func TestRateLimiter_StopIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	rl.Stop()
	rl.Stop()
}
