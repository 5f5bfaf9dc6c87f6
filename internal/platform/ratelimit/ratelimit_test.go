package ratelimit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.POST("/email/:id", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, mw)
	return e
}

func post(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/email/1", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_BlocksAfterLimit(t *testing.T) {
	e := newEcho(Middleware(Policy{Name: "relay:email", Limit: 2, Window: time.Minute}))

	assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)

	rec := post(e, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, post(e, "10.0.0.2").Code)
}

func TestMemoryStore_WindowReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &memoryStore{buckets: map[string]*bucket{}, now: func() time.Time { return now }}

	ok, _, _ := s.Allow(nil, "k", 1, time.Minute)
	assert.True(t, ok)
	ok, retry, _ := s.Allow(nil, "k", 1, time.Minute)
	assert.False(t, ok)
	assert.Equal(t, 60, retry)

	now = now.Add(61 * time.Second)
	ok, _, _ = s.Allow(nil, "k", 1, time.Minute)
	assert.True(t, ok)
}

type failingStore struct{}

func (failingStore) Allow(echo.Context, string, int, time.Duration) (bool, int, error) {
	return false, 0, errors.New("redis down")
}

func TestMiddlewareWithStore_FailsOpen(t *testing.T) {
	e := newEcho(MiddlewareWithStore(Policy{Name: "relay:email", Limit: 1}, failingStore{}))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)
	}
}

func TestKeyIP(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/sms/1", nil)
	req.RemoteAddr = "192.0.2.7:999"
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "relay:sms:ip:192.0.2.7", KeyIP("relay:sms")(c))
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(3), toInt64(int64(3)))
	assert.Equal(t, int64(4), toInt64(uint64(4)))
	assert.Equal(t, int64(0), toInt64("x"))
}
