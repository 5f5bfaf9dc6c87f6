package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_FixedWindow(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("skipping integration test: REDIS_ADDR not set")
	}
	rc := redis.NewClient(&redis.Options{Addr: addr})
	defer rc.Close()
	require.NoError(t, rc.Ping(context.Background()).Err())

	s := NewRedisStore(rc)
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/email/1", nil), httptest.NewRecorder())
	key := "test:" + uuid.NewString()
	defer rc.Del(context.Background(), "relay:rl:"+key)

	for i := 0; i < 2; i++ {
		ok, _, err := s.Allow(c, key, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, retry, err := s.Allow(c, key, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 60)
}
