package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queuepro/internal/config"
)

func bucketConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: 12 * time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "user_route",
		Prefix:         "queuepro:rl",
	}
}

// matchBucket matches a token-bucket EVALSHA on its script, key and
// capacity; the timestamp argument changes on every call.
func matchBucket(key string, capacity int) redismock.CustomMatch {
	return func(_, actual []interface{}) error {
		if actual[1] != tokenBucket.Hash() {
			return fmt.Errorf("unexpected script %v", actual[1])
		}
		if actual[3] != key {
			return fmt.Errorf("unexpected key %v", actual[3])
		}
		if fmt.Sprint(actual[5]) != fmt.Sprint(capacity) {
			return fmt.Errorf("unexpected capacity %v", actual[5])
		}
		return nil
	}
}

func issueRoute(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.POST("/v1/tokens", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, mw)
	return e
}

func postTokens(e *echo.Echo) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/tokens", nil))
	return rec
}

func TestTokenBucketAllowsAndDenies(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cfg := bucketConfig()
	key := "queuepro:rl:user:anon:route:POST /v1/tokens"
	e := issueRoute(NewTokenBucket(cfg, rdb))

	args := []interface{}{int64(0), cfg.Capacity, cfg.RefillTokens, int64(12000), int64(600)}
	mock.CustomMatch(matchBucket(key, cfg.Capacity)).
		ExpectEvalSha(tokenBucket.Hash(), []string{key}, args...).
		SetVal([]interface{}{int64(1), int64(4), int64(0)})
	mock.CustomMatch(matchBucket(key, cfg.Capacity)).
		ExpectEvalSha(tokenBucket.Hash(), []string{key}, args...).
		SetVal([]interface{}{int64(0), int64(0), int64(2500)})

	rec := postTokens(e)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))

	rec = postTokens(e)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenBucketFailsOpen(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cfg := bucketConfig()
	key := "queuepro:rl:user:anon:route:POST /v1/tokens"
	mock.CustomMatch(matchBucket(key, cfg.Capacity)).
		ExpectEvalSha(tokenBucket.Hash(), []string{key}, int64(0), cfg.Capacity, cfg.RefillTokens, int64(12000), int64(600)).
		SetErr(errors.New("connection reset"))

	rec := postTokens(issueRoute(NewTokenBucket(cfg, rdb)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheMissThenHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         5 * time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "queuepro:cache",
	}

	calls := 0
	e := echo.New()
	e.GET("/v1/branches", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"branches": []string{"hospital", "bank"}})
	}, NewRedisCache(cfg, rdb))

	keyCtx := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/branches", nil), httptest.NewRecorder())
	keyCtx.SetPath("/v1/branches")
	key := cacheKey(cfg, keyCtx)

	var stored []byte
	mock.ExpectGet(key).RedisNil()
	mock.CustomMatch(func(_, actual []interface{}) error {
		if actual[1] != key {
			return fmt.Errorf("unexpected key %v", actual[1])
		}
		b, ok := actual[3].([]byte)
		if !ok {
			return fmt.Errorf("unexpected value type %T", actual[3])
		}
		stored = b
		return nil
	}).ExpectSetEx(key, "", cfg.TTL).SetVal("OK")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/branches", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.NoError(t, mock.ExpectationsWereMet())

	var cached cachedResponse
	require.NoError(t, json.Unmarshal(stored, &cached))
	assert.Equal(t, http.StatusOK, cached.Status)
	assert.JSONEq(t, rec.Body.String(), string(cached.Body))

	mock.ExpectGet(key).SetVal(string(stored))
	hit := httptest.NewRecorder()
	e.ServeHTTP(hit, httptest.NewRequest(http.MethodGet, "/v1/branches", nil))
	assert.Equal(t, http.StatusOK, hit.Code)
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.JSONEq(t, rec.Body.String(), hit.Body.String())
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
