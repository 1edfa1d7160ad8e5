package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gen     int64
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), val...)
	return nil
}

func (m *memCache) Generation(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, nil
}

func (m *memCache) Bump(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	return nil
}

func nullLogger() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "test",
	}
}

func newCachedServer(store CacheStore) (*echo.Echo, *int) {
	e := echo.New()
	calls := 0
	e.Use(ResponseCache(cacheConfig(), store, nullLogger()))
	e.GET("/tables", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]int{"calls": calls})
	})
	e.POST("/tables", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]string{"ok": "yes"})
	})
	e.PUT("/tables/:table_id/seat", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "table is occupied")
	})
	return e, &calls
}

func do(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResponseCacheHitAndInvalidate(t *testing.T) {
	store := newMemCache()
	e, calls := newCachedServer(store)

	first := do(e, http.MethodGet, "/tables")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(e, http.MethodGet, "/tables")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.True(t, strings.HasPrefix(second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON))
	assert.Equal(t, 1, *calls)

	rec := do(e, http.MethodPost, "/tables")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(1), store.gen)

	third := do(e, http.MethodGet, "/tables")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, *calls)
}

func TestResponseCacheKeepsEntriesAfterFailedWrite(t *testing.T) {
	store := newMemCache()
	e, _ := newCachedServer(store)

	do(e, http.MethodGet, "/tables")
	rec := do(e, http.MethodPut, "/tables/1/seat")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), store.gen)
	assert.Equal(t, "HIT", do(e, http.MethodGet, "/tables").Header().Get("X-Cache"))
}

func TestResponseCacheSeparatesQueries(t *testing.T) {
	e, calls := newCachedServer(newMemCache())

	do(e, http.MethodGet, "/tables?date=2026-10-19")
	do(e, http.MethodGet, "/tables?date=2026-10-21")
	assert.Equal(t, 2, *calls)
}

func TestResponseCacheDisabled(t *testing.T) {
	cfg := cacheConfig()
	cfg.Enabled = false
	e := echo.New()
	e.Use(ResponseCache(cfg, newMemCache(), nil))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := do(e, http.MethodGet, "/")
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestEntryRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodeEntry(http.StatusOK, hdr, []byte(`{"data":[]}`))
	require.NoError(t, err)

	status, got, body, ok := decodeEntry(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, `{"data":[]}`, string(body))

	_, _, _, ok = decodeEntry([]byte{0, 1})
	assert.False(t, ok)
}

func TestRedisCacheStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisCacheStore(db, "rr:cache")
	ctx := context.Background()

	mock.ExpectGet("rr:cache:gen").RedisNil()
	gen, err := store.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	mock.ExpectGet("rr:cache:0:abc").RedisNil()
	_, err = store.Get(ctx, "rr:cache:0:abc")
	assert.ErrorIs(t, err, errCacheMiss)

	mock.ExpectGet("rr:cache:0:abc").SetVal("payload")
	bs, err := store.Get(ctx, "rr:cache:0:abc")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(bs))

	mock.ExpectIncr("rr:cache:gen").SetVal(1)
	require.NoError(t, store.Bump(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

type stubBucket struct {
	decisions []Decision
	err       error
	keys      []string
}

func (b *stubBucket) Take(_ context.Context, key string, _ time.Time) (Decision, error) {
	b.keys = append(b.keys, key)
	if b.err != nil {
		return Decision{}, b.err
	}
	d := b.decisions[0]
	if len(b.decisions) > 1 {
		b.decisions = b.decisions[1:]
	}
	return d, nil
}

func rateConfig() config.RateLimitConfig {
	return config.RateLimitConfig{Enabled: true, Capacity: 2, KeyStrategy: "ip_route", Prefix: "rl"}
}

func TestRateLimiterBlocksWhenEmpty(t *testing.T) {
	bucket := &stubBucket{decisions: []Decision{
		{Allowed: true, Remaining: 1},
		{Allowed: false, RetryAfter: 1500 * time.Millisecond},
	}}
	e := echo.New()
	e.Use(RateLimiter(rateConfig(), bucket, nullLogger()))
	e.GET("/reservations", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	ok := do(e, http.MethodGet, "/reservations")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "2", ok.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", ok.Header().Get("X-RateLimit-Remaining"))

	blocked := do(e, http.MethodGet, "/reservations")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "2", blocked.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"status":429,"message":"rate limit exceeded"}`, blocked.Body.String())

	assert.True(t, strings.HasPrefix(bucket.keys[0], "rl:ip:"))
	assert.True(t, strings.HasSuffix(bucket.keys[0], ":route:GET /reservations"))
}

func TestRateLimiterFailsOpen(t *testing.T) {
	e := echo.New()
	e.Use(RateLimiter(rateConfig(), &stubBucket{err: errors.New("redis down")}, nullLogger()))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/").Code)
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	l, hook := test.NewNullLogger()
	reg := prometheus.NewRegistry()
	w := metrics.New(reg)
	e := echo.New()
	e.Use(RequestLogger(logrus.NewEntry(l)), Metrics(w))
	e.GET("/tables/:table_id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "table id 9 does not exist")
	})

	rec := do(e, http.MethodGet, "/tables/9")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "/tables/:table_id", entry.Data["route"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])

	n, err := testutil.GatherAndCount(reg, "restaurant_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
