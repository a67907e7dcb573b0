package pooldata

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_TotalLiquidity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pair/5rCf1DM8LjKTw4YqhnoLcngyZYeNnQqztScTogYHAS6", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"address": "5rCf1DM8LjKTw4YqhnoLcngyZYeNnQqztScTogYHAS6",
			"name": "SOL-USDC",
			"bin_step": 4,
			"liquidity": "1234567.89",
			"current_price": 187.5
		}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", time.Second)

	v, err := src.TotalLiquidity(context.Background(), "5rCf1DM8LjKTw4YqhnoLcngyZYeNnQqztScTogYHAS6")
	require.NoError(t, err)
	assert.InDelta(t, 1234567.89, v, 1e-6)

	p, err := src.Pair(context.Background(), "5rCf1DM8LjKTw4YqhnoLcngyZYeNnQqztScTogYHAS6")
	require.NoError(t, err)
	assert.Equal(t, "SOL-USDC", p.Name)
	assert.Equal(t, 4, p.BinStep)

	price, err := src.Price(context.Background(), "5rCf1DM8LjKTw4YqhnoLcngyZYeNnQqztScTogYHAS6")
	require.NoError(t, err)
	assert.Equal(t, 187.5, price)
}

func TestHTTPSource_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pair/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("pair not found"))
		default:
			_, _ = w.Write([]byte(`{not json`))
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second)

	_, err := src.TotalLiquidity(context.Background(), "missing")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "pair api http 404: pair not found", err.Error())

	_, err = src.TotalLiquidity(context.Background(), "garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")

	_, err = src.TotalLiquidity(context.Background(), "  ")
	require.Error(t, err)
}

func TestNewHTTPSource_Defaults(t *testing.T) {
	src := NewHTTPSource("", 0)
	assert.Equal(t, DefaultBaseURL, src.BaseURL)
	assert.Equal(t, 12*time.Second, src.HTTP.Timeout)
}

func TestStaticSource(t *testing.T) {
	v, err := NewStaticSource().TotalLiquidity(context.Background(), "any")
	require.NoError(t, err)
	assert.Equal(t, 2_000_000.0, v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewStaticSource().TotalLiquidity(ctx, "any")
	assert.ErrorIs(t, err, context.Canceled)
}

type memCache struct {
	mu      sync.Mutex
	vals    map[string]float64
	getErr  error
	sets    int
	lastTTL time.Duration
}

func (m *memCache) GetLiquidity(_ context.Context, pair string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	v, ok := m.vals[pair]
	return v, ok, nil
}

func (m *memCache) SetLiquidity(_ context.Context, pair string, v float64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[pair] = v
	m.sets++
	m.lastTTL = ttl
	return nil
}

func (m *memCache) Ping(context.Context) error { return nil }
func (m *memCache) Close() error               { return nil }

type countingSource struct {
	calls int
	v     float64
	err   error
}

func (c *countingSource) TotalLiquidity(context.Context, string) (float64, error) {
	c.calls++
	return c.v, c.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCachedSource(t *testing.T) {
	next := &countingSource{v: 42}
	cache := &memCache{vals: map[string]float64{}}
	src := NewCachedSource(next, cache, time.Minute, quietLogger())

	for i := 0; i < 3; i++ {
		v, err := src.TotalLiquidity(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, 42.0, v)
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, time.Minute, cache.lastTTL)
}

func TestCachedSource_CacheErrorFallsThrough(t *testing.T) {
	next := &countingSource{v: 7}
	cache := &memCache{vals: map[string]float64{}, getErr: errors.New("redis down")}
	src := NewCachedSource(next, cache, 0, quietLogger())

	v, err := src.TotalLiquidity(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	assert.Equal(t, 30*time.Second, cache.lastTTL)
}

func TestCachedSource_SourceErrorNotCached(t *testing.T) {
	next := &countingSource{err: errors.New("pair api http 500")}
	cache := &memCache{vals: map[string]float64{}}
	src := NewCachedSource(next, cache, time.Minute, quietLogger())

	_, err := src.TotalLiquidity(context.Background(), "p")
	require.EqualError(t, err, "pair api http 500")
	assert.Equal(t, 0, cache.sets)
}
