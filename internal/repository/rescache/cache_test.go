package rescache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partdex/internal/domain"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGet_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	var p payload
	ok, err := c.Get(context.Background(), "k", &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestGet_Hit(t *testing.T) {
	c, ms := newTestCache(t)
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if key != "k" {
			t.Errorf("key = %q", key)
		}
		return []byte(`{"name":"nut","count":3}`), nil
	}

	var p payload
	ok, err := c.Get(context.Background(), "k", &p)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if p.Name != "nut" || p.Count != 3 {
		t.Errorf("got %+v", p)
	}
}

func TestGet_CorruptIsMiss(t *testing.T) {
	c, ms := newTestCache(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{not json`), nil
	}

	var p payload
	ok, err := c.Get(context.Background(), "k", &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("corrupt entry should be a miss")
	}
}

func TestGet_StoreError(t *testing.T) {
	c, ms := newTestCache(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}

	var p payload
	_, err := c.Get(context.Background(), "k", &p)
	if !errors.Is(err, domain.ErrCacheFailure) {
		t.Fatalf("expected ErrCacheFailure, got %v", err)
	}
}

func TestSet_EncodesWithTTL(t *testing.T) {
	c, ms := newTestCache(t)
	var gotTTL time.Duration
	var gotData string
	ms.setFn = func(_ context.Context, _ string, value []byte, ttl time.Duration) error {
		gotTTL = ttl
		gotData = string(value)
		return nil
	}

	if err := c.Set(context.Background(), "k", payload{Name: "bolt", Count: 1}, 5*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 5*time.Minute {
		t.Errorf("ttl = %v", gotTTL)
	}
	if gotData != `{"name":"bolt","count":1}` {
		t.Errorf("data = %s", gotData)
	}
}

func TestSet_StoreError(t *testing.T) {
	c, ms := newTestCache(t)
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		return errors.New("OOM")
	}
	if err := c.Set(context.Background(), "k", payload{}, time.Minute); !errors.Is(err, domain.ErrCacheFailure) {
		t.Fatalf("expected ErrCacheFailure, got %v", err)
	}
}

func TestSet_Unencodable(t *testing.T) {
	c, _ := newTestCache(t)
	if err := c.Set(context.Background(), "k", func() {}, time.Minute); err == nil {
		t.Fatal("expected encode error")
	}
}

func TestDelete(t *testing.T) {
	c, ms := newTestCache(t)
	var deleted string
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}
	if err := c.Delete(context.Background(), "partdex:search:filter-options"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "partdex:search:filter-options" {
		t.Errorf("deleted = %q", deleted)
	}
}

func TestMetrics_HitMiss(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"kind", "result"})
	ms := &mockKVStore{}
	c := New(ms, "facets", counter, zap.NewNop())

	var p payload
	_, _ = c.Get(context.Background(), "k", &p)
	ms.getFn = func(context.Context, string) ([]byte, error) { return []byte(`{}`), nil }
	_, _ = c.Get(context.Background(), "k", &p)

	if got := testutil.ToFloat64(counter.WithLabelValues("facets", "miss")); got != 1 {
		t.Errorf("miss = %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("facets", "hit")); got != 1 {
		t.Errorf("hit = %v", got)
	}
}
