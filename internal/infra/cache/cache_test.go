package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5*time.Minute, nil)

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5*time.Minute, nil)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50*time.Millisecond, nil)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_SlidingExpiry(t *testing.T) {
	c := cache.New[string](80*time.Millisecond, nil)

	c.Set("key1", "value1")
	for i := 0; i < 4; i++ {
		time.Sleep(40 * time.Millisecond)
		if _, ok := c.Get("key1"); !ok {
			t.Fatalf("expected key to survive while in use (iteration %d)", i)
		}
	}
}

func TestCache_DeleteCallsEvictHook(t *testing.T) {
	var evicted []string
	c := cache.New[string](5*time.Minute, func(key, _ string) { evicted = append(evicted, key) })

	c.Set("key1", "value1")
	c.Delete("key1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
	if len(evicted) != 1 || evicted[0] != "key1" {
		t.Errorf("expected one eviction of key1, got %v", evicted)
	}
}

func TestCache_SweepRemovesExpired(t *testing.T) {
	evicted := 0
	c := cache.New[int](20*time.Millisecond, func(string, int) { evicted++ })

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(40 * time.Millisecond)
	c.Sweep()

	if c.Len() != 0 {
		t.Errorf("expected empty cache after sweep, got %d entries", c.Len())
	}
	if evicted != 2 {
		t.Errorf("expected 2 evictions, got %d", evicted)
	}
}

func TestCache_RunStopsOnCancel(t *testing.T) {
	c := cache.New[int](10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestResults_GetMissIsNotAnError(t *testing.T) {
	c := cache.NewResults()

	if _, ok := c.Get("us/amount|x"); ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestResults_PutMergesParts(t *testing.T) {
	c := cache.NewResults()
	amount := &domain.AmountResult{DonationAmount: 5000}
	target := &domain.TargetResult{RequiredDonation: 7000}

	c.Put("k", cache.Entry{Amount: amount})
	c.Put("k", cache.Entry{Target: target})

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Amount != amount {
		t.Error("expected amount result to survive a later target put")
	}
	if got.Target != target {
		t.Error("expected target result to be stored")
	}
	if got.UK != nil {
		t.Error("expected no UK result")
	}
}

func TestResults_PutEmptyIsIgnored(t *testing.T) {
	c := cache.NewResults()

	c.Put("k", cache.Entry{})

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}
