package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leadscope/sitediag/internal/diagnose"
)

type fakeDiagnoser struct {
	delay      time.Duration
	concurrent int32
	peak       int32
}

func (f *fakeDiagnoser) Diagnose(ctx context.Context, url string) *diagnose.Result {
	cur := atomic.AddInt32(&f.concurrent, 1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if cur <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	atomic.AddInt32(&f.concurrent, -1)

	result := diagnose.NewResult(url)
	result.Status = diagnose.StatusClean
	return result
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"example.com", "https://example.com"},
		{"  example.com ", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"https://example.com", "https://example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.raw); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	r := &Runner{Concurrency: 4, RateLimit: 100, Timeout: 5 * time.Second}
	urls := []string{"a.com", "b.com", "c.com", "d.com", "e.com"}

	results := r.Run(context.Background(), urls, &fakeDiagnoser{}, nil)

	if len(results) != len(urls) {
		t.Fatalf("got %d results, want %d", len(results), len(urls))
	}
	for i, url := range urls {
		want := "https://" + url
		if results[i] == nil || results[i].URL != want {
			t.Errorf("results[%d].URL = %v, want %q", i, results[i], want)
		}
	}
}

func TestRunRespectsConcurrencyLimit(t *testing.T) {
	fake := &fakeDiagnoser{delay: 50 * time.Millisecond}
	r := &Runner{Concurrency: 2, RateLimit: 100, Timeout: 5 * time.Second}
	urls := []string{"a.com", "b.com", "c.com", "d.com", "e.com", "f.com"}

	r.Run(context.Background(), urls, fake, nil)

	if peak := atomic.LoadInt32(&fake.peak); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestRunInvokesProgress(t *testing.T) {
	r := &Runner{Concurrency: 2, RateLimit: 100, Timeout: 5 * time.Second}
	urls := []string{"a.com", "b.com", "c.com"}

	var mu sync.Mutex
	seen := make(map[string]bool)
	r.Run(context.Background(), urls, &fakeDiagnoser{}, func(url string, result *diagnose.Result, duration float64) {
		mu.Lock()
		seen[url] = true
		mu.Unlock()
	})

	if len(seen) != 3 {
		t.Errorf("progress callback saw %d urls, want 3", len(seen))
	}
}
