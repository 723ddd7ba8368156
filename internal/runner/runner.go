// Package runner executes diagnoses against multiple sites with bounded
// concurrency and a global rate limit.
package runner

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/leadscope/sitediag/internal/diagnose"
)

// Diagnoser is the interface the runner drives for each target site.
type Diagnoser interface {
	Diagnose(ctx context.Context, url string) *diagnose.Result
}

// ProgressFunc is a callback invoked after each site finishes.
type ProgressFunc func(url string, result *diagnose.Result, duration float64)

// Runner orchestrates diagnoses with concurrency and rate limiting
type Runner struct {
	Concurrency int           // Maximum number of concurrent diagnoses
	RateLimit   int           // Diagnoses per second (global)
	Timeout     time.Duration // Timeout for each diagnosis
}

// NormalizeURL prefixes bare hostnames with https:// so they parse as URLs.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}

// Run diagnoses all URLs using a worker pool and returns results in input
// order. URLs are normalized before dispatch.
func (r *Runner) Run(ctx context.Context, urls []string, diagnoser Diagnoser, progressFn ProgressFunc) []*diagnose.Result {
	// Rate limiter
	limiter := rate.NewLimiter(rate.Limit(r.RateLimit), r.RateLimit)

	// Worker pool
	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup
	results := make([]*diagnose.Result, len(urls))

	for i, rawURL := range urls {
		wg.Add(1)
		go func(idx int, raw string) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			// Wait for rate limiter
			_ = limiter.Wait(ctx)

			url := NormalizeURL(raw)
			start := time.Now()

			diagCtx, cancel := context.WithTimeout(ctx, r.Timeout)
			defer cancel()

			result := diagnoser.Diagnose(diagCtx, url)

			if progressFn != nil {
				progressFn(url, result, time.Since(start).Seconds())
			}

			results[idx] = result
		}(i, rawURL)
	}

	wg.Wait()
	return results
}
