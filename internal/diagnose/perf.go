package diagnose

import (
	"time"

	"github.com/leadscope/sitediag/internal/shared/constants"
)

// paintAwaiter is the slice of the browser session the sampler needs.
type paintAwaiter interface {
	EvaluateAsync(expr string, res interface{}, timeout time.Duration) error
}

// fcpProbe resolves the first-contentful-paint time in milliseconds, or null
// when no paint entry arrives within the observation ceiling.
const fcpProbe = `(() => {
	return new Promise((resolve) => {
		const entries = performance.getEntriesByType('paint');
		const fcpEntry = entries.find(entry => entry.name === 'first-contentful-paint');
		if (fcpEntry) {
			resolve(Math.round(fcpEntry.startTime));
			return;
		}
		const observer = new PerformanceObserver((list) => {
			const entry = list.getEntries().find(e => e.name === 'first-contentful-paint');
			if (entry) {
				observer.disconnect();
				resolve(Math.round(entry.startTime));
			}
		});
		try {
			observer.observe({ entryTypes: ['paint'] });
			setTimeout(() => {
				observer.disconnect();
				resolve(null);
			}, 5000);
		} catch (e) {
			resolve(null);
		}
	});
})()`

// SampleFCP measures first-contentful-paint through the paint-timing
// facility. An already-recorded entry returns immediately; otherwise a
// paint-entry observer waits up to the 5 second ceiling. Returns nil when
// the measurement is unavailable.
func SampleFCP(page paintAwaiter) (*int, error) {
	var fcp *int
	// One extra second over the in-page ceiling so the promise, not the
	// context, decides the outcome.
	err := page.EvaluateAsync(fcpProbe, &fcp, constants.PaintSampleTimeout+time.Second)
	if err != nil {
		return nil, err
	}
	return fcp, nil
}
