package diagnose

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/leadscope/sitediag/internal/shared/constants"
	sharedErrors "github.com/leadscope/sitediag/internal/shared/errors"
)

// Config holds per-engine tunables. The zero value is usable.
type Config struct {
	// UserAgent overrides the browser's default user agent when non-empty.
	UserAgent string
	// SlowPaintMS is the FCP latency above which a site counts as slow.
	// Defaults to 3000.
	SlowPaintMS int
	// SettleDelay is the pause between page load and the paint-timing query,
	// giving performance entries a chance to appear. Defaults to 1s.
	SettleDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.SlowPaintMS <= 0 {
		c.SlowPaintMS = int(constants.SlowPaintThreshold / time.Millisecond)
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = time.Second
	}
	return c
}

// browserSession is the part of Session the engine drives. Narrowed to an
// interface so runs can be tested without a real browser.
type browserSession interface {
	Navigate(url string) error
	HTML() (string, error)
	Evaluate(expr string, res interface{}) error
	EvaluateAsync(expr string, res interface{}, timeout time.Duration) error
	Sleep(d time.Duration)
	ConsoleErrors() []string
	Close()
}

// Engine runs website diagnoses. Safe for concurrent use; each run owns its
// own browser session and shares only the immutable catalogs.
type Engine struct {
	cfg    Config
	logger *zap.SugaredLogger

	newSession func(ctx context.Context, userAgent string) (browserSession, error)
}

// NewEngine builds an Engine with the given configuration.
func NewEngine(cfg Config, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		cfg:    cfg.withDefaults(),
		logger: logger,
		newSession: func(ctx context.Context, userAgent string) (browserSession, error) {
			return NewSession(ctx, userAgent)
		},
	}
}

// Diagnose runs one full diagnosis against url and always returns a usable
// Result: every failure mode degrades to a record with a descriptive status
// rather than an error. The browser session is released on every exit path.
func (e *Engine) Diagnose(ctx context.Context, url string) *Result {
	result := NewResult(url)
	e.logger.Infow("starting diagnosis", "url", url)

	sess, err := e.newSession(ctx, e.cfg.UserAgent)
	if err != nil {
		e.logger.Errorw("browser session unavailable", "url", url, "error", err)
		result.Status = StatusError
		result.Error = err.Error()
		result.assemble(nil)
		return result
	}
	defer sess.Close()

	var techs []TechFinding

	navErr := sess.Navigate(url)
	switch {
	case navErr == nil:
		techs = e.fullAnalysis(sess, result)
	case errors.Is(navErr, sharedErrors.ErrNavigationTimeout):
		e.logger.Warnw("navigation timed out", "url", url)
		result.Status = StatusTimeout
		result.Error = navErr.Error()
		techs = e.staticFallback(sess)
	default:
		e.logger.Errorw("navigation failed", "url", url, "error", navErr)
		result.Status = StatusError
		result.Error = navErr.Error()
		techs = e.staticFallback(sess)
	}

	result.ConsoleErrors = sess.ConsoleErrors()
	result.assemble(techs)
	e.logger.Infow("diagnosis finished",
		"url", url,
		"status", result.Status,
		"tech", result.Tech,
		"console_errors", result.ConsoleErrorCount,
		"vulnerabilities", len(result.Vulnerabilities),
	)
	return result
}

// fullAnalysis is the happy path: live introspection, static matching,
// vulnerability scanning, paint sampling and classification.
func (e *Engine) fullAnalysis(sess browserSession, result *Result) []TechFinding {
	live := Introspect(sess, e.logger)

	var static []TechFinding
	html, err := sess.HTML()
	if err != nil {
		e.logger.Warnw("could not fetch rendered markup", "error", err)
	} else {
		static = MatchStatic(html)
	}
	techs := MergeTechs(live, static)

	sess.Sleep(e.cfg.SettleDelay)

	fcp, err := SampleFCP(sess)
	if err != nil {
		e.logger.Warnw("paint sampling failed", "error", err)
		fcp = nil
	}
	result.FirstContentfulPaint = fcp

	if html != "" {
		result.Vulnerabilities = ScanVulnerabilities(html)
	}

	result.Status = Classify(sess.ConsoleErrors(), result.Vulnerabilities, fcp, e.cfg.SlowPaintMS)
	return techs
}

// staticFallback extracts whatever technologies the retrieved markup still
// reveals after a failed or timed-out navigation.
func (e *Engine) staticFallback(sess browserSession) []TechFinding {
	html, err := sess.HTML()
	if err != nil || html == "" {
		return nil
	}
	return MergeTechs(nil, MatchStatic(html))
}

// Classify derives the terminal status from the run's raw signals: console
// errors or vulnerability hits mean at_risk, then a slow first paint, then
// clean. Timeout and error short-circuit before this point.
func Classify(consoleErrors []string, vulns []VulnFinding, fcpMS *int, slowPaintMS int) Status {
	if len(consoleErrors) > 0 || len(vulns) > 0 {
		return StatusAtRisk
	}
	if fcpMS != nil && *fcpMS > slowPaintMS {
		return StatusAtRisk
	}
	return StatusClean
}
