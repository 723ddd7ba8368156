package diagnose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/leadscope/sitediag/internal/shared/constants"
	sharedErrors "github.com/leadscope/sitediag/internal/shared/errors"
)

const markupFetchTimeout = 10 * time.Second

type lifecycleEvent struct {
	frame cdp.FrameID
	name  string
}

// Session owns one headless browser for the lifetime of a single diagnosis
// run. Console error events are captured from the moment the session exists,
// before any navigation. Close must be called on every exit path.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	lifecycle chan lifecycleEvent

	mu            sync.Mutex
	consoleErrors []string
	closed        bool
}

// NewSession launches a headless browser and registers the console and
// lifecycle event listeners.
func NewSession(parent context.Context, userAgent string) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		lifecycle:   make(chan lifecycleEvent, 64),
	}

	chromedp.ListenTarget(ctx, s.handleEvent)

	// Start the browser process up front so event capture is live before
	// navigation begins.
	if err := chromedp.Run(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return s, nil
}

// Close releases the browser session. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	_ = chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
}

// guard rejects use of a session after Close.
func (s *Session) guard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sharedErrors.ErrSessionClosed
	}
	return nil
}

// Navigate drives the page to url with the two-tier wait strategy: network
// quiescence first, DOM parsed as the fallback. When both tiers run out the
// returned error is ErrNavigationTimeout; whatever markup the browser holds
// stays available for best-effort analysis.
func (s *Session) Navigate(url string) error {
	if err := s.guard(); err != nil {
		return err
	}
	err := s.navigate(url, "networkIdle", constants.NavigationTimeout)
	if err == nil {
		return nil
	}
	if !isDeadline(err) {
		return err
	}

	err = s.navigate(url, "DOMContentLoaded", constants.NavigationTimeout)
	if err == nil {
		return nil
	}
	if isDeadline(err) {
		return sharedErrors.ErrNavigationTimeout
	}
	return err
}

func (s *Session) navigate(url, milestone string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	return chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}
		s.drainLifecycle()

		frameID, _, errorText, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("page load failed: %s", errorText)
		}
		return s.waitLifecycle(ctx, frameID, milestone)
	}))
}

func (s *Session) waitLifecycle(ctx context.Context, frame cdp.FrameID, milestone string) error {
	for {
		select {
		case ev := <-s.lifecycle:
			if ev.frame == frame && ev.name == milestone {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) drainLifecycle() {
	for {
		select {
		case <-s.lifecycle:
		default:
			return
		}
	}
}

// HTML returns the current rendered markup, whatever state navigation
// reached.
func (s *Session) HTML() (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	tctx, cancel := context.WithTimeout(s.ctx, markupFetchTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(tctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Evaluate runs expr in the page context, unmarshalling the result into res.
func (s *Session) Evaluate(expr string, res interface{}) error {
	if err := s.guard(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(s.ctx, markupFetchTimeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.Evaluate(expr, res))
}

// EvaluateAsync runs expr, which must yield a promise, and waits for its
// resolution. The caller bounds the wait through the promise itself; timeout
// is a hard backstop.
func (s *Session) EvaluateAsync(expr string, res interface{}, timeout time.Duration) error {
	if err := s.guard(); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.Evaluate(expr, res,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
}

// Sleep pauses inside the browser context, giving pending page work a chance
// to settle.
func (s *Session) Sleep(d time.Duration) {
	if s.guard() != nil {
		return
	}
	tctx, cancel := context.WithTimeout(s.ctx, d+time.Second)
	defer cancel()
	_ = chromedp.Run(tctx, chromedp.Sleep(d))
}

// ConsoleErrors returns the errors captured so far, in arrival order.
func (s *Session) ConsoleErrors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.consoleErrors))
	copy(out, s.consoleErrors)
	return out
}

func (s *Session) handleEvent(ev interface{}) {
	switch e := ev.(type) {
	case *page.EventLifecycleEvent:
		select {
		case s.lifecycle <- lifecycleEvent{frame: e.FrameID, name: e.Name}:
		default:
		}

	case *runtime.EventConsoleAPICalled:
		if e.Type != runtime.APITypeError {
			return
		}
		var parts []string
		for _, arg := range e.Args {
			if text := formatRemoteObject(arg); text != "" {
				parts = append(parts, text)
			}
		}
		msg := strings.Join(parts, " ")
		if msg == "" {
			msg = "console error"
		}
		s.appendConsoleError(msg, topFrameLocation(e.StackTrace))

	case *runtime.EventExceptionThrown:
		d := e.ExceptionDetails
		if d == nil {
			return
		}
		msg := d.Text
		if d.Exception != nil {
			if desc := formatRemoteObject(d.Exception); desc != "" {
				msg = desc
			}
		}
		loc := ""
		if d.URL != "" {
			loc = fmt.Sprintf("%s:%d", d.URL, d.LineNumber)
		}
		s.appendConsoleError(msg, loc)
	}
}

// appendConsoleError records one console error using the wire shape
// "<message> (<sourceURL>:<lineNumber>)", or the bare message when the
// location is unknown.
func (s *Session) appendConsoleError(msg, location string) {
	if location != "" {
		msg = fmt.Sprintf("%s (%s)", msg, location)
	}
	s.mu.Lock()
	s.consoleErrors = append(s.consoleErrors, msg)
	s.mu.Unlock()
}

func topFrameLocation(st *runtime.StackTrace) string {
	if st == nil || len(st.CallFrames) == 0 {
		return ""
	}
	top := st.CallFrames[0]
	if top.URL == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", top.URL, top.LineNumber)
}

func formatRemoteObject(o *runtime.RemoteObject) string {
	if o == nil {
		return ""
	}
	if len(o.Value) > 0 {
		var str string
		if err := json.Unmarshal(o.Value, &str); err == nil {
			return str
		}
		return string(o.Value)
	}
	return o.Description
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
