// Package headless implements the browser engine on top of chromedp and headless Chrome.
package headless

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/zambian-names/internal/browser"
)

// Config controls how the shared Chrome instance is launched.
type Config struct {
	Headless  bool
	UserAgent string
}

// Factory owns one Chrome process and hands out incognito-style sessions.
type Factory struct {
	cfg           Config
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closeOnce     sync.Once
}

// Opener adapts Open to browser.Opener.
func Opener(cfg Config) browser.Opener {
	return func(ctx context.Context) (browser.Factory, error) {
		f, err := Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// Open launches Chrome and blocks until the browser is ready to create targets.
func Open(ctx context.Context, cfg Config) (*Factory, error) {
	headlessFlag := any(false)
	if cfg.Headless {
		headlessFlag = "new"
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headlessFlag),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	// The browser outlives ctx; ctx only bounds the warmup.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	stop := forwardCancel(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Factory{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// NewSession opens a tab inside a fresh browser context, so cookies and storage
// are not shared with any other session.
func (f *Factory) NewSession(ctx context.Context) (browser.Session, error) {
	tabCtx, cancel := chromedp.NewContext(f.browserCtx, chromedp.WithNewBrowserContext())
	s := &Session{
		tabCtx: tabCtx,
		cancel: cancel,
		meta:   newResponseMeta(),
	}
	chromedp.ListenTarget(tabCtx, s.meta.captureEvent)

	// The first Run attaches the target and must use the tab context itself.
	stop := forwardCancel(ctx, cancel)
	err := chromedp.Run(tabCtx, f.setupAction())
	stop()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open session: %w", err)
	}
	return s, nil
}

// Close shuts down Chrome. Safe to call more than once.
func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		f.browserCancel()
		f.allocCancel()
	})
	return nil
}

func (f *Factory) setupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// Session is one chromedp tab bound to its own browser context.
type Session struct {
	tabCtx    context.Context
	cancel    context.CancelFunc
	meta      *responseMeta
	closeOnce sync.Once
}

// Load navigates to address and rejects non-2xx document responses.
func (s *Session) Load(ctx context.Context, address string) error {
	if err := s.run(ctx, chromedp.Navigate(address)); err != nil {
		return &browser.NavigationError{Address: address, Err: err}
	}
	if status := s.meta.statusCode(); status != 0 && (status < 200 || status > 299) {
		return &browser.NavigationError{Address: address, StatusCode: status}
	}
	return nil
}

// WaitForSelector blocks until selector matches a node or ctx expires.
func (s *Session) WaitForSelector(ctx context.Context, selector string) error {
	err := s.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %q", browser.ErrWaitTimeout, selector)
	default:
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
}

// TextAll returns the text content of every node matching selector in document order.
func (s *Session) TextAll(ctx context.Context, selector string) ([]string, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return nil, fmt.Errorf("quote selector: %w", err)
	}
	expr := fmt.Sprintf(`Array.from(document.querySelectorAll(%s), el => el.textContent || "")`, quoted)
	var texts []string
	if err := s.run(ctx, chromedp.Evaluate(expr, &texts)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return texts, nil
}

// Screenshot captures the full page as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	// quality 100 selects PNG encoding.
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

// Close disposes the tab and its browser context.
func (s *Session) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

// run executes actions on the tab under ctx's deadline and cancellation
// without tying the tab's lifetime to ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := forwardCancel(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return fmt.Errorf("%w: %v", ctxErr, err)
		}
		return err
	}
	return nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

type responseMeta struct {
	mu     sync.RWMutex
	status int
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) capture(event *network.EventResponseReceived) {
	if event.Type != network.ResourceTypeDocument || event.Response == nil {
		return
	}
	m.mu.Lock()
	m.status = int(event.Response.Status)
	m.mu.Unlock()
}

func (m *responseMeta) captureEvent(ev any) {
	if resp, ok := ev.(*network.EventResponseReceived); ok {
		m.capture(resp)
	}
}

func (m *responseMeta) statusCode() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
