// Package static implements the browser engine without JavaScript: pages are
// fetched with colly and queried with goquery. It cannot take screenshots.
package static

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/zambian-names/internal/browser"
)

var errNotLoaded = errors.New("no document loaded")

// Config controls the HTTP fetches.
type Config struct {
	UserAgent string
}

// Factory creates sessions; each session builds its own collector and cookie jar.
type Factory struct {
	cfg Config
}

// New returns a static Factory.
func New(cfg Config) *Factory {
	return &Factory{cfg: cfg}
}

// Opener adapts New to browser.Opener. It never fails.
func Opener(cfg Config) browser.Opener {
	return func(context.Context) (browser.Factory, error) {
		return New(cfg), nil
	}
}

// NewSession returns an empty session.
func (f *Factory) NewSession(context.Context) (browser.Session, error) {
	return &Session{cfg: f.cfg}, nil
}

// Close is a no-op.
func (f *Factory) Close() error {
	return nil
}

// Session holds the most recently loaded document.
type Session struct {
	cfg Config
	mu  sync.RWMutex
	doc *goquery.Document
}

// Load fetches address and parses the body. Non-2xx responses are navigation errors.
func (s *Session) Load(ctx context.Context, address string) error {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	}
	if s.cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(s.cfg.UserAgent))
	}
	collector := colly.NewCollector(opts...)
	collector.ParseHTTPErrorResponse = true

	var (
		status int
		body   []byte
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := collector.Visit(address); err != nil {
		return &browser.NavigationError{Address: address, Err: err}
	}
	if status < 200 || status > 299 {
		return &browser.NavigationError{Address: address, StatusCode: status}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", address, err)
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// WaitForSelector succeeds when selector matches. A static document never
// changes, so a miss is reported as a wait timeout immediately.
func (s *Session) WaitForSelector(ctx context.Context, selector string) error {
	doc, err := s.document()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %q: %v", browser.ErrWaitTimeout, selector, err)
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %q not present in static document", browser.ErrWaitTimeout, selector)
	}
	return nil
}

// TextAll returns the text of every matching element in document order.
func (s *Session) TextAll(_ context.Context, selector string) ([]string, error) {
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	selection := doc.Find(selector)
	texts := make([]string, 0, selection.Length())
	selection.Each(func(_ int, el *goquery.Selection) {
		texts = append(texts, el.Text())
	})
	return texts, nil
}

// Screenshot is unsupported without a renderer.
func (s *Session) Screenshot(context.Context) ([]byte, error) {
	return nil, browser.ErrScreenshotUnsupported
}

// Close drops the loaded document.
func (s *Session) Close() error {
	s.mu.Lock()
	s.doc = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) document() (*goquery.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, errNotLoaded
	}
	return s.doc, nil
}
