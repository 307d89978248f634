package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JakeFAU/zambian-names/internal/browser"
)

var pngStub = []byte("\x89PNG\r\n\x1a\nstub")

// fakePage scripts how a session behaves for one address.
type fakePage struct {
	items      []string
	loadErr    error
	loadDelay  time.Duration
	hang       bool // selector never appears
	textErr    error
	panicOnGet bool
	shotErr    error
}

type fakeFactory struct {
	mu       sync.Mutex
	pages    map[string]fakePage
	active   int
	peak     int
	opened   int
	released int
	closes   int
	newErr   error
}

func newFakeFactory(pages map[string]fakePage) *fakeFactory {
	return &fakeFactory{pages: pages}
}

func (f *fakeFactory) opener() browser.Opener {
	return func(context.Context) (browser.Factory, error) {
		return f, nil
	}
}

func (f *fakeFactory) NewSession(context.Context) (browser.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.newErr != nil {
		return nil, f.newErr
	}
	f.opened++
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	return &fakeSession{factory: f}, nil
}

func (f *fakeFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeFactory) stats() (peak, opened, released, closes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak, f.opened, f.released, f.closes
}

type fakeSession struct {
	factory *fakeFactory
	page    fakePage
	closed  bool
}

func (s *fakeSession) Load(ctx context.Context, address string) error {
	s.factory.mu.Lock()
	page, ok := s.factory.pages[address]
	s.factory.mu.Unlock()
	if !ok {
		return &browser.NavigationError{Address: address, StatusCode: 404}
	}
	s.page = page
	if page.loadDelay > 0 {
		select {
		case <-time.After(page.loadDelay):
		case <-ctx.Done():
			return &browser.NavigationError{Address: address, Err: ctx.Err()}
		}
	}
	return page.loadErr
}

func (s *fakeSession) WaitForSelector(ctx context.Context, selector string) error {
	if !s.page.hang {
		return nil
	}
	<-ctx.Done()
	return fmt.Errorf("%w: %q", browser.ErrWaitTimeout, selector)
}

func (s *fakeSession) TextAll(context.Context, string) ([]string, error) {
	if s.page.panicOnGet {
		panic("node detached")
	}
	if s.page.textErr != nil {
		return nil, s.page.textErr
	}
	return append([]string(nil), s.page.items...), nil
}

func (s *fakeSession) Screenshot(context.Context) ([]byte, error) {
	if s.page.shotErr != nil {
		return nil, s.page.shotErr
	}
	return pngStub, nil
}

func (s *fakeSession) Close() error {
	if s.closed {
		return errors.New("session closed twice")
	}
	s.closed = true
	s.factory.mu.Lock()
	s.factory.active--
	s.factory.released++
	s.factory.mu.Unlock()
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// steppingClock advances by step on every call.
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

type querierFunc func(ctx context.Context, selector string) ([]string, error)

func (f querierFunc) TextAll(ctx context.Context, selector string) ([]string, error) {
	return f(ctx, selector)
}
