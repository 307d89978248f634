// Package browser defines the page-automation engine consumed by the scrape workers.
// Engines live in sub-packages: headless drives Chrome through chromedp, static fetches
// plain HTML over HTTP.
package browser

import (
	"context"
	"errors"
	"fmt"
)

// ErrWaitTimeout reports that the awaited selector never became present.
var ErrWaitTimeout = errors.New("selector wait timed out")

// ErrScreenshotUnsupported is returned by engines that cannot capture pages.
var ErrScreenshotUnsupported = errors.New("screenshots not supported by engine")

// NavigationError reports an unreachable address or a non-2xx document response.
type NavigationError struct {
	Address    string
	StatusCode int
	Err        error
}

func (e *NavigationError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("navigate %s: status %d: %v", e.Address, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("navigate %s: %v", e.Address, e.Err)
	default:
		return fmt.Sprintf("navigate %s: status %d", e.Address, e.StatusCode)
	}
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// Factory spawns isolated sessions. It is created once per run and shared by
// every worker; NewSession must be safe for concurrent use.
type Factory interface {
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// Opener creates the shared Factory. Its failure is fatal for a run.
type Opener func(ctx context.Context) (Factory, error)

// Session is a single isolated browsing context owned by exactly one worker.
// Every blocking method honors ctx deadlines.
type Session interface {
	Load(ctx context.Context, address string) error
	WaitForSelector(ctx context.Context, selector string) error
	TextAll(ctx context.Context, selector string) ([]string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}
