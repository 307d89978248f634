package scrape

import (
	"context"
	"io"
	"time"
)

// ArtifactStore persists diagnostic artifacts and returns a URI.
type ArtifactStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// TextQuerier selects every element matching a selector and reads its text.
type TextQuerier interface {
	TextAll(ctx context.Context, selector string) ([]string, error)
}
