package scrape

import (
	"context"
	"fmt"
	"strings"
)

// DefaultSelector matches the list items inside the article body of a
// names page.
const DefaultSelector = ".nv-content-wrap.entry-content ol li"

// Extract returns the trimmed, non-empty text of every element matching
// selector, in document order. No match yields an empty slice and nil error.
func Extract(ctx context.Context, page TextQuerier, selector string) ([]string, error) {
	raw, err := page.TextAll(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	items := make([]string, 0, len(raw))
	for _, text := range raw {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items, nil
}
