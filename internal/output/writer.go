package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/zambian-names/internal/scrape"
)

// Document defaults.
const (
	DefaultTitle         = "Zambian Names"
	DefaultSectionFormat = "Zambian names beginning with the letter %s"
)

// Writer renders documents. The zero value uses the defaults.
type Writer struct {
	// Title is the single top-level heading.
	Title string
	// SectionFormat receives the upper-case partition key.
	SectionFormat string
}

// Render builds the document in memory. Outcomes without items produce no section.
func (w Writer) Render(results scrape.ResultSet) []byte {
	title := w.Title
	if title == "" {
		title = DefaultTitle
	}
	format := w.SectionFormat
	if format == "" {
		format = DefaultSectionFormat
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", title)
	for _, out := range results {
		if !out.HasItems() {
			continue
		}
		fmt.Fprintf(&buf, "\n## %s\n\n", fmt.Sprintf(format, strings.ToUpper(out.Key)))
		for _, item := range out.Items {
			fmt.Fprintf(&buf, "- [ ] %s\n", item)
		}
	}
	return buf.Bytes()
}

// Write renders results and replaces path with the document in one step: the
// bytes go to a temp file in the same directory which is synced and renamed
// over path. On failure the temp file is removed and path is untouched.
func (w Writer) Write(path string, results scrape.ResultSet) (err error) {
	body := w.Render(results)
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync document: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod document: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename document: %w", err)
	}
	return nil
}
