package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is inserted between base name and extension.
const TimestampLayout = "20060102-150405"

// ResolvePath returns requested when nothing exists there. Otherwise it
// returns a sibling named base_YYYYMMDD-HHMMSS.ext using now, leaving the
// existing entry alone.
func ResolvePath(requested string, now time.Time) (string, error) {
	if requested == "" {
		return "", errors.New("output path is empty")
	}
	_, err := os.Stat(requested)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return requested, nil
	case err != nil:
		return "", fmt.Errorf("stat output path: %w", err)
	}

	dir, file := filepath.Split(requested)
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(file, ext)
	return filepath.Join(dir, base+"_"+now.Format(TimestampLayout)+ext), nil
}
