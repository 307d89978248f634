package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/zambian-names/internal/app"
	"github.com/JakeFAU/zambian-names/internal/browser"
	"github.com/JakeFAU/zambian-names/internal/config"
	"github.com/JakeFAU/zambian-names/internal/scrape"
	"github.com/JakeFAU/zambian-names/internal/storage/memory"
)

var runTime = time.Date(2026, time.March, 4, 15, 6, 7, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return runTime }

type fixedIDs struct{ id uuid.UUID }

func (f fixedIDs) NewRunID() (uuid.UUID, error) { return f.id, nil }

// letterFactory serves two names per letter except for the letters in empty.
type letterFactory struct {
	empty  map[string]bool
	mu     sync.Mutex
	closed int
}

func (f *letterFactory) opener() browser.Opener {
	return func(context.Context) (browser.Factory, error) { return f, nil }
}

func (f *letterFactory) NewSession(context.Context) (browser.Session, error) {
	return &letterSession{empty: f.empty}, nil
}

func (f *letterFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

type letterSession struct {
	empty  map[string]bool
	letter string
}

func (s *letterSession) Load(_ context.Context, address string) error {
	s.letter = strings.Trim(strings.TrimPrefix(address, "https://names.test/"), "/")
	return nil
}

func (s *letterSession) WaitForSelector(context.Context, string) error { return nil }

func (s *letterSession) TextAll(context.Context, string) ([]string, error) {
	if s.empty[s.letter] {
		return nil, nil
	}
	up := strings.ToUpper(s.letter)
	return []string{up + "ela", " " + up + "owa "}, nil
}

func (s *letterSession) Screenshot(context.Context) ([]byte, error) { return []byte("png"), nil }

func (s *letterSession) Close() error { return nil }

func testConfig(t *testing.T, dir string) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Scrape.URLTemplate = "https://names.test/{letter}/"
	cfg.Scrape.WaitTimeout = 50 * time.Millisecond
	cfg.Scrape.NavigationTimeout = 100 * time.Millisecond
	cfg.Output.DefaultPath = filepath.Join(dir, "zambian_names.md")
	cfg.Artifacts.Dir = dir
	return cfg
}

func newRunner(t *testing.T, cfg config.Config, f browser.Opener) *app.Runner {
	t.Helper()
	return app.NewRunner(cfg, app.Deps{
		Opener:    f,
		Artifacts: memory.NewBlobStore(),
		Clock:     fixedClock{},
		IDs:       fixedIDs{id: uuid.New()},
	})
}

func allLetters() map[string]bool {
	out := map[string]bool{}
	for c := 'a'; c <= 'z'; c++ {
		out[string(c)] = true
	}
	return out
}

func TestRunnerWritesDocumentToDefaultPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig(t, dir)
	f := &letterFactory{empty: map[string]bool{"q": true, "r": true, "x": true}}

	res, err := newRunner(t, cfg, f.opener()).Run(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, cfg.Output.DefaultPath, res.Path)
	require.Len(t, res.Results, 26)
	require.Len(t, res.Digest, 64)
	require.Equal(t, 1, f.closed)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	doc := string(data)
	require.Equal(t, 23, strings.Count(doc, "## Zambian names beginning with the letter "))
	assert.Contains(t, doc, "## Zambian names beginning with the letter A\n\n- [ ] Aela\n- [ ] Aowa\n")
	assert.NotContains(t, doc, "letter Q")
	assert.NotContains(t, doc, "letter R")
	assert.NotContains(t, doc, "letter X")
}

func TestRunnerUsesTimestampedSiblingForExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig(t, dir)
	requested := filepath.Join(dir, "names.md")
	previous := []byte("# yesterday\n")
	require.NoError(t, os.WriteFile(requested, previous, 0o600))

	f := &letterFactory{}
	res, err := newRunner(t, cfg, f.opener()).Run(context.Background(), requested)
	require.NoError(t, err)

	want := filepath.Join(dir, "names_"+runTime.Local().Format("20060102-150405")+".md")
	require.Equal(t, want, res.Path)
	require.Contains(t, res.Path, runTime.Local().Format("20060102"))

	data, err := os.ReadFile(requested)
	require.NoError(t, err)
	require.Equal(t, previous, data)
	_, err = os.Stat(want)
	require.NoError(t, err)
}

func TestRunnerNothingScrapedWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig(t, dir)
	requested := filepath.Join(dir, "names.md")

	res, err := newRunner(t, cfg, (&letterFactory{empty: allLetters()}).opener()).Run(context.Background(), requested)
	require.ErrorIs(t, err, app.ErrNothingScraped)
	require.Empty(t, res.Path)
	require.Len(t, res.Results, 26)
	require.Equal(t, 26, res.Results.Counts()[scrape.StatusEmpty])

	_, err = os.Stat(requested)
	require.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunnerFactoryFailureIsFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig(t, dir)
	boom := errors.New("chrome executable not found")
	opener := func(context.Context) (browser.Factory, error) { return nil, boom }

	_, err := newRunner(t, cfg, opener).Run(context.Background(), "")
	require.ErrorIs(t, err, scrape.ErrFactory)
	require.ErrorIs(t, err, boom)
	_, statErr := os.Stat(cfg.Output.DefaultPath)
	require.True(t, os.IsNotExist(statErr))
}
