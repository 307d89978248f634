package app

import (
	"context"
	"errors"
	"fmt"

	goUUID "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/zambian-names/internal/browser"
	"github.com/JakeFAU/zambian-names/internal/clock/system"
	"github.com/JakeFAU/zambian-names/internal/config"
	"github.com/JakeFAU/zambian-names/internal/hash/sha256"
	idgen "github.com/JakeFAU/zambian-names/internal/id/uuid"
	"github.com/JakeFAU/zambian-names/internal/logging"
	"github.com/JakeFAU/zambian-names/internal/output"
	"github.com/JakeFAU/zambian-names/internal/partition"
	"github.com/JakeFAU/zambian-names/internal/progress"
	"github.com/JakeFAU/zambian-names/internal/scrape"
)

// ErrNothingScraped reports a run in which no partition produced items. No
// document is written.
var ErrNothingScraped = errors.New("no data scraped")

// RunIDGenerator produces run identifiers.
type RunIDGenerator interface {
	NewRunID() (goUUID.UUID, error)
}

// Deps are the collaborators a Runner needs.
type Deps struct {
	Opener    browser.Opener
	Artifacts scrape.ArtifactStore
	Progress  progress.Emitter
	Clock     scrape.Clock
	IDs       RunIDGenerator
	Logger    *zap.Logger
}

// Result describes a finished run.
type Result struct {
	RunID   goUUID.UUID
	Path    string
	Digest  string
	Results scrape.ResultSet
}

// Runner executes one scrape run end to end.
type Runner struct {
	cfg    config.Config
	deps   Deps
	writer output.Writer
}

// NewRunner constructs a Runner.
func NewRunner(cfg config.Config, deps Deps) *Runner {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = system.New()
	}
	if deps.IDs == nil {
		deps.IDs = idgen.New()
	}
	return &Runner{
		cfg:  cfg,
		deps: deps,
		writer: output.Writer{
			Title:         cfg.Output.Title,
			SectionFormat: cfg.Output.SectionFormat,
		},
	}
}

// Run scrapes every partition and writes the document to requested, or to a
// timestamped sibling when requested already exists. An empty requested uses
// the configured default path. ErrNothingScraped is returned, with the
// outcomes, when no partition produced items.
func (r *Runner) Run(ctx context.Context, requested string) (Result, error) {
	if requested == "" {
		requested = r.cfg.Output.DefaultPath
	}
	runID, err := r.deps.IDs.NewRunID()
	if err != nil {
		return Result{}, err
	}
	logger := logging.ForRun(r.deps.Logger, runID)
	res := Result{RunID: runID}

	// One timestamp per run; file names use the local zone.
	now := r.deps.Clock.Now()
	dest, err := output.ResolvePath(requested, now.Local())
	if err != nil {
		return res, err
	}
	if dest != requested {
		logger.Info("output file exists, writing to timestamped sibling",
			zap.String("requested", requested),
			zap.String("path", dest),
		)
	}

	orchestrator, err := scrape.NewOrchestrator(
		r.deps.Opener,
		partition.Enumerate(r.cfg.Scrape.URLTemplate),
		scrape.OrchestratorConfig{
			Concurrency: r.cfg.Scrape.Concurrency,
			Worker:      r.cfg.WorkerConfig(),
		},
		scrape.Deps{
			Artifacts: r.deps.Artifacts,
			Progress:  r.deps.Progress,
			Clock:     r.deps.Clock,
			Logger:    logger,
		},
	)
	if err != nil {
		return res, err
	}
	results, err := orchestrator.Run(ctx, runID)
	if err != nil {
		return res, err
	}
	res.Results = results

	if results.Empty() {
		logger.Warn("no data scraped, nothing written")
		return res, ErrNothingScraped
	}
	if err := r.writer.Write(dest, results); err != nil {
		return res, fmt.Errorf("write %s: %w", dest, err)
	}
	res.Path = dest

	digest, err := sha256.File(dest)
	if err != nil {
		logger.Warn("digest document failed", zap.String("path", dest), zap.Error(err))
	} else {
		res.Digest = digest
	}
	logger.Info("document written",
		zap.String("path", dest),
		zap.Int("items", results.Items()),
		zap.String("sha256", res.Digest),
	)
	return res, nil
}
