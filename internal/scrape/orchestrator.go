package scrape

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/zambian-names/internal/browser"
	"github.com/JakeFAU/zambian-names/internal/clock/system"
	"github.com/JakeFAU/zambian-names/internal/partition"
	"github.com/JakeFAU/zambian-names/internal/progress"
)

// ErrFactory reports that the shared session factory could not be created.
var ErrFactory = errors.New("create session factory")

// OrchestratorConfig controls a run.
type OrchestratorConfig struct {
	Concurrency int
	Worker      Config
}

// Orchestrator fans out one worker per partition under a shared limiter.
type Orchestrator struct {
	open       browser.Opener
	partitions []partition.Partition
	cfg        OrchestratorConfig
	deps       Deps
	logger     *zap.Logger
}

// NewOrchestrator validates that partition ordinals are dense and unique.
func NewOrchestrator(
	open browser.Opener,
	partitions []partition.Partition,
	cfg OrchestratorConfig,
	deps Deps,
) (*Orchestrator, error) {
	if open == nil {
		return nil, errors.New("browser opener is required")
	}
	seen := make([]bool, len(partitions))
	for _, p := range partitions {
		if p.Ordinal < 0 || p.Ordinal >= len(partitions) || seen[p.Ordinal] {
			return nil, fmt.Errorf("partition %q has invalid ordinal %d", p.Key, p.Ordinal)
		}
		seen[p.Ordinal] = true
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Progress == nil {
		deps.Progress = progress.Discard
	}
	if deps.Clock == nil {
		deps.Clock = system.New()
	}
	return &Orchestrator{
		open:       open,
		partitions: append([]partition.Partition(nil), partitions...),
		cfg:        cfg,
		deps:       deps,
		logger:     deps.Logger.Named("orchestrator"),
	}, nil
}

// Run scrapes every partition and returns outcomes in ordinal order. The only
// error is failure to create the session factory; per-partition failures are
// carried by their Outcome.
func (o *Orchestrator) Run(ctx context.Context, runID uuid.UUID) (ResultSet, error) {
	id := progress.UUIDToBytes(runID)
	started := o.deps.Clock.Now()

	// RUN_START is only emitted once the run can reach RUN_DONE.
	factory, err := o.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFactory, err)
	}
	o.deps.Progress.Emit(progress.Event{RunID: id, TS: started, Stage: progress.StageRunStart})

	limiter := NewLimiter(o.cfg.Concurrency)
	workerDeps := o.deps
	workerDeps.Logger = o.deps.Logger.Named("worker")
	worker := NewWorker(factory, limiter, id, o.cfg.Worker, workerDeps)

	results := make(ResultSet, len(o.partitions))
	var g errgroup.Group
	for _, p := range o.partitions {
		g.Go(func() error {
			results[p.Ordinal] = worker.Scrape(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	if err := factory.Close(); err != nil {
		o.logger.Warn("session factory close failed", zap.Error(err))
	}

	counts := results.Counts()
	elapsed := o.deps.Clock.Now().Sub(started)
	o.deps.Progress.Emit(progress.Event{
		RunID: id,
		TS:    o.deps.Clock.Now(),
		Stage: progress.StageRunDone,
		Items: results.Items(),
		Dur:   elapsed,
	})
	o.logger.Info("all partitions resolved",
		zap.String("run_id", runID.String()),
		zap.Int("success", counts[StatusSuccess]),
		zap.Int("empty", counts[StatusEmpty]),
		zap.Int("timeout", counts[StatusTimeout]),
		zap.Int("error", counts[StatusError]),
		zap.Int("peak_in_flight", limiter.Peak()),
		zap.Duration("dur", elapsed),
	)
	return results, nil
}
