package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/zambian-names/internal/browser"
	"github.com/JakeFAU/zambian-names/internal/clock/system"
	"github.com/JakeFAU/zambian-names/internal/partition"
	"github.com/JakeFAU/zambian-names/internal/progress"
)

// Default per-partition bounds.
const (
	DefaultWaitTimeout       = 30 * time.Second
	DefaultNavigationTimeout = 90 * time.Second
	DefaultScreenshotTimeout = 10 * time.Second
)

// ErrPanic wraps a panic recovered inside a worker.
var ErrPanic = errors.New("worker panicked")

// Config controls Worker behavior.
type Config struct {
	Selector          string
	WaitTimeout       time.Duration
	NavigationTimeout time.Duration
	ScreenshotTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Selector == "" {
		c.Selector = DefaultSelector
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = DefaultNavigationTimeout
	}
	if c.ScreenshotTimeout <= 0 {
		c.ScreenshotTimeout = DefaultScreenshotTimeout
	}
	return c
}

// Deps bundles the collaborators shared by every worker in a run.
type Deps struct {
	Artifacts ArtifactStore
	Progress  progress.Emitter
	Clock     Clock
	Logger    *zap.Logger
}

// Worker resolves one partition to one Outcome. A single Worker is shared by
// all partitions of a run; Scrape is safe for concurrent use.
type Worker struct {
	factory   browser.Factory
	limiter   *Limiter
	artifacts ArtifactStore
	emitter   progress.Emitter
	clock     Clock
	runID     [16]byte
	cfg       Config
	logger    *zap.Logger
}

// NewWorker constructs a Worker bound to a run's factory and limiter.
func NewWorker(factory browser.Factory, limiter *Limiter, runID [16]byte, cfg Config, deps Deps) *Worker {
	w := &Worker{
		factory:   factory,
		limiter:   limiter,
		artifacts: deps.Artifacts,
		emitter:   deps.Progress,
		clock:     deps.Clock,
		runID:     runID,
		cfg:       cfg.withDefaults(),
		logger:    deps.Logger,
	}
	if w.emitter == nil {
		w.emitter = progress.Discard
	}
	if w.clock == nil {
		w.clock = system.New()
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Scrape acquires a fetch slot, runs one attempt in an isolated session and
// classifies the result. It never panics and never returns an error; failures
// are reported through the Outcome.
func (w *Worker) Scrape(ctx context.Context, p partition.Partition) Outcome {
	started := w.clock.Now()
	release, err := w.limiter.Acquire(ctx)
	if err != nil {
		out := failed(p, err)
		out.Duration = w.clock.Now().Sub(started)
		w.logger.Warn("partition never acquired a fetch slot", zap.String("key", p.Key), zap.Error(err))
		w.emitDone(p, out)
		return out
	}
	defer release()

	w.emitter.Emit(progress.Event{
		RunID:   w.runID,
		TS:      w.clock.Now(),
		Stage:   progress.StagePartitionStart,
		Key:     p.Key,
		Address: p.Address,
	})

	out := w.attempt(ctx, p)
	out.Duration = w.clock.Now().Sub(started)
	w.log(p, out)
	w.emitDone(p, out)
	return out
}

func (w *Worker) attempt(ctx context.Context, p partition.Partition) (out Outcome) {
	var session browser.Session
	defer func() {
		if r := recover(); r != nil {
			out = failed(p, fmt.Errorf("%w: %v", ErrPanic, r))
		}
		if session == nil {
			return
		}
		if out.Status == StatusTimeout || out.Status == StatusError {
			out.Artifact = w.capture(ctx, session, p)
		}
		if err := session.Close(); err != nil {
			w.logger.Debug("session close failed", zap.String("key", p.Key), zap.Error(err))
		}
	}()

	var err error
	session, err = w.factory.NewSession(ctx)
	if err != nil {
		session = nil
		return failed(p, fmt.Errorf("open session: %w", err))
	}

	navCtx, cancelNav := context.WithTimeout(ctx, w.cfg.NavigationTimeout)
	defer cancelNav()
	if err := session.Load(navCtx, p.Address); err != nil {
		return failed(p, err)
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, w.cfg.WaitTimeout)
	defer cancelWait()
	if err := session.WaitForSelector(waitCtx, w.cfg.Selector); err != nil {
		if isWaitTimeout(ctx, err) {
			return Outcome{Key: p.Key, Items: []string{}, Status: StatusTimeout, Err: err}
		}
		return failed(p, err)
	}

	items, err := Extract(waitCtx, session, w.cfg.Selector)
	if err != nil {
		return failed(p, err)
	}
	if len(items) == 0 {
		return Outcome{Key: p.Key, Items: items, Status: StatusEmpty}
	}
	return Outcome{Key: p.Key, Items: items, Status: StatusSuccess}
}

// capture stores a full-page screenshot as error_page_<KEY>.png. Failures are
// logged and yield an empty URI.
func (w *Worker) capture(ctx context.Context, session browser.Session, p partition.Partition) (uri string) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warn("screenshot panicked", zap.String("key", p.Key), zap.Any("panic", r))
			uri = ""
		}
	}()
	if w.artifacts == nil {
		return ""
	}
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.ScreenshotTimeout)
	defer cancel()

	png, err := session.Screenshot(shotCtx)
	if err != nil {
		w.logger.Debug("screenshot unavailable", zap.String("key", p.Key), zap.Error(err))
		return ""
	}
	uri, err = w.artifacts.PutObject(shotCtx, ArtifactName(p), "image/png", bytes.NewReader(png))
	if err != nil {
		w.logger.Warn("store screenshot failed", zap.String("key", p.Key), zap.Error(err))
		return ""
	}
	return uri
}

func (w *Worker) log(p partition.Partition, out Outcome) {
	fields := []zap.Field{
		zap.String("key", p.Key),
		zap.String("url", p.Address),
		zap.String("status", string(out.Status)),
		zap.Int("items", len(out.Items)),
		zap.Duration("dur", out.Duration),
	}
	if out.Artifact != "" {
		fields = append(fields, zap.String("screenshot", out.Artifact))
	}
	switch out.Status {
	case StatusTimeout:
		w.logger.Warn("timed out waiting for names", append(fields, zap.Error(out.Err))...)
	case StatusError:
		w.logger.Error("partition failed", append(fields, zap.Error(out.Err))...)
	default:
		w.logger.Debug("partition scraped", fields...)
	}
}

func (w *Worker) emitDone(p partition.Partition, out Outcome) {
	evt := progress.Event{
		RunID:   w.runID,
		TS:      w.clock.Now(),
		Stage:   progress.StagePartitionDone,
		Key:     p.Key,
		Address: p.Address,
		Status:  string(out.Status),
		Items:   len(out.Items),
		Dur:     out.Duration,
	}
	if out.Err != nil {
		evt.Note = out.Err.Error()
	}
	w.emitter.Emit(evt)
}

// ArtifactName is the diagnostic screenshot name for a partition.
func ArtifactName(p partition.Partition) string {
	return "error_page_" + p.Label() + ".png"
}

func failed(p partition.Partition, err error) Outcome {
	return Outcome{Key: p.Key, Items: []string{}, Status: StatusError, Err: err}
}

// isWaitTimeout separates the selector bound expiring from the run itself
// being canceled.
func isWaitTimeout(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	return errors.Is(err, browser.ErrWaitTimeout) || errors.Is(err, context.DeadlineExceeded)
}
