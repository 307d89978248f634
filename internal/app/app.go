// Package app wires configuration into the long-lived services of a scrape
// run and closes them in order when the run ends.
package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/JakeFAU/zambian-names/internal/browser"
	"github.com/JakeFAU/zambian-names/internal/browser/headless"
	"github.com/JakeFAU/zambian-names/internal/browser/static"
	"github.com/JakeFAU/zambian-names/internal/config"
	"github.com/JakeFAU/zambian-names/internal/progress"
	"github.com/JakeFAU/zambian-names/internal/progress/sinks"
	"github.com/JakeFAU/zambian-names/internal/scrape"
	"github.com/JakeFAU/zambian-names/internal/storage/gcs"
	"github.com/JakeFAU/zambian-names/internal/storage/local"
)

// App holds the services shared by a run. It is built once at startup and
// closed after the run finishes.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	opener    browser.Opener
	artifacts scrape.ArtifactStore
	hub       *progress.Hub
	registry  *prometheus.Registry
	gcs       *storage.Client
}

// New builds the engine opener, artifact store and progress hub described by cfg.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:      cfg,
		logger:   logger,
		opener:   newOpener(cfg.Browser),
		registry: prometheus.NewRegistry(),
	}

	if cfg.Artifacts.GCSBucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.Artifacts.GCSBucket, Prefix: cfg.Artifacts.Prefix})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("init gcs artifact store: %w", err)
		}
		a.gcs = client
		a.artifacts = store
		logger.Info("storing screenshots in gcs", zap.String("bucket", cfg.Artifacts.GCSBucket))
	} else {
		store, err := local.New(local.Config{BaseDir: cfg.Artifacts.Dir})
		if err != nil {
			return nil, fmt.Errorf("init local artifact store: %w", err)
		}
		a.artifacts = store
		logger.Debug("storing screenshots locally", zap.String("dir", store.Dir()))
	}

	promSink, err := sinks.NewPrometheusSink(a.registry)
	if err != nil {
		_ = a.closeStorage()
		return nil, err
	}
	a.hub = progress.NewHub(progress.Config{
		BufferSize:    cfg.Progress.BufferSize,
		FlushInterval: cfg.Progress.FlushInterval,
		Logger:        logger.Named("progress"),
	}, sinks.NewLogSink(logger.Named("progress")), promSink)
	return a, nil
}

func newOpener(cfg config.BrowserConfig) browser.Opener {
	if cfg.Engine == config.EngineStatic {
		return static.Opener(static.Config{UserAgent: cfg.UserAgent})
	}
	return headless.Opener(headless.Config{Headless: cfg.Headless, UserAgent: cfg.UserAgent})
}

// Runner returns a Runner bound to the App's services.
func (a *App) Runner() *Runner {
	return NewRunner(a.cfg, Deps{
		Opener:    a.opener,
		Artifacts: a.artifacts,
		Progress:  a.hub,
		Logger:    a.logger,
	})
}

// Registry exposes the Prometheus registry holding run metrics.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Close flushes progress, writes the metrics textfile when configured and
// releases the storage client.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.hub.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		} else {
			a.logger.Debug("metrics written", zap.String("path", path))
		}
	}
	if err := a.closeStorage(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeStorage() error {
	if a.gcs == nil {
		return nil
	}
	if err := a.gcs.Close(); err != nil {
		return fmt.Errorf("close gcs client: %w", err)
	}
	return nil
}
