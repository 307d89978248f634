package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/zambian-names/internal/app"
	"github.com/JakeFAU/zambian-names/internal/config"
	"github.com/JakeFAU/zambian-names/internal/logging"
)

const closeTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "zambiannames [output-file]",
		Short: "Scrape Zambian names A to Z into a Markdown checklist.",
		Long: `zambiannames fetches the per-letter listings of Zambian names, at most a few
pages at a time, and writes them as a GitHub-flavored Markdown task list.

An existing output file is never overwritten: the document goes to a sibling
named with the run timestamp instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			requested := ""
			if len(args) == 1 {
				requested = args[0]
			}
			return run(cmd.Context(), cfgFile, requested, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "path to a YAML config file (env: ZAMBIANNAMES_*)")
	return cmd
}

func run(ctx context.Context, cfgFile, requested string, out io.Writer) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init services: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if closeErr := a.Close(closeCtx); closeErr != nil {
			logger.Warn("shutdown incomplete", zap.Error(closeErr))
		}
	}()

	res, err := a.Runner().Run(ctx, requested)
	switch {
	case errors.Is(err, app.ErrNothingScraped):
		fmt.Fprintln(out, "No names were scraped; no file written.")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(out, "Names written to %s\n", res.Path)
	return nil
}
