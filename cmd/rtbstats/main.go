package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rtbstats/adapters/chart"
	"rtbstats/adapters/report"
	"rtbstats/app"
	"rtbstats/internal"
	"rtbstats/internal/config"
	"rtbstats/internal/errors"
	"rtbstats/internal/ingest"
	"rtbstats/ports"
)

func main() {
	// .env is optional; the environment wins over it
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[*] Unable to analyze: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "rtbstats [file]",
		Short: "Summarise an RTB request log per data center",
		Long: `Parse an RTB request log, aggregate request counts by data center and
over time, and report value, spacing and rate-of-change statistics with bar
charts, before and after repeated outlier filtering.

Qualifying lines look like:
  rtb.requests <unix-time> <value> dc=<data-center>

Settings are read from the environment (or a .env file):
  RECORD_TAG, GAPS_FRACTION, DERIVS_FRACTION, FILTER_PASSES, FILTER_THRESHOLD,
  OUTPUT_DIR, CHART_WIDTH, CHART_HEIGHT, CHART_FORMAT, REPORT_WORKBOOK, LOG_LEVEL

Example: rtbstats data.Montoya.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], stdout)
		},
	}
}

func run(ctx context.Context, path string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg.LogLevel)

	renderer, err := chart.NewRenderer(chart.Config{
		OutputDir: cfg.Charts.OutputDir,
		Width:     cfg.Charts.Width,
		Height:    cfg.Charts.Height,
		Format:    cfg.Charts.Format,
	}, logger)
	if err != nil {
		return err
	}

	sinks := []ports.ReportSink{report.NewTextSink(stdout)}
	if cfg.Report.WorkbookPath != "" {
		workbook, err := report.NewWorkbookSink(cfg.Report.WorkbookPath)
		if err != nil {
			return err
		}
		sinks = append(sinks, workbook)
	}

	svc := app.NewAnalysisService(
		ingest.NewParser(cfg.Input.RecordTag, logger),
		renderer,
		sinks,
		app.AnalysisConfig{
			GapsFraction:    cfg.Analysis.GapsFraction,
			DerivsFraction:  cfg.Analysis.DerivsFraction,
			FilterPasses:    cfg.Analysis.FilterPasses,
			FilterThreshold: cfg.Analysis.FilterThreshold,
		},
		logger,
	)

	summary, err := svc.Run(ctx, path)
	if err != nil {
		return err
	}
	if summary.Failed() {
		return errors.Newf(errors.CodeRenderError, "%d chart(s) and %d report output(s) failed; see log",
			summary.RenderFailures, summary.ReportFailures)
	}
	return nil
}
