package app

import (
	"context"
	"time"

	"rtbstats/domain/core"
	"rtbstats/domain/report"
	"rtbstats/domain/series"
	"rtbstats/internal"
	"rtbstats/internal/errors"
	"rtbstats/internal/ingest"
	"rtbstats/ports"
)

// AnalysisConfig holds the tunables of a run
type AnalysisConfig struct {
	GapsFraction    float64
	DerivsFraction  float64
	FilterPasses    int
	FilterThreshold int
}

// AnalysisService runs the whole pipeline: parse, group, merge, analyze and
// render every store once unfiltered and once per outlier-filtering pass,
// then analyze rates of change on the filtered stores
type AnalysisService struct {
	parser *ingest.Parser
	charts ports.ChartRenderer
	sinks  []ports.ReportSink
	config AnalysisConfig
	logger *internal.Logger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(parser *ingest.Parser, charts ports.ChartRenderer, sinks []ports.ReportSink, config AnalysisConfig, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		parser: parser,
		charts: charts,
		sinks:  sinks,
		config: config,
		logger: logger.With("analysis"),
	}
}

// Run analyzes the log at path
func (s *AnalysisService) Run(ctx context.Context, path string) (*report.Summary, error) {
	all, stats, err := s.parser.ParseFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "ingestion failed")
	}
	info := report.RunInfo{
		RunID:     core.NewRunID(),
		Source:    path,
		InputHash: stats.Hash,
		Lines:     stats.Lines,
		Records:   stats.Accepted,
		Skipped:   stats.Skipped,
	}
	return s.Analyze(ctx, info, all)
}

// Analyze runs the pipeline on an already populated aggregate store. Group
// stores are replayed from the aggregate's raw records before it is merged.
func (s *AnalysisService) Analyze(ctx context.Context, info report.RunInfo, all *series.Store) (*report.Summary, error) {
	start := time.Now()
	if info.RunID.IsEmpty() {
		info.RunID = core.NewRunID()
	}
	info.StartedAt = start
	info.GapsFraction = s.config.GapsFraction
	info.DerivsFraction = s.config.DerivsFraction
	info.FilterPasses = s.config.FilterPasses
	info.FilterThreshold = s.config.FilterThreshold

	if !all.Sorted() {
		all.SortByTime()
	}
	groups := series.Replay(all)
	groups.SortAll()

	merged, err := all.MergeSameTimestamp()
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge same-timestamp records")
	}
	info.Merged = merged
	info.Groups = groups.Len()
	if info.Records == 0 {
		info.Records = all.Len() + merged
	}

	s.logger.Info("Run %s: %d records, %d merged into the aggregate, %d data centers",
		info.RunID.Short(), info.Records, merged, groups.Len())

	summary := &report.Summary{Info: info}
	s.emit(summary, func(sink ports.ReportSink) error { return sink.Begin(info) })

	stores := append([]*series.Store{all}, groups.Stores()...)
	removed := make([]int, len(stores))

	for pass := series.Unfiltered; int(pass) <= s.config.FilterPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return summary, errors.Wrapf(err, "run interrupted before %s", pass)
		}

		if pass.Filtered() {
			total := 0
			for i, store := range stores {
				n, err := store.RemoveOutliers(s.config.FilterThreshold)
				if err != nil {
					return summary, errors.Wrapf(err, "failed to filter %s", store.Name())
				}
				removed[i] = n
				total += n
			}
			summary.Passes = int(pass)
			s.logger.Info("Pass %d: removed %d outliers beyond %d SD", int(pass), total, s.config.FilterThreshold)
		}

		passInfo := report.PassInfo{Pass: pass, Threshold: s.config.FilterThreshold}
		s.emit(summary, func(sink ports.ReportSink) error { return sink.BeginPass(passInfo) })

		for i, store := range stores {
			r, err := s.analyzeStore(store, pass, i > 0)
			if err != nil {
				return summary, err
			}
			r.Removed = removed[i]
			s.emit(summary, func(sink ports.ReportSink) error { return sink.StoreReport(r) })
			summary.StoreReports++

			s.render(summary, store.Name(), func() (string, error) {
				return s.charts.RenderValues(store.Name(), pass, store.Records())
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, errors.Wrap(err, "run interrupted before rate-of-change analysis")
	}
	for i, store := range stores {
		rates, err := store.AnalyzeRateOfChange(s.config.DerivsFraction)
		if err != nil {
			return summary, errors.Wrapf(err, "failed to analyze rate of change of %s", store.Name())
		}
		r := report.RateReport{Name: store.Name(), Group: i > 0, Rates: rates}
		s.emit(summary, func(sink ports.ReportSink) error { return sink.RateReport(r) })
		summary.RateReports++

		s.render(summary, store.Name(), func() (string, error) {
			return s.charts.RenderRates(store.Name(), rates.Derivatives)
		})
	}

	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			summary.ReportFailures++
			s.logger.Error("Failed to close report: %v", err)
		}
	}

	summary.Duration = time.Since(start)
	s.logger.Info("Run %s finished in %.2fs: %d store reports, %d charts, %d render failures, %d report failures",
		info.RunID.Short(), summary.Duration.Seconds(), summary.StoreReports, len(summary.Charts),
		summary.RenderFailures, summary.ReportFailures)
	return summary, nil
}

func (s *AnalysisService) analyzeStore(store *series.Store, pass series.Pass, group bool) (report.StoreReport, error) {
	r := report.StoreReport{Pass: pass, Name: store.Name(), Group: group}

	var err error
	if r.Values, err = store.AnalyzeValues(); err != nil {
		return r, errors.Wrapf(err, "failed to analyze values of %s", store.Name())
	}
	if r.Times, err = store.AnalyzeTime(s.config.GapsFraction); err != nil {
		return r, errors.Wrapf(err, "failed to analyze times of %s", store.Name())
	}
	return r, nil
}

// emit hands a report to every sink. A failing sink is logged and counted;
// the others still receive it.
func (s *AnalysisService) emit(summary *report.Summary, deliver func(ports.ReportSink) error) {
	for _, sink := range s.sinks {
		if err := deliver(sink); err != nil {
			summary.ReportFailures++
			s.logger.Error("Report output failed: %v", err)
		}
	}
}

// render draws one chart. Failures are logged and counted so one store's
// chart never stops the analysis of the next.
func (s *AnalysisService) render(summary *report.Summary, name string, draw func() (string, error)) {
	path, err := draw()
	if err != nil {
		summary.RenderFailures++
		s.logger.Error("%v", err)
		return
	}
	if path == "" {
		s.logger.Debug("No chart for %s: nothing to plot", name)
		return
	}
	summary.Charts = append(summary.Charts, path)
	s.logger.Debug("Chart for %s written to %s", name, path)
}
