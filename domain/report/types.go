package report

import (
	"time"

	"rtbstats/domain/core"
	"rtbstats/domain/series"
)

// RunInfo describes one analyser invocation
type RunInfo struct {
	RunID     core.RunID
	Source    string
	InputHash core.Hash
	StartedAt time.Time

	GapsFraction    float64
	DerivsFraction  float64
	FilterPasses    int
	FilterThreshold int

	Lines   int
	Records int
	Skipped int
	// Merged counts aggregate records folded into an earlier one sharing its timestamp
	Merged int
	Groups int
}

// PassInfo opens a pass in a report
type PassInfo struct {
	Pass      series.Pass
	Threshold int
}

// StoreReport is the value and time analysis of one store in one pass
type StoreReport struct {
	Pass  series.Pass
	Name  string
	Group bool
	// Removed is how many outliers were dropped right before this pass
	Removed int
	Values  series.ValueStats
	Times   series.TimeStats
}

// RateReport is the rate-of-change analysis of one store after the last pass
type RateReport struct {
	Name  string
	Group bool
	Rates series.RateStats
}

// Summary is what a run produced
type Summary struct {
	Info           RunInfo
	Passes         int
	StoreReports   int
	RateReports    int
	Charts         []string
	RenderFailures int
	ReportFailures int
	Duration       time.Duration
}

// Failed reports whether any chart or report output was lost
func (s *Summary) Failed() bool {
	return s.RenderFailures > 0 || s.ReportFailures > 0
}
