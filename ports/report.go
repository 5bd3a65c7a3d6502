package ports

import (
	"rtbstats/domain/report"
)

// ReportSink receives analysis results in run order: Begin, then for each
// pass BeginPass and one StoreReport per store, then one RateReport per
// store, then Close
type ReportSink interface {
	Begin(info report.RunInfo) error
	BeginPass(pass report.PassInfo) error
	StoreReport(r report.StoreReport) error
	RateReport(r report.RateReport) error
	Close() error
}
