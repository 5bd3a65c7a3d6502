package report

import (
	"fmt"
	"io"

	"rtbstats/domain/report"
	"rtbstats/domain/series"
)

// TextSink writes a human-readable summary
type TextSink struct {
	w   io.Writer
	err error

	groupsStarted bool
	ratesStarted  bool
}

// NewTextSink creates a sink writing to w
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// printf writes until the first error, which is then returned by every call
func (s *TextSink) printf(format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func (s *TextSink) Begin(info report.RunInfo) error {
	s.printf("[*] Using %s as data source...\n\n", info.Source)
	s.printf("[*] Current percentage of largest intervals to report: %g\n\n", info.GapsFraction)
	if !info.InputHash.IsEmpty() {
		s.printf("[*] Input fingerprint: sha256:%s\n\n", info.InputHash.Short())
	}
	s.printf("[*] Run %s: %d records from %d lines (%d skipped), %d same-time records merged, %d data centers\n\n",
		info.RunID.Short(), info.Records, info.Lines, info.Skipped, info.Merged, info.Groups)
	return s.err
}

func (s *TextSink) BeginPass(p report.PassInfo) error {
	s.groupsStarted = false
	if p.Pass.Filtered() {
		s.printf("[*] Rerunning with outliers (outside %d*SD) removed (Pass %d).\n\n", p.Threshold, int(p.Pass))
	}
	return s.err
}

func (s *TextSink) StoreReport(r report.StoreReport) error {
	if !r.Group {
		s.printf("[*] Analyzing all data...\n\n")
	} else {
		if !s.groupsStarted {
			s.printf("[*] Analyzing individual data centers...\n\n")
			s.groupsStarted = true
		}
		s.printf("DATA CENTER: %s\n\n", r.Name)
	}
	s.printf("Total Entries: %d\n", r.Values.Count)
	if r.Pass.Filtered() {
		s.printf("Outliers removed: %d\n", r.Removed)
	}
	s.writeValues(r.Values)
	s.writeTimes(r.Times)
	return s.err
}

func (s *TextSink) writeValues(v series.ValueStats) {
	s.printf("Values Statistics\n----------------\n")
	if !v.Available {
		s.printf("not available: %s\n\n", v.Reason)
		return
	}
	s.printf("Total requests: %f\nMax: %f\nMin: %f\nMean: %f\nMedian: %f\nSD: %f\n\n",
		v.Sum, v.Max, v.Min, v.Mean, v.Median, v.StdDev)
}

func (s *TextSink) writeTimes(t series.TimeStats) {
	s.printf("Times Statistics\n----------------\n")
	if !t.Available {
		s.printf("not available: %s\n\n", t.Reason)
		return
	}
	s.printf("Range: %d\nEqual time intervals? (T/F): %t\n", t.Range, t.Uniform)
	s.printf("Max interval: %d\nMin interval: %d\nMean interval: %f\nInterval SD: %f\n",
		t.IntervalMax, t.IntervalMin, t.IntervalMean, t.IntervalStdDev)
	if !t.Uniform {
		s.printf("The largest interval(s) was/were:\n")
		for _, gap := range t.Gaps {
			s.printf("%d from time %d\n", gap.Duration, gap.Start)
		}
	}
	s.printf("\n")
}

func (s *TextSink) RateReport(r report.RateReport) error {
	if !s.ratesStarted {
		s.printf("[*] Rate of change analysis...\n\n")
		s.ratesStarted = true
	}
	if !r.Group {
		s.printf("[*] Analyzing ROCs for all data...\n\n")
	} else {
		s.printf("DATA CENTER: %s\n\n", r.Name)
	}

	s.printf("ROC Statistics\n--------------\n")
	rates := r.Rates
	if !rates.Available {
		s.printf("not available: %s\n\n", rates.Reason)
		return s.err
	}
	s.printf("Mean ROC: %f\nROC SD: %f\n", rates.Mean, rates.StdDev)
	if rates.Skipped > 0 {
		s.printf("Pairs sharing a timestamp (skipped): %d\n", rates.Skipped)
	}
	s.printf("The biggest change(s) was/were:\n")
	for _, d := range rates.Largest {
		s.printf("%f from time %d\n", d.Rate, d.Start)
	}
	s.printf("\n")
	return s.err
}

func (s *TextSink) Close() error {
	return s.err
}
