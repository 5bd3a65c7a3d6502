package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"rtbstats/domain/report"
	"rtbstats/internal/errors"
)

// Workbook sheet names
const (
	SheetRun     = "Run"
	SheetValues  = "Values"
	SheetTimes   = "Times"
	SheetGaps    = "Gaps"
	SheetRates   = "Rates"
	SheetChanges = "Changes"
)

var sheetHeaders = map[string][]interface{}{
	SheetRun:     {"Field", "Value"},
	SheetValues:  {"Pass", "Store", "Group", "Removed", "Count", "Available", "Reason", "Max", "Min", "Mean", "Median", "SD", "Sum"},
	SheetTimes:   {"Pass", "Store", "Group", "Count", "Available", "Reason", "Range", "Uniform", "Max Interval", "Min Interval", "Mean Interval", "Interval SD", "Gaps"},
	SheetGaps:    {"Pass", "Store", "Rank", "Duration", "Start"},
	SheetRates:   {"Store", "Group", "Count", "Available", "Reason", "Derivatives", "Skipped", "Mean", "SD"},
	SheetChanges: {"Store", "Rank", "Rate", "Start"},
}

var sheetOrder = []string{SheetRun, SheetValues, SheetTimes, SheetGaps, SheetRates, SheetChanges}

// WorkbookSink exports every reported field to an .xlsx workbook, written on Close
type WorkbookSink struct {
	path string
	file *excelize.File
	rows map[string]int
}

// NewWorkbookSink prepares a workbook that Close saves to path
func NewWorkbookSink(path string) (*WorkbookSink, error) {
	f := excelize.NewFile()
	s := &WorkbookSink{path: path, file: f, rows: make(map[string]int)}

	if err := f.SetSheetName("Sheet1", SheetRun); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to name run sheet")
	}
	for _, sheet := range sheetOrder {
		if sheet != SheetRun {
			if _, err := f.NewSheet(sheet); err != nil {
				f.Close()
				return nil, errors.Wrapf(err, "failed to create sheet %s", sheet)
			}
		}
		if err := s.append(sheet, sheetHeaders[sheet]...); err != nil {
			f.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *WorkbookSink) append(sheet string, values ...interface{}) error {
	row := s.rows[sheet] + 1
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrapf(err, "row %d of %s", row, sheet)
	}
	if err := s.file.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.Wrapf(err, "failed to write row %d of %s", row, sheet)
	}
	s.rows[sheet] = row
	return nil
}

// Rows returns how many rows, header included, sheet holds
func (s *WorkbookSink) Rows(sheet string) int {
	return s.rows[sheet]
}

func (s *WorkbookSink) Begin(info report.RunInfo) error {
	fields := [][2]interface{}{
		{"Run ID", info.RunID.String()},
		{"Source", info.Source},
		{"Input SHA-256", info.InputHash.String()},
		{"Started", info.StartedAt.UTC().Format(time.RFC3339)},
		{"Gaps fraction", info.GapsFraction},
		{"Derivatives fraction", info.DerivsFraction},
		{"Filter passes", info.FilterPasses},
		{"Filter threshold (SD)", info.FilterThreshold},
		{"Lines", info.Lines},
		{"Records", info.Records},
		{"Skipped lines", info.Skipped},
		{"Merged records", info.Merged},
		{"Data centers", info.Groups},
	}
	for _, kv := range fields {
		if err := s.append(SheetRun, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkbookSink) BeginPass(report.PassInfo) error {
	return nil
}

func (s *WorkbookSink) StoreReport(r report.StoreReport) error {
	pass := int(r.Pass)
	v := r.Values
	values := []interface{}{pass, r.Name, r.Group, r.Removed, v.Count, v.Available, v.Reason}
	if v.Available {
		values = append(values, v.Max, v.Min, v.Mean, v.Median, v.StdDev, v.Sum)
	}
	if err := s.append(SheetValues, values...); err != nil {
		return err
	}

	t := r.Times
	times := []interface{}{pass, r.Name, r.Group, t.Count, t.Available, t.Reason}
	if t.Available {
		times = append(times, t.Range, t.Uniform, t.IntervalMax, t.IntervalMin, t.IntervalMean, t.IntervalStdDev, len(t.Gaps))
	}
	if err := s.append(SheetTimes, times...); err != nil {
		return err
	}

	for i, gap := range t.Gaps {
		if err := s.append(SheetGaps, pass, r.Name, i+1, gap.Duration, gap.Start); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkbookSink) RateReport(r report.RateReport) error {
	rs := r.Rates
	values := []interface{}{r.Name, r.Group, rs.Count, rs.Available, rs.Reason, len(rs.Derivatives), rs.Skipped}
	if rs.Available {
		values = append(values, rs.Mean, rs.StdDev)
	}
	if err := s.append(SheetRates, values...); err != nil {
		return err
	}
	for i, d := range rs.Largest {
		if err := s.append(SheetChanges, r.Name, i+1, d.Rate, d.Start); err != nil {
			return err
		}
	}
	return nil
}

// Close saves the workbook
func (s *WorkbookSink) Close() error {
	defer s.file.Close()
	if err := s.file.SaveAs(s.path); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to save workbook %s", s.path))
	}
	return nil
}
