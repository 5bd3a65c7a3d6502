package series

import (
	"slices"

	apperrors "rtbstats/internal/errors"
)

var (
	// ErrNotSorted is returned by operations that need records in time order
	ErrNotSorted = apperrors.PreconditionFailed("store must be sorted by time first")
	// ErrNotAnalyzed is returned by RemoveOutliers before AnalyzeValues has run
	ErrNotAnalyzed = apperrors.PreconditionFailed("store values must be analyzed first")
)

// Store is an ordered collection of records for one group (or for all of them)
type Store struct {
	name    string
	records []Record

	sorted   bool
	analyzed bool

	// cached by AnalyzeValues for RemoveOutliers
	median    float64
	stdDev    float64
	hasValues bool

	// cached by AnalyzeTime
	intervals []Interval
}

// NewStore creates an empty store
func NewStore(name string) *Store {
	return &Store{name: name, sorted: true}
}

// Name returns the store name
func (s *Store) Name() string {
	return s.name
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of the records in their current order
func (s *Store) Records() []Record {
	return slices.Clone(s.records)
}

// Values returns the record values in their current order
func (s *Store) Values() []float64 {
	values := make([]float64, len(s.records))
	for i, r := range s.records {
		values[i] = r.Value
	}
	return values
}

// Sorted reports whether the records are known to be in time order
func (s *Store) Sorted() bool {
	return s.sorted
}

// Analyzed reports whether a median and standard deviation are cached
func (s *Store) Analyzed() bool {
	return s.analyzed
}

// Median returns the median cached by the last AnalyzeValues
func (s *Store) Median() (float64, bool) {
	return s.median, s.analyzed && s.hasValues
}

// StdDev returns the population standard deviation cached by the last AnalyzeValues
func (s *Store) StdDev() (float64, bool) {
	return s.stdDev, s.analyzed && s.hasValues
}

// Intervals returns the intervals computed by the last AnalyzeTime
func (s *Store) Intervals() []Interval {
	return slices.Clone(s.intervals)
}

// Add appends a record. Order is not kept; call SortByTime before any
// time-based operation.
func (s *Store) Add(time int64, value float64, group string) {
	s.AddRecord(Record{Time: time, Value: value, Group: group})
}

// AddRecord appends r
func (s *Store) AddRecord(r Record) {
	if n := len(s.records); n > 0 && s.records[n-1].Time > r.Time {
		s.sorted = false
	}
	s.records = append(s.records, r)
	s.analyzed = false
	s.intervals = nil
}

// SortByTime stable-sorts the records ascending by timestamp
func (s *Store) SortByTime() {
	slices.SortStableFunc(s.records, func(a, b Record) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	s.sorted = true
}

// MergeSameTimestamp folds every run of records sharing a timestamp into one
// record holding the run's summed value and the first record's group. It
// returns how many records were folded away; running it again is a no-op.
func (s *Store) MergeSameTimestamp() (int, error) {
	if !s.sorted {
		return 0, ErrNotSorted
	}
	if len(s.records) < 2 {
		return 0, nil
	}

	merged := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		last := len(merged) - 1
		if last >= 0 && merged[last].Time == r.Time {
			merged[last] = Record{Time: merged[last].Time, Value: merged[last].Value + r.Value, Group: merged[last].Group}
			continue
		}
		merged = append(merged, r)
	}

	folded := len(s.records) - len(merged)
	if folded > 0 {
		s.records = merged
		s.analyzed = false
		s.intervals = nil
	}
	return folded, nil
}

// RemoveOutliers drops every record whose value lies outside
// [median - k*sd, median + k*sd] using the statistics cached by the last
// AnalyzeValues. The cache is invalidated afterwards, so another pass needs a
// fresh AnalyzeValues. It returns the number of records removed.
func (s *Store) RemoveOutliers(k int) (int, error) {
	if k < 0 {
		return 0, apperrors.Newf(apperrors.CodeInvalidInput, "outlier threshold must not be negative, got %d", k)
	}
	if !s.analyzed {
		return 0, ErrNotAnalyzed
	}
	if len(s.records) == 0 {
		return 0, nil
	}

	limit := float64(k) * s.stdDev
	lo, hi := s.median-limit, s.median+limit

	kept := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if r.Value >= lo && r.Value <= hi {
			kept = append(kept, r)
		}
	}

	removed := len(s.records) - len(kept)
	s.records = kept
	s.analyzed = false
	s.intervals = nil
	return removed, nil
}
