package series

import "fmt"

// AggregateName is the name of the store holding every record regardless of group
const AggregateName = "ALL"

// Record is one request event. Group is carried on every record; stores
// built for a single group keep it but never read it.
type Record struct {
	Time  int64
	Value float64
	Group string
}

func (r Record) String() string {
	if r.Group == "" {
		return fmt.Sprintf("(%d, %g)", r.Time, r.Value)
	}
	return fmt.Sprintf("(%d, %g, %s)", r.Time, r.Value, r.Group)
}

// Interval is the time between two time-adjacent records, keyed by the earlier one
type Interval struct {
	Duration int64
	Start    int64
}

// Derivative is the finite-difference rate of change between two records,
// keyed by the earlier one
type Derivative struct {
	Rate  float64
	Start int64
}

// Pass numbers an analysis round: 0 is the unfiltered data, 1..N are the
// outlier-filtering passes
type Pass int

// Unfiltered is the pass run before any outliers are removed
const Unfiltered Pass = 0

// Filtered reports whether outliers were removed before this pass
func (p Pass) Filtered() bool {
	return p > Unfiltered
}

func (p Pass) String() string {
	if !p.Filtered() {
		return "unfiltered"
	}
	return fmt.Sprintf("filtered pass %d", int(p))
}
