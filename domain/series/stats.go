package series

// ValueStats summarises the values of a store. All deviations are population
// (divide by n).
type ValueStats struct {
	Count     int
	Available bool
	Reason    string
	Max       float64
	Min       float64
	Mean      float64
	Median    float64
	StdDev    float64
	Sum       float64
}

// TimeStats describes the spacing of a sorted store's timestamps
type TimeStats struct {
	Count     int
	Available bool
	Reason    string

	// Range is the last timestamp minus the first
	Range int64
	// Uniform is true iff every interval equals the first one
	Uniform bool
	// Gaps holds the largest intervals, only when spacing is not uniform
	Gaps []Interval

	IntervalMax    int64
	IntervalMin    int64
	IntervalMean   float64
	IntervalStdDev float64
}

// RateStats describes the rate of change between consecutive records
type RateStats struct {
	Count     int
	Available bool
	Reason    string

	Derivatives []Derivative
	Largest     []Derivative
	Mean        float64
	StdDev      float64
	// Skipped counts adjacent pairs sharing a timestamp
	Skipped int
}

// Degenerate-data reasons
const (
	ReasonEmpty         = "no records"
	ReasonSingleRecord  = "fewer than two records"
	ReasonSameTimestamp = "all records share one timestamp"
)
