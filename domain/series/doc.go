// Package series holds time-stamped request records and the statistics
// computed over them.
//
// A Store moves through a small state machine: records are added, sorted by
// time, optionally merged so that timestamps are unique, analyzed, and then
// filtered for outliers. Operations that depend on time order (merge, time
// analysis, rate of change) fail with ErrNotSorted when called on an unsorted
// store, and RemoveOutliers fails with ErrNotAnalyzed until AnalyzeValues has
// cached the median and standard deviation it filters against.
//
// Degenerate data (an empty store, a single record, identical timestamps) is
// never an error: the affected result is returned with Available set to false
// and a Reason explaining why.
package series
