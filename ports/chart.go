package ports

import (
	"rtbstats/domain/series"
)

// ChartRenderer draws bar charts of a store and returns the written path.
// Paths are distinct per store name and pass.
type ChartRenderer interface {
	RenderValues(name string, pass series.Pass, records []series.Record) (string, error)
	RenderRates(name string, derivatives []series.Derivative) (string, error)
}
