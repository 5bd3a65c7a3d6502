package testkit

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
)

// RTBLogConfig configures the request log generator
type RTBLogConfig struct {
	DataCenters []string `json:"data_centers"`
	// Ticks is how many reporting intervals each data center emits
	Ticks int   `json:"ticks"`
	Start int64 `json:"start"`
	Step  int64 `json:"step"`

	BaseValue float64 `json:"base_value"`
	Jitter    float64 `json:"jitter"`

	// OutlierRate is the chance a reading is multiplied by OutlierScale
	OutlierRate  float64 `json:"outlier_rate"`
	OutlierScale float64 `json:"outlier_scale"`
	// DropRate is the chance a tick is missing, which opens a gap
	DropRate float64 `json:"drop_rate"`
	// NoiseRate is the chance of an unrelated metric line after a reading
	NoiseRate float64 `json:"noise_rate"`

	Tag  string `json:"tag"`
	Seed int64  `json:"seed"`
}

// DefaultRTBLogConfig returns sensible defaults for request log generation
func DefaultRTBLogConfig() RTBLogConfig {
	return RTBLogConfig{
		DataCenters:  []string{"ams1", "lax1", "nyc2"},
		Ticks:        500,
		Start:        1486080000,
		Step:         10,
		BaseValue:    100,
		Jitter:       5,
		OutlierRate:  0.01,
		OutlierScale: 20,
		DropRate:     0.02,
		NoiseRate:    0.05,
		Tag:          "rtb.requests",
		Seed:         42,
	}
}

// RTBLine is one generated reading
type RTBLine struct {
	Time       int64
	Value      float64
	DataCenter string
	Outlier    bool
}

// RTBLogGenerator generates request logs shaped like the production feed:
// every data center reports once per tick, readings are interleaved, some
// ticks are dropped and some readings spike
type RTBLogGenerator struct {
	config RTBLogConfig
	rng    *rand.Rand
}

// NewRTBLogGenerator creates a new generator
func NewRTBLogGenerator(config RTBLogConfig) *RTBLogGenerator {
	return &RTBLogGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns the readings in emission order
func (g *RTBLogGenerator) Generate() []RTBLine {
	lines := make([]RTBLine, 0, g.config.Ticks*len(g.config.DataCenters))
	for tick := 0; tick < g.config.Ticks; tick++ {
		ts := g.config.Start + int64(tick)*g.config.Step
		for _, dc := range g.config.DataCenters {
			if g.rng.Float64() < g.config.DropRate {
				continue
			}
			value := math.Max(0, g.config.BaseValue+g.rng.NormFloat64()*g.config.Jitter)
			outlier := g.rng.Float64() < g.config.OutlierRate
			if outlier {
				value *= g.config.OutlierScale
			}
			lines = append(lines, RTBLine{Time: ts, Value: math.Round(value*100) / 100, DataCenter: dc, Outlier: outlier})
		}
	}
	return lines
}

// WriteTo writes a freshly generated log to w
func (g *RTBLogGenerator) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, line := range g.Generate() {
		written, err := fmt.Fprintf(bw, "%s %d %.2f dc=%s\n", g.config.Tag, line.Time, line.Value, line.DataCenter)
		n += int64(written)
		if err != nil {
			return n, err
		}
		if g.rng.Float64() < g.config.NoiseRate {
			written, err = fmt.Fprintf(bw, "rtb.bids %d %.2f dc=%s\n", line.Time, line.Value/2, line.DataCenter)
			n += int64(written)
			if err != nil {
				return n, err
			}
		}
	}
	return n, bw.Flush()
}

// WriteFile writes a freshly generated log to path
func (g *RTBLogGenerator) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := g.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
