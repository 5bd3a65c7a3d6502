package chart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"rtbstats/domain/series"
	"rtbstats/internal"
	"rtbstats/internal/errors"
)

// Config holds chart settings
type Config struct {
	OutputDir string
	Width     int
	Height    int
	// Format is "svg" or "png"
	Format string
}

// Renderer draws value-over-time and rate-over-time bar charts
type Renderer struct {
	config Config
	layout *Layout
	logger *internal.Logger
}

// NewRenderer creates a renderer writing under config.OutputDir
func NewRenderer(config Config, logger *internal.Logger) (*Renderer, error) {
	if config.Format != "svg" && config.Format != "png" {
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported chart format %q", config.Format))
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, errors.ConfigInvalid(fmt.Sprintf("chart dimensions must be positive, got %dx%d", config.Width, config.Height))
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{
		config: config,
		layout: NewLayout(config.OutputDir, config.Format),
		logger: logger.With("chart"),
	}, nil
}

// Layout exposes the path scheme
func (r *Renderer) Layout() *Layout {
	return r.layout
}

// RenderValues draws one bar per record at its timestamp. An empty store
// draws nothing and returns an empty path.
func (r *Renderer) RenderValues(name string, pass series.Pass, records []series.Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	for i, rec := range records {
		xs[i] = float64(rec.Time)
		ys[i] = rec.Value
	}

	title := fmt.Sprintf("Values for DC=%s (%s)", name, pass)
	path := r.layout.ValuesPath(name, pass)
	if err := r.write(path, barChart(title, "Value", xs, ys, r.config, gochart.ColorBlue)); err != nil {
		return "", errors.RenderError(fmt.Sprintf("%s values chart", name), err)
	}
	return path, nil
}

// RenderRates draws one bar per derivative at its start time. No derivatives
// draws nothing and returns an empty path.
func (r *Renderer) RenderRates(name string, derivatives []series.Derivative) (string, error) {
	if len(derivatives) == 0 {
		return "", nil
	}
	xs := make([]float64, len(derivatives))
	ys := make([]float64, len(derivatives))
	for i, d := range derivatives {
		xs[i] = float64(d.Start)
		ys[i] = d.Rate
	}

	title := fmt.Sprintf("ROCs for DC=%s", name)
	path := r.layout.RatesPath(name)
	if err := r.write(path, barChart(title, "Value ROC", xs, ys, r.config, gochart.ColorRed)); err != nil {
		return "", errors.RenderError(fmt.Sprintf("%s rate-of-change chart", name), err)
	}
	return path, nil
}

// write renders into memory first so a failed render leaves no partial file
func (r *Renderer) write(path string, ch gochart.Chart) error {
	provider := gochart.SVG
	if r.config.Format == "png" {
		provider = gochart.PNG
	}

	var buf bytes.Buffer
	if err := ch.Render(provider, &buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	r.logger.Debug("Wrote %s (%d bytes)", path, buf.Len())
	return nil
}

func barChart(title, yName string, xs, ys []float64, config Config, color drawing.Color) gochart.Chart {
	xMin, xMax := paddedRange(floats.Min(xs), floats.Max(xs))
	// bars grow from zero, so zero is always on the axis
	yMin, yMax := min(0, floats.Min(ys)), max(0, floats.Max(ys))
	if yMin == yMax {
		yMax = 1
	}

	return gochart.Chart{
		Title:      title,
		Width:      config.Width,
		Height:     config.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  "Time",
			Range: &gochart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: gochart.YAxis{
			Name:  yName,
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: []gochart.Series{
			gochart.HistogramSeries{
				Name: title,
				Style: gochart.Style{
					StrokeColor: color,
					FillColor:   color,
					StrokeWidth: 1,
				},
				InnerSeries: gochart.ContinuousSeries{XValues: xs, YValues: ys},
			},
		},
	}
}

// paddedRange widens [lo, hi] by 1% on each side, or by 1 when it is a single point
func paddedRange(lo, hi float64) (float64, float64) {
	pad := (hi - lo) * 0.01
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}
