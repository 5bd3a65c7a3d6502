package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"rtbstats/internal"
	"rtbstats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input    InputConfig
	Analysis AnalysisConfig
	Charts   ChartConfig
	Report   ReportConfig
	LogLevel internal.LogLevel
}

// InputConfig holds log parsing settings
type InputConfig struct {
	RecordTag string
}

// AnalysisConfig holds the statistics tunables
type AnalysisConfig struct {
	GapsFraction    float64
	DerivsFraction  float64
	FilterPasses    int
	FilterThreshold int
}

// ChartConfig holds chart rendering settings
type ChartConfig struct {
	OutputDir string
	Width     int
	Height    int
	Format    string
}

// ReportConfig holds structured report settings
type ReportConfig struct {
	// WorkbookPath enables the .xlsx export when set
	WorkbookPath string
}

// Chart formats
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Defaults
const (
	DefaultRecordTag       = "rtb.requests"
	DefaultGapsFraction    = 0.01
	DefaultDerivsFraction  = 0.01
	DefaultFilterPasses    = 3
	DefaultFilterThreshold = 3
	DefaultChartWidth      = 1800
	DefaultChartHeight     = 900
)

// Default returns the configuration used when no variables are set
func Default() *Config {
	return &Config{
		Input: InputConfig{RecordTag: DefaultRecordTag},
		Analysis: AnalysisConfig{
			GapsFraction:    DefaultGapsFraction,
			DerivsFraction:  DefaultDerivsFraction,
			FilterPasses:    DefaultFilterPasses,
			FilterThreshold: DefaultFilterThreshold,
		},
		Charts: ChartConfig{
			OutputDir: ".",
			Width:     DefaultChartWidth,
			Height:    DefaultChartHeight,
			Format:    FormatSVG,
		},
		LogLevel: internal.LogLevelInfo,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()

	var err error
	config.Input.RecordTag = getEnvOrDefault("RECORD_TAG", DefaultRecordTag)

	if config.Analysis.GapsFraction, err = getEnvFloat("GAPS_FRACTION", DefaultGapsFraction); err != nil {
		return nil, err
	}
	if config.Analysis.DerivsFraction, err = getEnvFloat("DERIVS_FRACTION", DefaultDerivsFraction); err != nil {
		return nil, err
	}
	if config.Analysis.FilterPasses, err = getEnvInt("FILTER_PASSES", DefaultFilterPasses); err != nil {
		return nil, err
	}
	if config.Analysis.FilterThreshold, err = getEnvInt("FILTER_THRESHOLD", DefaultFilterThreshold); err != nil {
		return nil, err
	}

	config.Charts.OutputDir = getEnvOrDefault("OUTPUT_DIR", ".")
	if config.Charts.Width, err = getEnvInt("CHART_WIDTH", DefaultChartWidth); err != nil {
		return nil, err
	}
	if config.Charts.Height, err = getEnvInt("CHART_HEIGHT", DefaultChartHeight); err != nil {
		return nil, err
	}
	config.Charts.Format = strings.ToLower(getEnvOrDefault("CHART_FORMAT", FormatSVG))

	config.Report.WorkbookPath = os.Getenv("REPORT_WORKBOOK")

	if value := os.Getenv("LOG_LEVEL"); value != "" {
		level, ok := internal.ParseLogLevel(value)
		if !ok {
			return nil, errors.ConfigInvalid(fmt.Sprintf("LOG_LEVEL %q is not one of ERROR, WARN, INFO, DEBUG, TRACE", value))
		}
		config.LogLevel = level
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks the ranges of every setting
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input.RecordTag) == "" {
		return errors.ConfigInvalid("record tag is required")
	}
	if !inFraction(c.Analysis.GapsFraction) {
		return errors.ConfigInvalid(fmt.Sprintf("gaps fraction must be in (0, 1], got %g", c.Analysis.GapsFraction))
	}
	if !inFraction(c.Analysis.DerivsFraction) {
		return errors.ConfigInvalid(fmt.Sprintf("derivatives fraction must be in (0, 1], got %g", c.Analysis.DerivsFraction))
	}
	if c.Analysis.FilterPasses < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("filter passes must not be negative, got %d", c.Analysis.FilterPasses))
	}
	if c.Analysis.FilterThreshold < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("filter threshold must be at least 1, got %d", c.Analysis.FilterThreshold))
	}
	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("chart dimensions must be positive, got %dx%d", c.Charts.Width, c.Charts.Height))
	}
	if c.Charts.Format != FormatSVG && c.Charts.Format != FormatPNG {
		return errors.ConfigInvalid(fmt.Sprintf("chart format must be %s or %s, got %q", FormatSVG, FormatPNG, c.Charts.Format))
	}
	if c.Charts.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	return nil
}

func inFraction(f float64) bool {
	return !math.IsNaN(f) && f > 0 && f <= 1
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}
