package testkit

import (
	"bytes"
	"strings"
	"testing"
)

func TestRTBLogGenerator_Deterministic(t *testing.T) {
	config := DefaultRTBLogConfig()
	config.Ticks = 50

	var a, b bytes.Buffer
	if _, err := NewRTBLogGenerator(config).WriteTo(&a); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}
	if _, err := NewRTBLogGenerator(config).WriteTo(&b); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	if a.String() != b.String() {
		t.Error("Expected identical output for identical seeds")
	}
}

func TestRTBLogGenerator_Shape(t *testing.T) {
	config := DefaultRTBLogConfig()
	config.Ticks = 200
	config.DropRate = 0
	config.OutlierRate = 0

	lines := NewRTBLogGenerator(config).Generate()

	if len(lines) != config.Ticks*len(config.DataCenters) {
		t.Fatalf("Expected %d lines, got %d", config.Ticks*len(config.DataCenters), len(lines))
	}
	for i := 1; i < len(lines); i++ {
		if lines[i].Time < lines[i-1].Time {
			t.Fatalf("Expected emission order to follow time, line %d went backwards", i)
		}
	}
	for _, line := range lines {
		if line.Outlier {
			t.Error("Expected no outliers with OutlierRate 0")
		}
		if line.Value < 0 {
			t.Errorf("Expected non-negative values, got %f", line.Value)
		}
	}
}

func TestRTBLogGenerator_LineFormat(t *testing.T) {
	config := DefaultRTBLogConfig()
	config.Ticks = 20
	config.NoiseRate = 1

	var buf bytes.Buffer
	if _, err := NewRTBLogGenerator(config).WriteTo(&buf); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	var requests, noise int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 4 || !strings.HasPrefix(fields[3], "dc=") {
			t.Fatalf("Malformed line %q", line)
		}
		switch fields[0] {
		case "rtb.requests":
			requests++
		case "rtb.bids":
			noise++
		default:
			t.Fatalf("Unexpected tag in %q", line)
		}
	}
	if requests == 0 || requests != noise {
		t.Errorf("Expected one noise line per request, got %d requests and %d noise", requests, noise)
	}
}
