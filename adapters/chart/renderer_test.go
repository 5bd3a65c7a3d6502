package chart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtbstats/domain/series"
	"rtbstats/internal"
	"rtbstats/internal/errors"
)

func newTestRenderer(t *testing.T, format string) *Renderer {
	t.Helper()
	r, err := NewRenderer(Config{OutputDir: t.TempDir(), Width: 640, Height: 320, Format: format}, internal.Discard)
	require.NoError(t, err)
	return r
}

func TestNewRenderer_RejectsBadConfig(t *testing.T) {
	_, err := NewRenderer(Config{OutputDir: ".", Width: 10, Height: 10, Format: "gif"}, internal.Discard)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = NewRenderer(Config{OutputDir: ".", Width: 0, Height: 10, Format: "svg"}, internal.Discard)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestRenderValues_WritesSVG(t *testing.T) {
	r := newTestRenderer(t, "svg")
	records := []series.Record{
		{Time: 10, Value: 8}, {Time: 20, Value: 4}, {Time: 35, Value: 6},
	}

	path, err := r.RenderValues("ALL", series.Unfiltered, records)
	require.NoError(t, err)

	assert.Equal(t, r.Layout().ValuesPath("ALL", series.Unfiltered), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<svg"))
}

func TestRenderValues_DegenerateSeries(t *testing.T) {
	r := newTestRenderer(t, "png")

	// one point, and a constant zero series
	_, err := r.RenderValues("single", 1, []series.Record{{Time: 5, Value: 3}})
	assert.NoError(t, err)
	_, err = r.RenderValues("flat", 1, []series.Record{{Time: 1}, {Time: 2}, {Time: 3}})
	assert.NoError(t, err)

	entries, err := os.ReadDir(r.Layout().ValuesDir(1))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRenderValues_EmptyDrawsNothing(t *testing.T) {
	r := newTestRenderer(t, "svg")

	path, err := r.RenderValues("empty", series.Unfiltered, nil)

	assert.NoError(t, err)
	assert.Empty(t, path)
	_, err = os.Stat(r.Layout().ValuesDir(series.Unfiltered))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderRates_NegativeRates(t *testing.T) {
	r := newTestRenderer(t, "svg")
	derivs := []series.Derivative{{Rate: 2, Start: 0}, {Rate: -3.5, Start: 2}, {Rate: 0.5, Start: 4}}

	path, err := r.RenderRates("lax", derivs)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(r.Layout().RatesDir(), "lax_rocs.svg"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRender_UnwritableDirectory(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	r, err := NewRenderer(Config{OutputDir: blocker, Width: 320, Height: 200, Format: "svg"}, internal.Discard)
	require.NoError(t, err)

	_, err = r.RenderValues("ALL", series.Unfiltered, []series.Record{{Time: 1, Value: 1}, {Time: 2, Value: 2}})

	require.Error(t, err)
	assert.Equal(t, errors.CodeRenderError, errors.GetCode(err))
}

func TestPaddedRange(t *testing.T) {
	lo, hi := paddedRange(5, 5)
	assert.Equal(t, 4.0, lo)
	assert.Equal(t, 6.0, hi)

	lo, hi = paddedRange(0, 100)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 101.0, hi)
}
