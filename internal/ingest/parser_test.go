package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtbstats/domain/core"
	"rtbstats/domain/series"
	"rtbstats/internal"
	"rtbstats/internal/errors"
)

func newTestParser() *Parser {
	return NewParser("rtb.requests", internal.Discard)
}

func TestParseLine(t *testing.T) {
	p := newTestParser()

	rec, ok, err := p.ParseLine("rtb.requests 1486102800 43.5 dc=ams1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, series.Record{Time: 1486102800, Value: 43.5, Group: "ams1"}, rec)

	// extra tokens and surrounding whitespace are fine
	rec, ok, err = p.ParseLine("  rtb.requests\t7 1 dc=lax   host=web3  ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, series.Record{Time: 7, Value: 1, Group: "lax"}, rec)

	// only the first = splits
	rec, _, err = p.ParseLine("rtb.requests 7 1 dc=a=b")
	require.NoError(t, err)
	assert.Equal(t, "a=b", rec.Group)
}

func TestParseLine_OtherKinds(t *testing.T) {
	p := newTestParser()

	for _, line := range []string{
		"",
		"   ",
		"rtb.impressions 1 2 dc=a",
		"rtb.requestsX 1 2 dc=a",
		"# rtb.requests 1 2 dc=a",
	} {
		_, ok, err := p.ParseLine(line)
		assert.NoError(t, err, line)
		assert.False(t, ok, line)
	}
}

func TestParseLine_Malformed(t *testing.T) {
	p := newTestParser()

	for _, line := range []string{
		"rtb.requests",
		"rtb.requests 1 2",
		"rtb.requests one 2 dc=a",
		"rtb.requests 1.5 2 dc=a",
		"rtb.requests 1 two dc=a",
		"rtb.requests 1 NaN dc=a",
		"rtb.requests 1 +Inf dc=a",
		"rtb.requests 1 2 ams1",
		"rtb.requests 1 2 dc=",
	} {
		_, ok, err := p.ParseLine(line)
		assert.True(t, ok, line)
		require.Error(t, err, line)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), line)
	}
}

func TestParse_SkipsAndCounts(t *testing.T) {
	input := strings.Join([]string{
		"rtb.requests 20 4.0 dc=A",
		"rtb.bids 15 9.0 dc=A",
		"",
		"rtb.requests 10 5.0 dc=A",
		"rtb.requests 10 3.0 dc=B",
	}, "\n")

	store := series.NewStore(series.AggregateName)
	stats, err := newTestParser().Parse(strings.NewReader(input), store)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Lines)
	assert.Equal(t, 3, stats.Accepted)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, core.NewHash([]byte(input)), stats.Hash)
	assert.Equal(t, []series.Record{
		{Time: 20, Value: 4, Group: "A"},
		{Time: 10, Value: 5, Group: "A"},
		{Time: 10, Value: 3, Group: "B"},
	}, store.Records())
}

func TestParse_AbortsOnMalformedLine(t *testing.T) {
	input := "rtb.requests 1 1 dc=A\nrtb.requests 2 oops dc=A\nrtb.requests 3 1 dc=A\n"

	store := series.NewStore(series.AggregateName)
	_, err := newTestParser().Parse(strings.NewReader(input), store)

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), `"oops"`)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("rtb.requests 20 4.0 k=A\nrtb.requests 10 5.0 k=A\nrtb.requests 10 3.0 k=A\n"), 0o644))

	all, stats, err := newTestParser().ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, series.AggregateName, all.Name())
	assert.Equal(t, 3, stats.Accepted)
	assert.True(t, all.Sorted())
	recs := all.Records()
	assert.Equal(t, int64(10), recs[0].Time)
	assert.Equal(t, 5.0, recs[0].Value)
	assert.Equal(t, int64(20), recs[2].Time)
}

func TestParseFile_Missing(t *testing.T) {
	_, _, err := newTestParser().ParseFile(filepath.Join(t.TempDir(), "absent.txt"))

	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
