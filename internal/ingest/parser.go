package ingest

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"rtbstats/domain/core"
	"rtbstats/domain/series"
	"rtbstats/internal"
	"rtbstats/internal/errors"
)

// maxLineBytes bounds a single input line
const maxLineBytes = 1 << 20

// Parser turns request log lines into records
type Parser struct {
	tag    string
	logger *internal.Logger
}

// Stats counts what a parse saw
type Stats struct {
	Lines    int
	Accepted int
	Skipped  int
	Duration time.Duration
	// Hash fingerprints the bytes read
	Hash core.Hash
}

// NewParser creates a parser accepting lines whose first token is tag
func NewParser(tag string, logger *internal.Logger) *Parser {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Parser{tag: tag, logger: logger.With("ingest")}
}

// ParseLine classifies and tokenizes one line. ok is false for lines of other
// kinds, which are not errors. A qualifying line that cannot be read returns
// an INVALID_INPUT error.
//
// Format: <tag> <timestamp:int> <value:float> <key>=<group> [ignored...]
func (p *Parser) ParseLine(line string) (rec series.Record, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != p.tag {
		return rec, false, nil
	}
	if len(fields) < 4 {
		return rec, true, errors.InvalidInput(fmt.Sprintf("expected 4 tokens, got %d", len(fields)))
	}

	ts, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return rec, true, errors.InvalidInput(fmt.Sprintf("timestamp %q is not an integer", fields[1]))
	}
	value, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return rec, true, errors.InvalidInput(fmt.Sprintf("value %q is not a finite number", fields[2]))
	}
	_, group, found := strings.Cut(fields[3], "=")
	if !found {
		return rec, true, errors.InvalidInput(fmt.Sprintf("group token %q is not key=value", fields[3]))
	}
	if group == "" {
		return rec, true, errors.InvalidInput(fmt.Sprintf("group token %q has an empty value", fields[3]))
	}

	return series.Record{Time: ts, Value: value, Group: group}, true, nil
}

// Parse reads every line of r into dst. The first malformed qualifying line
// aborts the parse; there is no partial success.
func (p *Parser) Parse(r io.Reader, dst *series.Store) (Stats, error) {
	start := time.Now()
	var stats Stats

	hasher := core.NewHasher(r)
	scanner := bufio.NewScanner(hasher)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		stats.Lines++
		rec, ok, err := p.ParseLine(scanner.Text())
		if err != nil {
			return stats, errors.Wrapf(err, "line %d", stats.Lines)
		}
		if !ok {
			stats.Skipped++
			p.logger.Trace("skipping line %d", stats.Lines)
			continue
		}
		dst.AddRecord(rec)
		stats.Accepted++
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "reading line %d", stats.Lines+1))
	}

	stats.Duration = time.Since(start)
	stats.Hash = hasher.Sum()
	return stats, nil
}

// ParseFile loads path into a new aggregate store, sorted by time
func (p *Parser) ParseFile(path string) (*series.Store, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "unable to open %s", path))
	}
	defer f.Close()

	all := series.NewStore(series.AggregateName)
	stats, err := p.Parse(f, all)
	if err != nil {
		return nil, stats, errors.Wrapf(err, "unable to parse %s", path)
	}
	all.SortByTime()

	p.logger.Info("Parsed %s in %.2fms: %d lines, %d records, %d skipped",
		path, float64(stats.Duration.Nanoseconds())/1e6, stats.Lines, stats.Accepted, stats.Skipped)
	return all, stats, nil
}
