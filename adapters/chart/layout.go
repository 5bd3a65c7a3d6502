package chart

import (
	"fmt"
	"path/filepath"

	"github.com/gosimple/slug"

	"rtbstats/domain/series"
)

// Output directories under the chart root
const (
	ValueGraphsDir = "value_graphs"
	UnfilteredDir  = "unfiltered"
	RateGraphsDir  = "roc_graphs"
)

// Layout maps store names and passes to chart paths:
//
//	<root>/value_graphs/unfiltered/<stem>_values.<ext>
//	<root>/value_graphs/filtered_pass_<n>/<stem>_values.<ext>
//	<root>/roc_graphs/<stem>_rocs.<ext>
//
// Stems are slugs of the store name. Two names that slugify alike get
// numbered stems, first come first served, so no chart overwrites another.
type Layout struct {
	root  string
	ext   string
	stems map[string]string
	taken map[string]bool
}

// NewLayout creates a layout rooted at root writing files with extension ext
func NewLayout(root, ext string) *Layout {
	return &Layout{
		root:  root,
		ext:   ext,
		stems: make(map[string]string),
		taken: make(map[string]bool),
	}
}

// Stem returns the file stem assigned to name
func (l *Layout) Stem(name string) string {
	if stem, ok := l.stems[name]; ok {
		return stem
	}

	base := slug.Make(name)
	if base == "" {
		base = "group"
	}
	stem := base
	for n := 2; l.taken[stem]; n++ {
		stem = fmt.Sprintf("%s-%d", base, n)
	}

	l.stems[name] = stem
	l.taken[stem] = true
	return stem
}

// ValuesDir returns the directory holding value charts for pass
func (l *Layout) ValuesDir(pass series.Pass) string {
	if !pass.Filtered() {
		return filepath.Join(l.root, ValueGraphsDir, UnfilteredDir)
	}
	return filepath.Join(l.root, ValueGraphsDir, fmt.Sprintf("filtered_pass_%d", int(pass)))
}

// ValuesPath returns the value chart path of name in pass
func (l *Layout) ValuesPath(name string, pass series.Pass) string {
	return filepath.Join(l.ValuesDir(pass), l.Stem(name)+"_values."+l.ext)
}

// RatesDir returns the directory holding rate-of-change charts
func (l *Layout) RatesDir() string {
	return filepath.Join(l.root, RateGraphsDir)
}

// RatesPath returns the rate-of-change chart path of name
func (l *Layout) RatesPath(name string) string {
	return filepath.Join(l.RatesDir(), l.Stem(name)+"_rocs."+l.ext)
}
