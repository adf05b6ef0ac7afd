// Package standardize coerces the columns of a flattened match table to
// stable types. Cells that cannot be converted become null; columns that are
// missing from the table are skipped.
package standardize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/tabular"
)

// CategoryMap remaps known codes of one column. Unknown values pass through.
type CategoryMap struct {
	Column string
	Codes  map[string]string
}

// Schema names the columns to coerce and how.
type Schema struct {
	Timestamps    []string
	Integers      []string
	Categories    []CategoryMap
	Texts         []string
	TextSeparator string
}

// WinnerCodes abbreviates score.winner.
var WinnerCodes = map[string]string{
	"HOME_TEAM": "H",
	"AWAY_TEAM": "A",
	"DRAW":      "D",
}

// DefaultSchema matches the football-data.org v4 match payload.
func DefaultSchema() Schema {
	return Schema{
		Timestamps:    []string{"utcDate", "lastUpdated"},
		Integers:      []string{"matchday", "id", "homeTeam.id", "awayTeam.id"},
		Categories:    []CategoryMap{{Column: "score.winner", Codes: WinnerCodes}},
		Texts:         []string{"homeTeam.name", "awayTeam.name"},
		TextSeparator: "_",
	}
}

// Standardize applies DefaultSchema.
func Standardize(t tabular.Table) tabular.Table {
	return DefaultSchema().Apply(t)
}

// Apply returns a converted copy of t; t itself is left untouched. The
// result always has the same rows and columns as the input.
func (s Schema) Apply(t tabular.Table) tabular.Table {
	out := t.Clone()

	for _, col := range s.Timestamps {
		convertColumn(out, col, toTimestamp)
	}
	for _, col := range s.Integers {
		convertColumn(out, col, toInt)
	}
	for _, cm := range s.Categories {
		codes := cm.Codes
		convertColumn(out, cm.Column, func(v tabular.Value) tabular.Value {
			return remap(v, codes)
		})
	}
	sep := s.TextSeparator
	for _, col := range s.Texts {
		convertColumn(out, col, func(v tabular.Value) tabular.Value {
			return normalizeText(v, sep)
		})
	}
	return out
}

func convertColumn(t tabular.Table, column string, fn func(tabular.Value) tabular.Value) {
	idx := t.Index(column)
	if idx < 0 {
		return
	}
	for _, row := range t.Rows {
		if idx < len(row) {
			row[idx] = fn(row[idx])
		}
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTimestamp(v tabular.Value) tabular.Value {
	if v.Kind() == tabular.KindTime || v.IsNull() {
		return v
	}
	raw := strings.TrimSpace(v.Text())
	if raw == "" {
		return tabular.Null()
	}
	for _, layout := range timestampLayouts {
		// Layouts without an offset are read as UTC.
		if ts, err := time.Parse(layout, raw); err == nil {
			return tabular.Time(ts)
		}
	}
	return tabular.Null()
}

func toInt(v tabular.Value) tabular.Value {
	switch v.Kind() {
	case tabular.KindInt, tabular.KindNull:
		return v
	case tabular.KindBool, tabular.KindTime:
		return tabular.Null()
	}

	raw := strings.TrimSpace(v.Text())
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return tabular.Int(i)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return tabular.Null()
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return tabular.Null()
	}
	return tabular.Int(int64(f))
}

func remap(v tabular.Value, codes map[string]string) tabular.Value {
	if v.IsNull() {
		return v
	}
	if code, ok := codes[v.Text()]; ok {
		return tabular.String(code)
	}
	return v
}

func normalizeText(v tabular.Value, sep string) tabular.Value {
	if v.IsNull() {
		return v
	}
	return tabular.String(strings.Join(strings.Fields(v.Text()), sep))
}
