// Package features turns a cleaned match table into a numeric feature matrix.
package features

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/tabular"
)

// DefaultCategoricalColumns are one-hot encoded when present.
var DefaultCategoricalColumns = []string{
	"status",
	"stage",
	"group",
	"score.winner",
	"score.duration",
	"homeTeam.name",
	"awayTeam.name",
}

// Expansion records which columns replaced one source column.
type Expansion struct {
	Source  string   `json:"source"`
	Encoded []string `json:"encoded"`
}

// Mapping lists every expansion performed by an encoder, in order.
type Mapping struct {
	Expansions []Expansion `json:"expansions"`
}

// EncodedColumns returns the generated columns for source, if any.
func (m Mapping) EncodedColumns(source string) ([]string, bool) {
	for _, e := range m.Expansions {
		if e.Source == source {
			return e.Encoded, true
		}
	}
	return nil, false
}

// WriteFile stores the mapping as indented JSON.
func (m Mapping) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode feature mapping: %w", err)
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// Encoder maps a cleaned table to a feature table.
type Encoder func(tabular.Table) (tabular.Table, Mapping)

// OneHotEncoder binds a fixed column list.
func OneHotEncoder(columns []string) Encoder {
	return func(t tabular.Table) (tabular.Table, Mapping) {
		return OneHot(t, columns)
	}
}

// OneHot replaces each listed column with one 0/1 integer column per
// distinct value, named "<column>_<value>" and sorted by value. Encoded
// columns follow the untouched ones, grouped in the order of columns. Null
// and empty cells set every indicator of their row to 0. Listed columns that
// the table lacks are ignored.
func OneHot(t tabular.Table, columns []string) (tabular.Table, Mapping) {
	type source struct {
		name       string
		idx        int
		categories []string
		position   map[string]int
	}

	var sources []source
	drop := make(map[int]bool)
	for _, name := range columns {
		idx := t.Index(name)
		if idx < 0 || drop[idx] {
			continue
		}
		drop[idx] = true

		distinct := make(map[string]bool)
		for _, row := range t.Rows {
			if cat, ok := category(row, idx); ok {
				distinct[cat] = true
			}
		}
		cats := make([]string, 0, len(distinct))
		for c := range distinct {
			cats = append(cats, c)
		}
		sort.Strings(cats)

		pos := make(map[string]int, len(cats))
		for i, c := range cats {
			pos[c] = i
		}
		sources = append(sources, source{name: name, idx: idx, categories: cats, position: pos})
	}

	var mapping Mapping
	if len(sources) == 0 {
		return t.Clone(), mapping
	}

	var out tabular.Table
	var kept []int
	for i, c := range t.Columns {
		if !drop[i] {
			kept = append(kept, i)
			out.Columns = append(out.Columns, c)
		}
	}
	for _, s := range sources {
		exp := Expansion{Source: s.name, Encoded: make([]string, 0, len(s.categories))}
		for _, c := range s.categories {
			exp.Encoded = append(exp.Encoded, s.name+"_"+c)
		}
		out.Columns = append(out.Columns, exp.Encoded...)
		mapping.Expansions = append(mapping.Expansions, exp)
	}

	out.Rows = make([][]tabular.Value, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]tabular.Value, 0, len(out.Columns))
		for _, i := range kept {
			if i < len(row) {
				cells = append(cells, row[i])
			} else {
				cells = append(cells, tabular.Null())
			}
		}
		for _, s := range sources {
			hit := -1
			if cat, ok := category(row, s.idx); ok {
				hit = s.position[cat]
			}
			for j := range s.categories {
				if j == hit {
					cells = append(cells, tabular.Int(1))
				} else {
					cells = append(cells, tabular.Int(0))
				}
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, mapping
}

func category(row []tabular.Value, idx int) (string, bool) {
	if idx >= len(row) || row[idx].IsNull() {
		return "", false
	}
	s := row[idx].Text()
	return s, s != ""
}
