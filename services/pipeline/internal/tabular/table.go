package tabular

// Table is a list of rows aligned to an ordered column list.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// FromRows lays rows out against the union of their keys in first-seen
// order. Cells for keys a row does not have are null.
func FromRows(rows []Row) Table {
	seen := make(map[string]int)
	var columns []string
	for _, row := range rows {
		for _, k := range row.keys {
			if _, ok := seen[k]; !ok {
				seen[k] = len(columns)
				columns = append(columns, k)
			}
		}
	}

	t := Table{Columns: columns, Rows: make([][]Value, 0, len(rows))}
	for _, row := range rows {
		cells := make([]Value, len(columns))
		for _, k := range row.keys {
			cells[seen[k]] = row.values[k]
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func (t Table) Len() int { return len(t.Rows) }

// Index returns the position of column name, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t Table) HasColumn(name string) bool {
	return t.Index(name) >= 0
}

// Clone returns a deep copy so callers can rewrite cells freely.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Value, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]Value(nil), r...)
	}
	return out
}

func (t Table) Equal(o Table) bool {
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if !t.Rows[i][j].Equal(o.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}
