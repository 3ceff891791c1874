// Package plan loads experiment-plan workbooks into an in-memory table.
//
// An experiment plan is an Excel sheet with two header rows: the first
// names the column groups ("Experiment Info", "Cleaning", "Spin Coating
// Absorber", ...) with the name kept in a merged cell spanning the
// group, the second names the individual columns. Everything below is
// one row per sample.
package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is the parsed experiment plan: an ordered list of column groups
// sharing row alignment.
type Table struct {
	groups []*Group
}

// Group is one top-level column group of the plan.
type Group struct {
	Name    string
	Columns []string
	rows    [][]string
}

// Row gives access to the cells of one row of a group, keyed by column
// name. Missing and blank cells are equivalent.
type Row struct {
	group *Group
	cells []string
}

// UniqueRow is one distinct row content of a group together with the
// indices of all rows carrying that content.
type UniqueRow struct {
	Index   int
	Row     Row
	Matches []int
}

// Load reads an experiment plan from an .xlsx file. It scans the
// workbook for the first sheet whose header carries an Experiment Info
// group.
func Load(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		for _, cell := range rows[0] {
			if strings.TrimSpace(cell) == "Experiment Info" {
				return fromRows(rows)
			}
		}
	}
	return nil, fmt.Errorf("no sheet with an Experiment Info header found")
}

// fromRows builds the table from raw sheet rows: group header, column
// header, then data.
func fromRows(rows [][]string) (*Table, error) {
	groupRow := rows[0]
	columnRow := rows[1]
	if len(columnRow) < len(groupRow) {
		padded := make([]string, len(groupRow))
		copy(padded, columnRow)
		columnRow = padded
	}

	t := &Table{}
	byName := make(map[string]*Group)
	var current *Group
	for col := 0; col < len(columnRow); col++ {
		// Merged group cells surface their value only in the first
		// column; forward-fill the rest.
		if col < len(groupRow) && strings.TrimSpace(groupRow[col]) != "" {
			name := strings.TrimSpace(groupRow[col])
			if g, ok := byName[name]; ok {
				current = g
			} else {
				current = &Group{Name: name}
				byName[name] = current
				t.groups = append(t.groups, current)
			}
		}
		if current == nil {
			continue
		}
		current.Columns = append(current.Columns, strings.TrimSpace(columnRow[col]))
		for i, dataRow := range rows[2:] {
			for len(current.rows) <= i {
				current.rows = append(current.rows, nil)
			}
			cell := ""
			if col < len(dataRow) {
				cell = strings.TrimSpace(dataRow[col])
			}
			current.rows[i] = append(current.rows[i], cell)
		}
	}
	if len(t.groups) == 0 {
		return nil, fmt.Errorf("plan has no column groups")
	}
	return t, nil
}

// Groups returns the column groups in sheet order.
func (t *Table) Groups() []*Group {
	return t.groups
}

// Group returns the group with the given name.
func (t *Table) Group(name string) (*Group, bool) {
	for _, g := range t.groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// Len returns the number of data rows of the group.
func (g *Group) Len() int {
	return len(g.rows)
}

// Row returns the i-th data row of the group.
func (g *Group) Row(i int) Row {
	return Row{group: g, cells: g.rows[i]}
}

// Unique deduplicates the group's rows by full content, preserving first
// occurrence order.
func (g *Group) Unique() []UniqueRow {
	return g.UniqueBy(g.Columns)
}

// UniqueBy deduplicates the group's rows by the content of the named
// columns only.
func (g *Group) UniqueBy(cols []string) []UniqueRow {
	var unique []UniqueRow
	seen := make(map[string]int)
	for i := 0; i < len(g.rows); i++ {
		key := g.fingerprint(i, cols)
		if at, ok := seen[key]; ok {
			unique[at].Matches = append(unique[at].Matches, i)
			continue
		}
		seen[key] = len(unique)
		unique = append(unique, UniqueRow{Index: i, Row: g.Row(i), Matches: []int{i}})
	}
	return unique
}

// fingerprint builds the dedup key for a row over the named columns.
// Blank and missing cells compare equal.
func (g *Group) fingerprint(row int, cols []string) string {
	r := g.Row(row)
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = r.String(col)
	}
	return strings.Join(parts, "\x1f")
}

// String returns the trimmed cell under the named column, or the empty
// string when the column or cell is absent.
func (r Row) String(col string) string {
	for i, c := range r.group.Columns {
		if c == col && i < len(r.cells) {
			return r.cells[i]
		}
	}
	return ""
}

// Float parses the named cell as a number. Blank, absent, and
// unparsable cells all yield nil.
func (r Row) Float(col string) *float64 {
	raw := r.String(col)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

// Columns returns the column names of the row's group.
func (r Row) Columns() []string {
	return r.group.Columns
}

// Empty reports whether every cell of the row is blank.
func (r Row) Empty() bool {
	for _, c := range r.cells {
		if c != "" {
			return false
		}
	}
	return true
}

// EmptyIn reports whether every cell under the named columns is blank.
func (r Row) EmptyIn(cols []string) bool {
	for _, col := range cols {
		if r.String(col) != "" {
			return false
		}
	}
	return true
}
