package data

import (
	"strconv"
	"strings"
)

// Role tags a table column with its meaning in the dataset.
type Role uint8

const (
	RoleSkip Role = iota
	RoleX
	RoleY
	RoleXErr
	RoleYErr
	RoleLabel
)

func (r Role) String() string {
	switch r {
	case RoleSkip:
		return "skip"
	case RoleX:
		return "x"
	case RoleY:
		return "y"
	case RoleXErr:
		return "xerr"
	case RoleYErr:
		return "yerr"
	case RoleLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Column is one raw table column: a role tag plus unparsed cell text.
type Column struct {
	Role  Role
	Cells []string
}

// Table is the raw tabular selection handed over by the display layer.
// Columns may have ragged lengths; missing cells count as unparseable.
type Table struct {
	Columns []Column
}

// column returns the first column with the given role, or nil. Later
// duplicates of a role are ignored.
func (t *Table) column(role Role) *Column {
	for i := range t.Columns {
		if t.Columns[i].Role == role {
			return &t.Columns[i]
		}
	}

	return nil
}

func (t *Table) rows() int {
	n := 0
	for _, col := range t.Columns {
		if len(col.Cells) > n {
			n = len(col.Cells)
		}
	}

	return n
}

// parseCell parses one table cell as a float. Comma decimal separators are
// accepted since pasted spreadsheet data often carries them.
func parseCell(col *Column, row int) (float64, bool) {
	if col == nil || row >= len(col.Cells) {
		return 0, false
	}
	text := strings.TrimSpace(col.Cells[row])
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		v, err = strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
	}

	return v, true
}
