package clrmeta

import (
	"encoding/binary"
	"sort"
)

// Table is a loaded metadata table: a sequence of fixed-width rows.
type Table struct {
	kind     TableKind
	data     []byte
	rowCount int
	rowSize  int
	cols     []Column
}

func (t *Table) Kind() TableKind   { return t.kind }
func (t *Table) RowCount() int     { return t.rowCount }
func (t *Table) RowSize() int      { return t.rowSize }
func (t *Table) Columns() []Column { return t.cols }

// ColumnIndex looks up a column by name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.cols {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// GetValue reads the raw value of a column.
func (t *Table) GetValue(row, col int) (uint32, error) {
	if row < 0 || row >= t.rowCount {
		return 0, rangeErrf(t.kind.String()+" row", int64(row), int64(t.rowCount))
	}
	if col < 0 || col >= len(t.cols) {
		return 0, rangeErrf(t.kind.String()+" column", int64(col), int64(len(t.cols)))
	}
	return t.value(row, col), nil
}

// value reads a column without range checks; callers guarantee both indexes.
func (t *Table) value(row, col int) uint32 {
	c := &t.cols[col]
	off := row*t.rowSize + c.Offset
	if c.Width == 2 {
		return uint32(binary.LittleEndian.Uint16(t.data[off:]))
	}
	return binary.LittleEndian.Uint32(t.data[off:])
}

// LowerBound returns the first row in [min, max) whose column value is at
// least value, or max. The column must be sorted ascending within the range.
func (t *Table) LowerBound(col int, value uint32, min, max int) int {
	return min + sort.Search(max-min, func(i int) bool {
		return t.value(min+i, col) >= value
	})
}

// UpperBound returns the first row in [min, max) whose column value exceeds
// value, or max. The column must be sorted ascending within the range.
func (t *Table) UpperBound(col int, value uint32, min, max int) int {
	return min + sort.Search(max-min, func(i int) bool {
		return t.value(min+i, col) > value
	})
}

// EqualRange returns the half-open range of rows whose column equals value.
// The column must be sorted ascending.
func (t *Table) EqualRange(col int, value uint32) (first, last int) {
	first = t.LowerBound(col, value, 0, t.rowCount)
	last = t.UpperBound(col, value, first, t.rowCount)
	return first, last
}

// GetList resolves a list column: the value is a 1-based start row in
// target, and the list runs until the start of the next row's list or the
// end of target.
func (t *Table) GetList(target *Table, row, col int) (start, end int, err error) {
	v, err := t.GetValue(row, col)
	if err != nil {
		return 0, 0, err
	}
	e := uint32(target.rowCount + 1)
	if row+1 < t.rowCount {
		e = t.value(row+1, col)
	}
	if v == 0 || int64(v) > int64(target.rowCount)+1 {
		return 0, 0, rangeErrf(target.kind.String()+" list start", int64(v)-1, int64(target.rowCount))
	}
	if e < v || int64(e) > int64(target.rowCount)+1 {
		return 0, 0, rangeErrf(target.kind.String()+" list end", int64(e)-1, int64(target.rowCount))
	}
	return int(v) - 1, int(e) - 1, nil
}

// GetTargetRow resolves a simple 1-based foreign key into target. Returns
// ErrNoTarget for a null key.
func (t *Table) GetTargetRow(target *Table, row, col int) (int, error) {
	v, err := t.GetValue(row, col)
	if err != nil {
		return -1, err
	}
	if v == 0 {
		return -1, ErrNoTarget
	}
	if int64(v) > int64(target.rowCount) {
		return -1, rangeErrf(target.kind.String()+" row", int64(v)-1, int64(target.rowCount))
	}
	return int(v) - 1, nil
}

// GetParentRow is the inverse of GetList: t is the owner table, col its list
// column, and child a row of the listed table. Returns the owner row whose
// list contains child.
func (t *Table) GetParentRow(child, col int) (int, error) {
	if col < 0 || col >= len(t.cols) {
		return -1, rangeErrf(t.kind.String()+" column", int64(col), int64(len(t.cols)))
	}
	owner := t.UpperBound(col, uint32(child+1), 0, t.rowCount) - 1
	if owner < 0 {
		return -1, tableErrf(t.kind, child, t.cols[col].Name, ErrNotFound, "no owner")
	}
	return owner, nil
}
