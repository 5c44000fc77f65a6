package clrmeta

import (
	"fmt"
	"iter"
)

// Row is a position in a table. It does not own anything and stays valid as
// long as its Database is open. Rows compare equal iff they refer to the same
// table kind and index of the same Database.
type Row struct {
	db    *Database
	kind  TableKind
	index int
}

func (r Row) Database() *Database { return r.db }
func (r Row) Kind() TableKind     { return r.kind }
func (r Row) Index() int          { return r.index }

// IsZero reports whether r is the zero Row, which refers to nothing.
func (r Row) IsZero() bool { return r.db == nil }

// Token returns the metadata token of the row: table number in the high byte,
// 1-based row index in the low three.
func (r Row) Token() uint32 {
	return uint32(r.kind)<<24 | uint32(r.index+1)
}

func (r Row) String() string {
	return fmt.Sprintf("%v[%d]", r.kind, r.index)
}

func (r Row) table() *Table {
	return &r.db.tables[r.kind]
}

// Value returns the raw value of a column.
func (r Row) Value(col int) (uint32, error) {
	return r.table().GetValue(r.index, col)
}

func (r Row) u32(col int) uint32 {
	return r.table().value(r.index, col)
}

func (r Row) str(col int) (string, error) {
	s, err := r.db.heaps.GetString(r.u32(col))
	if err != nil {
		return "", r.colErr(col, err)
	}
	return s, nil
}

func (r Row) blob(col int) ([]byte, error) {
	b, err := r.db.heaps.GetBlob(r.u32(col))
	if err != nil {
		return nil, r.colErr(col, err)
	}
	return b, nil
}

func (r Row) guid(col int) (GUID, error) {
	g, _, err := r.db.heaps.GetGUID(r.u32(col))
	if err != nil {
		return GUID{}, r.colErr(col, err)
	}
	return g, nil
}

func (r Row) coded(col int) CodedIndex {
	return CodedIndex{r.table().cols[col].Scheme, r.u32(col)}
}

func (r Row) colErr(col int, err error) error {
	return &TableError{Table: r.kind, Row: r.index, Column: r.table().cols[col].Name, Err: err}
}

// target resolves a simple foreign key column.
func (r Row) target(col int) (Row, error) {
	tk := r.table().cols[col].Target
	i, err := r.table().GetTargetRow(&r.db.tables[tk], r.index, col)
	if err != nil {
		return Row{}, r.colErr(col, err)
	}
	return Row{r.db, tk, i}, nil
}

// list resolves a list column into the range of rows it owns.
func list[V View](r Row, col int) (Range[V], error) {
	tk := r.table().cols[col].Target
	start, end, err := r.table().GetList(&r.db.tables[tk], r.index, col)
	if err != nil {
		return Range[V]{}, r.colErr(col, err)
	}
	return newRange[V](r.db, tk, start, end), nil
}

// parent finds the owner row in ownerKind whose list column col contains r.
func parent[V View](r Row, ownerKind TableKind, col int) (V, error) {
	i, err := r.db.tables[ownerKind].GetParentRow(r.index, col)
	if err != nil {
		var zero V
		return zero, err
	}
	return V(struct{ Row }{Row{r.db, ownerKind, i}}), nil
}

// children returns the rows of kind whose sorted column col equals value.
func children[V View](db *Database, kind TableKind, col int, value uint32) Range[V] {
	first, last := db.tables[kind].EqualRange(col, value)
	return newRange[V](db, kind, first, last)
}

// codedChildren returns the rows of kind whose sorted coded index column col
// refers to r.
func codedChildren[V View](r Row, kind TableKind, col int) Range[V] {
	scheme := r.db.tables[kind].cols[col].Scheme
	return children[V](r.db, kind, col, scheme.EncodeRow(r.kind, r.index))
}

// View is the constraint satisfied by every typed row view.
type View interface {
	~struct{ Row }
}

// Range is a half-open range of consecutive rows of one table, viewed as V.
type Range[V View] struct {
	db         *Database
	kind       TableKind
	start, end int
}

func newRange[V View](db *Database, kind TableKind, start, end int) Range[V] {
	return Range[V]{db, kind, start, end}
}

func (rg Range[V]) Kind() TableKind { return rg.kind }
func (rg Range[V]) Start() int      { return rg.start }
func (rg Range[V]) End() int        { return rg.end }
func (rg Range[V]) Len() int        { return rg.end - rg.start }
func (rg Range[V]) Empty() bool     { return rg.end <= rg.start }

// At returns the i-th row of the range. Panics if i is out of range.
func (rg Range[V]) At(i int) V {
	if i < 0 || i >= rg.Len() {
		panic(fmt.Sprintf("%v range index %d out of [0,%d)", rg.kind, i, rg.Len()))
	}
	return V(struct{ Row }{Row{rg.db, rg.kind, rg.start + i}})
}

// Contains reports whether the range includes row.
func (rg Range[V]) Contains(row Row) bool {
	return row.db == rg.db && row.kind == rg.kind && row.index >= rg.start && row.index < rg.end
}

// All iterates over the rows of the range.
func (rg Range[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for i := rg.start; i < rg.end; i++ {
			if !yield(V(struct{ Row }{Row{rg.db, rg.kind, i}})) {
				return
			}
		}
	}
}

// Slice collects the range into a slice.
func (rg Range[V]) Slice() []V {
	out := make([]V, 0, rg.Len())
	for v := range rg.All() {
		out = append(out, v)
	}
	return out
}

// Record is a row viewed without a table-specific type.
type Record struct{ Row }

// RowView is implemented by every typed row view.
type RowView interface {
	Kind() TableKind
	Index() int
	Token() uint32
	Database() *Database
}
