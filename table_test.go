package clrmeta

import (
	"errors"
	"testing"
)

func typeDefRow(fieldList, methodList uint32) []uint32 {
	return []uint32{0, 0, 0, 0, fieldList, methodList}
}

func TestTable_GetValue(t *testing.T) {
	var rc [numTableKinds]uint32
	tab := makeTable(TableParam, &rc, 0, []uint32{1, 2, 3}, []uint32{4, 5, 6})

	v, err := tab.GetValue(1, 2)
	if err != nil || v != 6 {
		t.Fatalf("GetValue(1, 2) = %d, %v, wanted 6", v, err)
	}

	var re *RangeError
	for _, p := range [][2]int{{2, 0}, {-1, 0}, {0, 3}, {0, -1}} {
		if _, err := tab.GetValue(p[0], p[1]); !errors.As(err, &re) {
			t.Errorf("GetValue(%d, %d) err = %v, wanted *RangeError", p[0], p[1], err)
		}
	}
}

func TestTable_ColumnIndex(t *testing.T) {
	var rc [numTableKinds]uint32
	tab := makeTable(TableTypeDef, &rc, 0)
	i, ok := tab.ColumnIndex("FieldList")
	if !ok || i != typeDefFieldList {
		t.Fatalf("ColumnIndex(FieldList) = %d, %v, wanted %d", i, ok, typeDefFieldList)
	}
	if _, ok := tab.ColumnIndex("Bogus"); ok {
		t.Fatalf("ColumnIndex(Bogus) found a column")
	}
	if tab.RowSize() != 14 {
		t.Fatalf("RowSize = %d, wanted 14", tab.RowSize())
	}
}

func TestTable_EqualRange(t *testing.T) {
	var rc [numTableKinds]uint32
	tab := makeTable(TableConstant, &rc, 0,
		[]uint32{8, 4, 0},
		[]uint32{8, 8, 0},
		[]uint32{8, 8, 0},
		[]uint32{8, 8, 0},
		[]uint32{8, 12, 0},
	)
	tests := []struct {
		value       uint32
		first, last int
	}{
		{8, 1, 4},
		{4, 0, 1},
		{12, 4, 5},
		{10, 4, 4},
		{0, 0, 0},
		{100, 5, 5},
	}
	for _, tt := range tests {
		first, last := tab.EqualRange(constantParent, tt.value)
		if first != tt.first || last != tt.last {
			t.Errorf("EqualRange(%d) = [%d, %d), wanted [%d, %d)", tt.value, first, last, tt.first, tt.last)
		}
	}
}

func TestTable_GetList(t *testing.T) {
	var rc [numTableKinds]uint32
	rc[TableField] = 5
	fieldRows := make([][]uint32, 5)
	for i := range fieldRows {
		fieldRows[i] = []uint32{0, 0, 0}
	}
	fields := makeTable(TableField, &rc, 0, fieldRows...)
	types := makeTable(TableTypeDef, &rc, 0, typeDefRow(1, 1), typeDefRow(1, 1), typeDefRow(3, 1), typeDefRow(6, 1))

	want := [][2]int{{0, 0}, {0, 2}, {2, 5}, {5, 5}}
	for row, w := range want {
		start, end, err := types.GetList(fields, row, typeDefFieldList)
		if err != nil {
			t.Fatalf("GetList(%d) failed: %v", row, err)
		}
		if start != w[0] || end != w[1] {
			t.Errorf("GetList(%d) = [%d, %d), wanted [%d, %d)", row, start, end, w[0], w[1])
		}
	}

	owners := []int{1, 1, 2, 2, 2}
	for child, want := range owners {
		owner, err := types.GetParentRow(child, typeDefFieldList)
		if err != nil || owner != want {
			t.Errorf("GetParentRow(%d) = %d, %v, wanted %d", child, owner, err, want)
		}
	}
}

func TestTable_GetList_Invalid(t *testing.T) {
	var rc [numTableKinds]uint32
	rc[TableField] = 2
	fields := makeTable(TableField, &rc, 0, []uint32{0, 0, 0}, []uint32{0, 0, 0})

	tests := []struct {
		name string
		rows [][]uint32
		row  int
	}{
		{"null start", [][]uint32{typeDefRow(0, 1)}, 0},
		{"start past end", [][]uint32{typeDefRow(4, 1)}, 0},
		{"decreasing", [][]uint32{typeDefRow(2, 1), typeDefRow(1, 1)}, 0},
		{"row out of range", [][]uint32{typeDefRow(1, 1)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types := makeTable(TableTypeDef, &rc, 0, tt.rows...)
			_, _, err := types.GetList(fields, tt.row, typeDefFieldList)
			var re *RangeError
			if !errors.As(err, &re) {
				t.Fatalf("GetList err = %v, wanted *RangeError", err)
			}
		})
	}
}

func TestTable_GetParentRow_NoOwner(t *testing.T) {
	var rc [numTableKinds]uint32
	rc[TableField] = 4
	types := makeTable(TableTypeDef, &rc, 0, typeDefRow(3, 1))
	_, err := types.GetParentRow(0, typeDefFieldList)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetParentRow err = %v, wanted ErrNotFound", err)
	}
}

func TestTable_GetTargetRow(t *testing.T) {
	var rc [numTableKinds]uint32
	rc[TableTypeDef] = 2
	types := makeTable(TableTypeDef, &rc, 0, typeDefRow(1, 1), typeDefRow(1, 1))
	nested := makeTable(TableNestedClass, &rc, 0, []uint32{2, 1}, []uint32{0, 3})

	if row, err := nested.GetTargetRow(types, 0, nestedClassEnclosingClass); err != nil || row != 0 {
		t.Fatalf("GetTargetRow(0) = %d, %v, wanted 0", row, err)
	}
	if _, err := nested.GetTargetRow(types, 1, nestedClassNestedClass); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("GetTargetRow(null) err = %v, wanted ErrNoTarget", err)
	}
	var re *RangeError
	if _, err := nested.GetTargetRow(types, 1, nestedClassEnclosingClass); !errors.As(err, &re) {
		t.Fatalf("GetTargetRow(3) err = %v, wanted *RangeError", err)
	}
}

func TestLayoutColumns_Widths(t *testing.T) {
	var rc [numTableKinds]uint32
	cols, size := layoutColumns(TableTypeDef, &rc, 0)
	if size != 14 {
		t.Fatalf("narrow TypeDef row size = %d, wanted 14", size)
	}
	if cols[typeDefExtends].Offset != 8 {
		t.Fatalf("Extends offset = %d, wanted 8", cols[typeDefExtends].Offset)
	}

	rc[TableField] = 0x10000
	rc[TableTypeRef] = 0x3FFF
	cols, size = layoutColumns(TableTypeDef, &rc, HeapStringsWide)
	want := []int{4, 4, 4, 2, 4, 2}
	for i, c := range cols {
		if c.Width != want[i] {
			t.Errorf("%s width = %d, wanted %d", c.Name, c.Width, want[i])
		}
	}
	if size != 20 {
		t.Fatalf("TypeDef row size = %d, wanted 20", size)
	}

	rc[TableTypeRef] = 0x4000
	cols, _ = layoutColumns(TableTypeDef, &rc, 0)
	if cols[typeDefExtends].Width != 4 {
		t.Fatalf("Extends width with 0x4000 TypeRefs = %d, wanted 4", cols[typeDefExtends].Width)
	}

	rc = [numTableKinds]uint32{}
	rc[TableParam] = 0x7FF
	cols, _ = layoutColumns(TableCustomAttribute, &rc, HeapBlobWide)
	if cols[0].Width != 2 || cols[2].Width != 4 {
		t.Fatalf("CustomAttribute widths = %d, %d, wanted 2, 4", cols[0].Width, cols[2].Width)
	}
	rc[TableParam] = 0x800
	cols, _ = layoutColumns(TableCustomAttribute, &rc, 0)
	if cols[0].Width != 4 || cols[2].Width != 2 {
		t.Fatalf("CustomAttribute widths = %d, %d, wanted 4, 2", cols[0].Width, cols[2].Width)
	}
}

func TestTableKind(t *testing.T) {
	if TableTypeDef.String() != "TypeDef" {
		t.Fatalf("TableTypeDef = %q", TableTypeDef.String())
	}
	if k, ok := ParseTableKind("GenericParamConstraint"); !ok || k != TableGenericParamConstraint {
		t.Fatalf("ParseTableKind = %v, %v", k, ok)
	}
	if _, ok := ParseTableKind("Nope"); ok {
		t.Fatalf("ParseTableKind(Nope) succeeded")
	}
	if TableKind(0x2D).Valid() {
		t.Fatalf("0x2D is valid")
	}
	if n := len(TableKinds()); n != 0x2D {
		t.Fatalf("len(TableKinds) = %d, wanted 45", n)
	}
}
