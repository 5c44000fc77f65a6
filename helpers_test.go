package clrmeta

import (
	"encoding/binary"
	"fmt"
)

// makeTable builds a standalone table of kind with column widths derived
// from rowCounts and heapSizes.
func makeTable(kind TableKind, rowCounts *[numTableKinds]uint32, heapSizes byte, rows ...[]uint32) *Table {
	cols, size := layoutColumns(kind, rowCounts, heapSizes)
	var data []byte
	for _, row := range rows {
		for i, c := range cols {
			if c.Width == 2 {
				if row[i] > 0xFFFF {
					panic(fmt.Sprintf("%v.%s: value 0x%x does not fit 2 bytes", kind, c.Name, row[i]))
				}
				data = binary.LittleEndian.AppendUint16(data, uint16(row[i]))
			} else {
				data = binary.LittleEndian.AppendUint32(data, row[i])
			}
		}
	}
	return &Table{kind: kind, data: data, rowCount: len(rows), rowSize: size, cols: cols}
}

var testGUID = GUID{0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
