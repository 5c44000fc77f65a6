// Package mdtest synthesizes metadata images for tests.
package mdtest

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/andreyvit/clrmeta"
)

const metadataSignature = 0x424A5342

// Builder assembles a metadata root with a compressed table stream and the
// four heaps. Values passed to Add are raw column values: heap offsets,
// 1-based row indexes and encoded coded indexes.
type Builder struct {
	HeapSizes byte
	Sorted    uint64

	strings   []byte
	stringIdx map[string]uint32
	blobs     []byte
	blobIdx   map[string]uint32
	guids     []byte
	us        []byte
	rows      [][][]uint32
}

func NewBuilder() *Builder {
	return &Builder{
		strings:   []byte{0},
		stringIdx: map[string]uint32{"": 0},
		blobs:     []byte{0},
		blobIdx:   map[string]uint32{"": 0},
		us:        []byte{0},
		rows:      make([][][]uint32, len(clrmeta.TableKinds())),
	}
}

// Str interns s in the string heap.
func (b *Builder) Str(s string) uint32 {
	if off, ok := b.stringIdx[s]; ok {
		return off
	}
	off := uint32(len(b.strings))
	b.strings = append(append(b.strings, s...), 0)
	b.stringIdx[s] = off
	return off
}

// Blob interns data in the blob heap.
func (b *Builder) Blob(data ...byte) uint32 {
	if off, ok := b.blobIdx[string(data)]; ok {
		return off
	}
	off := uint32(len(b.blobs))
	b.blobs = clrmeta.AppendBlobLength(b.blobs, len(data))
	b.blobs = append(b.blobs, data...)
	b.blobIdx[string(data)] = off
	return off
}

// GUID appends g to the GUID heap and returns its 1-based index.
func (b *Builder) GUID(g clrmeta.GUID) uint32 {
	b.guids = append(b.guids, g[:]...)
	return uint32(len(b.guids) / 16)
}

// UserString appends a user string literal.
func (b *Builder) UserString(s string) uint32 {
	off := uint32(len(b.us))
	var data []byte
	for _, r := range s {
		data = binary.LittleEndian.AppendUint16(data, uint16(r))
	}
	data = append(data, 0)
	b.us = clrmeta.AppendBlobLength(b.us, len(data))
	b.us = append(b.us, data...)
	return off
}

// Add appends a row and returns its zero-based index.
func (b *Builder) Add(kind clrmeta.TableKind, values ...uint32) int {
	cols, _ := clrmeta.Layout(kind, nil, 0)
	if len(values) != len(cols) {
		panic(fmt.Sprintf("%v: %d values, wanted %d", kind, len(values), len(cols)))
	}
	b.rows[kind] = append(b.rows[kind], values)
	return len(b.rows[kind]) - 1
}

func pad4(buf []byte) []byte {
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// TableStream encodes the #~ stream.
func (b *Builder) TableStream() []byte {
	rowCounts := make([]uint32, len(b.rows))
	var valid uint64
	for k, rows := range b.rows {
		rowCounts[k] = uint32(len(rows))
		if len(rows) > 0 {
			valid |= 1 << k
		}
	}

	buf := binary.LittleEndian.AppendUint32(nil, 0)
	buf = append(buf, 2, 0, b.HeapSizes, 1)
	buf = binary.LittleEndian.AppendUint64(buf, valid)
	buf = binary.LittleEndian.AppendUint64(buf, b.Sorted)
	for _, n := range rowCounts {
		if n > 0 {
			buf = binary.LittleEndian.AppendUint32(buf, n)
		}
	}
	if b.HeapSizes&clrmeta.HeapExtraData != 0 {
		buf = binary.LittleEndian.AppendUint32(buf, 0)
	}
	for _, k := range clrmeta.TableKinds() {
		cols, _ := clrmeta.Layout(k, rowCounts, b.HeapSizes)
		for _, row := range b.rows[k] {
			buf = AppendRow(buf, k, cols, row)
		}
	}
	return pad4(buf)
}

// AppendRow encodes one row using the widths of cols.
func AppendRow(buf []byte, kind clrmeta.TableKind, cols []clrmeta.Column, row []uint32) []byte {
	for i, c := range cols {
		if c.Width == 2 {
			if row[i] > 0xFFFF {
				panic(fmt.Sprintf("%v.%s: value 0x%x does not fit 2 bytes", kind, c.Name, row[i]))
			}
			buf = binary.LittleEndian.AppendUint16(buf, uint16(row[i]))
		} else {
			buf = binary.LittleEndian.AppendUint32(buf, row[i])
		}
	}
	return buf
}

// Bytes returns the complete metadata root.
func (b *Builder) Bytes() []byte {
	streams := []struct {
		name string
		data []byte
	}{
		{"#~", b.TableStream()},
		{"#Strings", pad4(append([]byte(nil), b.strings...))},
		{"#US", pad4(append([]byte(nil), b.us...))},
		{"#GUID", append([]byte(nil), b.guids...)},
		{"#Blob", pad4(append([]byte(nil), b.blobs...))},
	}

	version := pad4([]byte("v4.0.30319\x00"))
	hdrSize := 16 + len(version) + 4
	for _, s := range streams {
		hdrSize += 8 + len(pad4(append([]byte(s.name), 0)))
	}

	buf := binary.LittleEndian.AppendUint32(nil, metadataSignature)
	buf = binary.LittleEndian.AppendUint16(buf, 1)
	buf = binary.LittleEndian.AppendUint16(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(version)))
	buf = append(buf, version...)
	buf = binary.LittleEndian.AppendUint16(buf, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(streams)))
	off := hdrSize
	for _, s := range streams {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(off))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.data)))
		buf = append(buf, pad4(append([]byte(s.name), 0))...)
		off += len(s.data)
	}
	if len(buf) != hdrSize {
		panic(fmt.Sprintf("header size %d, computed %d", len(buf), hdrSize))
	}
	for _, s := range streams {
		buf = append(buf, s.data...)
	}
	return buf
}

// Open builds the image and opens it, failing t on error.
func (b *Builder) Open(t testing.TB, opt clrmeta.Options) *clrmeta.Database {
	t.Helper()
	db, err := clrmeta.Open(b.Bytes(), opt)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return db
}
