package clrmeta

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/google/uuid"
)

// GUID is a GUID heap entry in its stored byte order: the first three groups
// little-endian, the last eight bytes as-is.
type GUID [16]byte

// String formats g in the canonical 8-4-4-4-12 form.
func (g GUID) String() string {
	return g.UUID().String()
}

// UUID converts g to a big-endian RFC 4122 value.
func (g GUID) UUID() uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(g[0:4]))
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(g[4:6]))
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(g[6:8]))
	copy(u[8:], g[8:])
	return u
}

// GUIDFromUUID is the inverse of GUID.UUID.
func GUIDFromUUID(u uuid.UUID) GUID {
	var g GUID
	binary.LittleEndian.PutUint32(g[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(g[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(g[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(g[8:], u[8:])
	return g
}

// ParseGUID parses the canonical string form.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, err
	}
	return GUIDFromUUID(u), nil
}

// Heaps holds the raw bytes of the four metadata heaps. Missing heaps are
// represented by empty slices.
type Heaps struct {
	Strings    []byte
	Blob       []byte
	GUID       []byte
	UserString []byte
}

// GetString reads the zero-terminated string at offset. Offset 0 is the absent
// (empty) string.
func (h *Heaps) GetString(offset uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	if int64(offset) >= int64(len(h.Strings)) {
		return "", rangeErrf("string heap offset", int64(offset), int64(len(h.Strings)))
	}
	b := h.Strings[offset:]
	end := bytes.IndexByte(b, 0)
	if end < 0 {
		return "", decodeErrf(b, len(b), nil, "unterminated string at heap offset %d", offset)
	}
	return string(b[:end]), nil
}

// GetBlob returns the blob at offset without copying. Offset 0 is the absent
// (empty) blob.
func (h *Heaps) GetBlob(offset uint32) ([]byte, error) {
	return readBlob(h.Blob, offset, "blob heap offset")
}

func readBlob(heap []byte, offset uint32, what string) ([]byte, error) {
	if offset == 0 {
		return nil, nil
	}
	if int64(offset) >= int64(len(heap)) {
		return nil, rangeErrf(what, int64(offset), int64(len(heap)))
	}
	b := heap[offset:]
	n, hdr, err := DecodeBlobLength(b)
	if err != nil {
		return nil, err
	}
	end := int64(hdr) + int64(n)
	if end > int64(len(b)) {
		return nil, rangeErrf("blob length", int64(offset)+end, int64(len(heap)))
	}
	return b[hdr:end:end], nil
}

// GetGUID returns the 1-based GUID heap entry at index. Index 0 is absent,
// reported as ok == false.
func (h *Heaps) GetGUID(index uint32) (g GUID, ok bool, err error) {
	if index == 0 {
		return GUID{}, false, nil
	}
	off := (int64(index) - 1) * 16
	if off+16 > int64(len(h.GUID)) {
		return GUID{}, false, rangeErrf("guid heap index", int64(index), int64(len(h.GUID)/16))
	}
	copy(g[:], h.GUID[off:off+16])
	return g, true, nil
}

// GetUserString reads a user string literal (as referenced by ldstr tokens):
// a blob of UTF-16LE code units followed by one flag byte.
func (h *Heaps) GetUserString(offset uint32) (string, error) {
	b, err := readBlob(h.UserString, offset, "user string heap offset")
	if err != nil || len(b) == 0 {
		return "", err
	}
	return decodeUTF16(b[:len(b)&^1]), nil
}

func decodeUTF16(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(units))
}
