package clrmeta

import (
	"encoding/binary"
	"unicode/utf8"
)

// MaxCompressedUint is the largest value representable by the compressed
// unsigned integer encoding.
const MaxCompressedUint = 0x1FFFFFFF

// DecodeCompressedUint decodes an ECMA-335 compressed unsigned integer from
// the start of b, returning the value and the number of bytes it occupies.
//
//	0xxxxxxx                            7 bits
//	10xxxxxx xxxxxxxx                   14 bits
//	110xxxxx xxxxxxxx xxxxxxxx xxxxxxxx 29 bits
func DecodeCompressedUint(b []byte) (uint32, int, error) {
	if len(b) == 0 {
		return 0, 0, rangeErrf("compressed integer", 1, 0)
	}
	b0 := b[0]
	switch {
	case b0&0x80 == 0:
		return uint32(b0), 1, nil
	case b0&0xC0 == 0x80:
		if len(b) < 2 {
			return 0, 0, rangeErrf("compressed integer", 2, int64(len(b)))
		}
		return uint32(b0&0x3F)<<8 | uint32(b[1]), 2, nil
	case b0&0xE0 == 0xC0:
		if len(b) < 4 {
			return 0, 0, rangeErrf("compressed integer", 4, int64(len(b)))
		}
		return uint32(b0&0x1F)<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), 4, nil
	default:
		return 0, 0, decodeErrf(b[:1], 0, nil, "invalid compressed integer")
	}
}

// DecodeBlobLength decodes the length header that prefixes every Blob and
// UserString heap entry. The bit layout mirrors DecodeCompressedUint, but the
// two are distinct encodings in the format and are kept apart here.
func DecodeBlobLength(b []byte) (uint32, int, error) {
	if len(b) == 0 {
		return 0, 0, rangeErrf("blob header", 1, 0)
	}
	b0 := b[0]
	if b0 < 0x80 {
		return uint32(b0), 1, nil
	}
	switch b0 >> 5 {
	case 0b100, 0b101:
		if len(b) < 2 {
			return 0, 0, rangeErrf("blob header", 2, int64(len(b)))
		}
		return uint32(b0&0x3F)<<8 | uint32(b[1]), 2, nil
	case 0b110:
		if len(b) < 4 {
			return 0, 0, rangeErrf("blob header", 4, int64(len(b)))
		}
		return uint32(b0&0x1F)<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), 4, nil
	default:
		return 0, 0, decodeErrf(b[:1], 0, nil, "invalid blob encoding")
	}
}

// AppendCompressedUint appends the minimal-width compressed encoding of v.
// Panics if v exceeds MaxCompressedUint.
func AppendCompressedUint(buf []byte, v uint32) []byte {
	switch {
	case v < 0x80:
		return append(buf, byte(v))
	case v < 0x4000:
		return append(buf, byte(v>>8)|0x80, byte(v))
	case v <= MaxCompressedUint:
		return append(buf, byte(v>>24)|0xC0, byte(v>>16), byte(v>>8), byte(v))
	default:
		panic("compressed integer overflow")
	}
}

// AppendBlobLength appends a blob length header for n bytes.
func AppendBlobLength(buf []byte, n int) []byte {
	if n < 0 || n > MaxCompressedUint {
		panic("blob too large")
	}
	return AppendCompressedUint(buf, uint32(n))
}

// byteDecoder is a forward-only, bounds-checked cursor over a single blob.
type byteDecoder struct {
	Orig []byte
	Buf  []byte
}

func makeByteDecoder(buf []byte) byteDecoder {
	return byteDecoder{buf, buf}
}

func (d *byteDecoder) Off() int {
	return len(d.Orig) - len(d.Buf)
}

func (d *byteDecoder) Remaining() int {
	return len(d.Buf)
}

func (d *byteDecoder) short(n int) error {
	return rangeErrf("blob read", int64(d.Off()+n), int64(len(d.Orig)))
}

func (d *byteDecoder) errf(format string, args ...any) error {
	return decodeErrf(d.Orig, d.Off(), nil, format, args...)
}

// Peek returns the next byte without consuming it.
func (d *byteDecoder) Peek() (byte, error) {
	if len(d.Buf) == 0 {
		return 0, d.short(1)
	}
	return d.Buf[0], nil
}

func (d *byteDecoder) Byte() (byte, error) {
	if len(d.Buf) == 0 {
		return 0, d.short(1)
	}
	v := d.Buf[0]
	d.Buf = d.Buf[1:]
	return v, nil
}

func (d *byteDecoder) Raw(n int) ([]byte, error) {
	if len(d.Buf) < n {
		return nil, d.short(n)
	}
	v := d.Buf[:n]
	d.Buf = d.Buf[n:]
	return v, nil
}

func (d *byteDecoder) Uint16() (uint16, error) {
	b, err := d.Raw(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *byteDecoder) Uint32() (uint32, error) {
	b, err := d.Raw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *byteDecoder) Uint64() (uint64, error) {
	b, err := d.Raw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *byteDecoder) CompressedUint() (uint32, error) {
	v, n, err := DecodeCompressedUint(d.Buf)
	if err != nil {
		return 0, d.rebase(err)
	}
	d.Buf = d.Buf[n:]
	return v, nil
}

// rebase rewrites offsets of errors raised against d.Buf to be relative to
// the start of the blob.
func (d *byteDecoder) rebase(err error) error {
	switch e := err.(type) {
	case *DecodeError:
		return decodeErrf(d.Orig, d.Off()+e.Off, e.Err, "%s", e.Msg)
	case *RangeError:
		return rangeErrf(e.What, int64(d.Off())+e.Index, int64(len(d.Orig)))
	}
	return err
}

// SerString reads a length-prefixed UTF-8 string as used by custom attribute
// blobs. A leading 0xFF denotes a null string, reported as ok == false.
func (d *byteDecoder) SerString() (s string, ok bool, err error) {
	b, err := d.Peek()
	if err != nil {
		return "", false, err
	}
	if b == 0xFF {
		d.Buf = d.Buf[1:]
		return "", false, nil
	}
	n, err := d.CompressedUint()
	if err != nil {
		return "", false, err
	}
	raw, err := d.Raw(int(n))
	if err != nil {
		return "", false, err
	}
	if !utf8.Valid(raw) {
		return "", false, d.errf("invalid UTF-8 in string")
	}
	return string(raw), true, nil
}
