package clrmeta

import (
	"errors"
	"reflect"
	"testing"
)

func TestCompressedUint_Boundaries(t *testing.T) {
	tests := []struct {
		v   uint32
		enc []byte
	}{
		{0x00, []byte{0x00}},
		{0x03, []byte{0x03}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x80, 0x80}},
		{0x2E57, []byte{0xAE, 0x57}},
		{0x3FFF, []byte{0xBF, 0xFF}},
		{0x4000, []byte{0xC0, 0x00, 0x40, 0x00}},
		{0x1FFFFFFF, []byte{0xDF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		enc := AppendCompressedUint(nil, tt.v)
		if !reflect.DeepEqual(enc, tt.enc) {
			t.Errorf("AppendCompressedUint(0x%x) = %x, wanted %x", tt.v, enc, tt.enc)
		}
		v, n, err := DecodeCompressedUint(tt.enc)
		if err != nil {
			t.Errorf("DecodeCompressedUint(%x) failed: %v", tt.enc, err)
			continue
		}
		if v != tt.v || n != len(tt.enc) {
			t.Errorf("DecodeCompressedUint(%x) = 0x%x, %d, wanted 0x%x, %d", tt.enc, v, n, tt.v, len(tt.enc))
		}
	}
}

func TestCompressedUint_Invalid(t *testing.T) {
	for _, b := range []byte{0xE0, 0xF0, 0xFF} {
		_, _, err := DecodeCompressedUint([]byte{b, 0, 0, 0})
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("DecodeCompressedUint(%02x...) err = %v, wanted *DecodeError", b, err)
		}
	}
}

func TestCompressedUint_Truncated(t *testing.T) {
	for _, enc := range [][]byte{{}, {0x80}, {0xC0, 0x00, 0x00}} {
		_, _, err := DecodeCompressedUint(enc)
		var re *RangeError
		if !errors.As(err, &re) {
			t.Errorf("DecodeCompressedUint(%x) err = %v, wanted *RangeError", enc, err)
		}
	}
}

func TestCompressedUint_AppendOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("AppendCompressedUint(0x20000000) did not panic")
		}
	}()
	AppendCompressedUint(nil, MaxCompressedUint+1)
}

func TestBlobLength(t *testing.T) {
	tests := []struct {
		enc []byte
		n   uint32
		hdr int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x7F}, 0x7F, 1},
		{[]byte{0x80, 0x80}, 0x80, 2},
		{[]byte{0xBF, 0xFF}, 0x3FFF, 2},
		{[]byte{0xC0, 0x00, 0x40, 0x00}, 0x4000, 4},
	}
	for _, tt := range tests {
		n, hdr, err := DecodeBlobLength(tt.enc)
		if err != nil {
			t.Errorf("DecodeBlobLength(%x) failed: %v", tt.enc, err)
			continue
		}
		if n != tt.n || hdr != tt.hdr {
			t.Errorf("DecodeBlobLength(%x) = 0x%x, %d, wanted 0x%x, %d", tt.enc, n, hdr, tt.n, tt.hdr)
		}
		if enc := AppendBlobLength(nil, int(tt.n)); !reflect.DeepEqual(enc, tt.enc) {
			t.Errorf("AppendBlobLength(0x%x) = %x, wanted %x", tt.n, enc, tt.enc)
		}
	}

	_, _, err := DecodeBlobLength([]byte{0xE0})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("DecodeBlobLength(e0) err = %v, wanted *DecodeError", err)
	}
	_, _, err = DecodeBlobLength([]byte{0xC1, 0x00})
	var re *RangeError
	if !errors.As(err, &re) {
		t.Fatalf("DecodeBlobLength(c100) err = %v, wanted *RangeError", err)
	}
}

func TestByteDecoder_Reads(t *testing.T) {
	d := makeByteDecoder([]byte{0x01, 0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0x81, 0x00, 0x02, 'h', 'i'})
	if v, err := d.Byte(); err != nil || v != 0x01 {
		t.Fatalf("Byte = %x, %v, wanted 01", v, err)
	}
	if v, err := d.Uint16(); err != nil || v != 0x1234 {
		t.Fatalf("Uint16 = %x, %v, wanted 1234", v, err)
	}
	if v, err := d.Uint32(); err != nil || v != 0x12345678 {
		t.Fatalf("Uint32 = %x, %v, wanted 12345678", v, err)
	}
	if v, err := d.CompressedUint(); err != nil || v != 0x100 {
		t.Fatalf("CompressedUint = %x, %v, wanted 100", v, err)
	}
	s, ok, err := d.SerString()
	if err != nil || !ok || s != "hi" {
		t.Fatalf("SerString = %q, %v, %v, wanted \"hi\"", s, ok, err)
	}
	if d.Remaining() != 0 || d.Off() != 12 {
		t.Fatalf("Remaining = %d, Off = %d, wanted 0, 12", d.Remaining(), d.Off())
	}

	_, err = d.Uint64()
	var re *RangeError
	if !errors.As(err, &re) {
		t.Fatalf("Uint64 past end err = %v, wanted *RangeError", err)
	}
}

func TestByteDecoder_NullSerString(t *testing.T) {
	d := makeByteDecoder([]byte{0xFF, 0x00})
	s, ok, err := d.SerString()
	if err != nil || ok || s != "" {
		t.Fatalf("SerString = %q, %v, %v, wanted null", s, ok, err)
	}
	s, ok, err = d.SerString()
	if err != nil || !ok || s != "" {
		t.Fatalf("SerString = %q, %v, %v, wanted empty non-null", s, ok, err)
	}
}

func TestByteDecoder_ErrorOffsets(t *testing.T) {
	d := makeByteDecoder([]byte{0x01, 0x02, 0xE0})
	d.Raw(2)
	_, err := d.CompressedUint()
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, wanted *DecodeError", err)
	}
	if de.Off != 2 || len(de.Data) != 3 {
		t.Fatalf("DecodeError Off = %d, len(Data) = %d, wanted 2, 3", de.Off, len(de.Data))
	}
}
