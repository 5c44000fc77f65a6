package clrmeta

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeError_ErrorAndUnwrap(t *testing.T) {
	t.Run("small data", func(t *testing.T) {
		inner := errors.New("inner")
		err := decodeErrf([]byte{0xAA, 0xBB}, 1, inner, "oops")
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("err = %T, wanted *DecodeError", err)
		}
		if !errors.Is(err, inner) {
			t.Fatalf("errors.Is(err, inner) = false, wanted true")
		}
		s := err.Error()
		if !strings.Contains(s, "oops") || !strings.Contains(s, "inner") || !strings.Contains(s, "(2)") {
			t.Fatalf("err.Error() = %q, wanted message with oops/inner/(2)", s)
		}
	})

	t.Run("large data includes prefix+suffix", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = byte(i)
		}
		s := decodeErrf(data, 0, nil, "oops").Error()
		if !strings.Contains(s, "(200)") || !strings.Contains(s, "...") {
			t.Fatalf("err.Error() = %q, wanted message with (200) and ...", s)
		}
	})
}

func TestTableError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := tableErrf(TableTypeDef, 3, "Extends", inner, "oops %d", 1)
	if !errors.Is(err, inner) {
		t.Fatalf("errors.Is(err, inner) = false, wanted true")
	}
	s := err.Error()
	if s != "TypeDef[3].Extends: oops 1: inner" {
		t.Fatalf("err.Error() = %q, wanted %q", s, "TypeDef[3].Extends: oops 1: inner")
	}

	s = (&TableError{Table: TableField, Row: 0, Err: inner}).Error()
	if s != "Field[0]: inner" {
		t.Fatalf("err.Error() = %q, wanted %q", s, "Field[0]: inner")
	}
}

func TestRangeError(t *testing.T) {
	s := rangeErrf("blob heap offset", 10, 4).Error()
	if s != "blob heap offset out of range: 10 (limit 4)" {
		t.Fatalf("err.Error() = %q", s)
	}
}

func TestUnsupportedFormError(t *testing.T) {
	s := (&UnsupportedFormError{Form: "ptr type", Off: 3}).Error()
	if !strings.Contains(s, "ptr type") || !strings.Contains(s, "3") {
		t.Fatalf("err.Error() = %q, wanted form and offset", s)
	}
}
