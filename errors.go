package clrmeta

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTarget is returned when dereferencing a coded index or a foreign
	// key that denotes no row.
	ErrNoTarget = errors.New("no target")

	// ErrNotFound is returned by name-based lookups that find nothing.
	ErrNotFound = errors.New("not found")
)

// RangeError reports a row, column, heap offset or cursor read that falls
// outside of the underlying data.
type RangeError struct {
	What  string
	Index int64
	Limit int64
}

func rangeErrf(what string, index, limit int64) error {
	return &RangeError{what, index, limit}
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: %d (limit %d)", e.What, e.Index, e.Limit)
}

// DecodeError reports malformed binary data: a bad compressed integer, a bad
// blob length header, an unknown leading tag or a calling convention of the
// wrong kind.
type DecodeError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func decodeErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DecodeError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s at %d: %v: (%d) %x", e.Msg, e.Off, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s at %d: (%d) %x", e.Msg, e.Off, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s at %d: %v: (%d) %x...%x", e.Msg, e.Off, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s at %d: (%d) %x...%x", e.Msg, e.Off, n, p, s)
		}
	}
}

// UnsupportedFormError reports a recognized grammar branch that this package
// deliberately does not decode (pointer, function pointer and general array
// types, floating point values).
type UnsupportedFormError struct {
	Form string
	Off  int
}

func (e *UnsupportedFormError) Error() string {
	return fmt.Sprintf("unsupported signature form: %s at %d", e.Form, e.Off)
}

// TableError adds table and row context to an error raised while reading
// a particular row.
type TableError struct {
	Table  TableKind
	Row    int
	Column string
	Msg    string
	Err    error
}

func tableErrf(kind TableKind, row int, column string, err error, format string, args ...any) error {
	return &TableError{kind, row, column, fmt.Sprintf(format, args...), err}
}

func (e *TableError) Unwrap() error {
	return e.Err
}

func (e *TableError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Table.String())
	fmt.Fprintf(&buf, "[%d]", e.Row)
	if e.Column != "" {
		buf.WriteByte('.')
		buf.WriteString(e.Column)
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
		if e.Err != nil {
			buf.WriteString(": ")
			buf.WriteString(e.Err.Error())
		}
	} else if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
