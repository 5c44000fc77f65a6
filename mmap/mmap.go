// Package mmap maps metadata image files read-only into memory.
package mmap

import (
	"fmt"
	"os"
)

type Options uint

const (
	// SequentialAccess is a hint requesting aggressive read-ahead.
	// Incompatible with RandomAccess. Maps to MADV_SEQUENTIAL on Unix.
	SequentialAccess Options = 1 << 1

	// RandomAccess is a hint that read ahead is less useful than normally.
	// Incompatible with SequentialAccess. Maps to MADV_RANDOM on Unix.
	RandomAccess Options = 1 << 2

	// Prefault is a hint requesting the entire file to be loaded in memory
	// for fastest access. Maps to MAP_POPULATE on Linux, ignored elsewhere.
	Prefault Options = 1 << 3
)

func (o Options) Has(v Options) bool {
	return o&v != 0
}

// Mapping is a read-only view of a whole file.
type Mapping struct {
	f    *os.File
	data []byte
}

// Open maps the named file read-only. Empty files produce a mapping with no
// data (and no underlying OS mapping).
func Open(path string, opt Options) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := st.Size()
	if int64(int(size)) != size {
		f.Close()
		return nil, fmt.Errorf("mmap %s: file too large (%d bytes)", path, size)
	}
	m := &Mapping{f: f}
	if size > 0 {
		m.data, err = mmap(f, int(size), opt)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("mmap %s: %w", path, err)
		}
	}
	return m, nil
}

// Bytes returns the mapped data. The slice must not be modified and must not
// be used after Close.
func (m *Mapping) Bytes() []byte {
	return m.data
}

func (m *Mapping) Len() int {
	return len(m.data)
}

// Close unmaps the data and closes the file.
func (m *Mapping) Close() error {
	var err error
	if m.data != nil {
		err = munmap(m.data)
		m.data = nil
	}
	if m.f != nil {
		if cerr := m.f.Close(); err == nil {
			err = cerr
		}
		m.f = nil
	}
	return err
}
