package clrmeta

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"fmt"

	"github.com/andreyvit/clrmeta/mmap"
)

const comDescriptorDirectory = 14 // IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR

// OpenFile memory-maps a .winmd/.dll image, or a bare metadata blob, and
// opens the metadata it contains. Close the returned Database to release the
// mapping.
func OpenFile(path string, opt Options) (*Database, error) {
	m, err := mmap.Open(path, mmap.RandomAccess)
	if err != nil {
		return nil, err
	}
	md, err := locateMetadata(m.Bytes())
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	db, err := Open(md, opt)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	db.closer = m.Close
	return db, nil
}

// locateMetadata returns the metadata root within a PE image, or data itself
// if it already starts with the metadata signature.
func locateMetadata(data []byte) ([]byte, error) {
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == metadataSignature {
		return data, nil
	}
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not a metadata or PE image: %w", err)
	}
	defer f.Close()

	var dirs []pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		dirs = oh.DataDirectory[:min(oh.NumberOfRvaAndSizes, 16)]
	case *pe.OptionalHeader64:
		dirs = oh.DataDirectory[:min(oh.NumberOfRvaAndSizes, 16)]
	}
	if len(dirs) <= comDescriptorDirectory || dirs[comDescriptorDirectory].VirtualAddress == 0 {
		return nil, fmt.Errorf("PE image has no CLI header")
	}

	cli, err := sliceRVA(f, data, dirs[comDescriptorDirectory].VirtualAddress, 16)
	if err != nil {
		return nil, fmt.Errorf("CLI header: %w", err)
	}
	mdRVA := binary.LittleEndian.Uint32(cli[8:])
	mdSize := binary.LittleEndian.Uint32(cli[12:])
	md, err := sliceRVA(f, data, mdRVA, mdSize)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	return md, nil
}

func sliceRVA(f *pe.File, data []byte, rva, size uint32) ([]byte, error) {
	for _, s := range f.Sections {
		span := max(s.VirtualSize, s.Size)
		if rva < s.VirtualAddress || rva >= s.VirtualAddress+span {
			continue
		}
		start := int64(rva-s.VirtualAddress) + int64(s.Offset)
		end := start + int64(size)
		if end > int64(len(data)) {
			return nil, rangeErrf(fmt.Sprintf("RVA 0x%x", rva), end, int64(len(data)))
		}
		return data[start:end:end], nil
	}
	return nil, fmt.Errorf("RVA 0x%x not in any section", rva)
}
