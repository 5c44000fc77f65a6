package clrmeta

import (
	"context"
	"log/slog"
	"math/bits"
)

const metadataSignature = 0x424A5342 // "BSJB"

type streamHeader struct {
	name string
	data []byte
}

// Open decodes the metadata root at the start of image and returns a
// Database over it. The image is not copied and must stay unchanged for the
// lifetime of the Database.
func Open(image []byte, opt Options) (*Database, error) {
	db := &Database{
		logger:   opt.Logger,
		resolver: opt.Resolver,
	}
	if db.logger == nil {
		db.logger = slog.Default()
	}

	streams, err := db.readRoot(image)
	if err != nil {
		return nil, err
	}

	var tableStream []byte
	for _, s := range streams {
		switch s.name {
		case "#~", "#-":
			tableStream = s.data
		case "#Strings":
			db.heaps.Strings = s.data
		case "#Blob":
			db.heaps.Blob = s.data
		case "#GUID":
			db.heaps.GUID = s.data
		case "#US":
			db.heaps.UserString = s.data
		default:
			db.logger.LogAttrs(context.Background(), slog.LevelDebug, "clrmeta: ignoring stream", slog.String("stream", s.name))
		}
	}
	if tableStream == nil {
		return nil, decodeErrf(nil, 0, nil, "metadata has no table stream")
	}
	if err := db.readTables(tableStream); err != nil {
		return nil, err
	}

	db.logger.LogAttrs(context.Background(), slog.LevelDebug, "clrmeta: loaded metadata",
		slog.String("version", db.version),
		slog.Int("types", db.tables[TableTypeDef].rowCount),
		slog.Int("methods", db.tables[TableMethodDef].rowCount),
		slog.Int("strings", len(db.heaps.Strings)),
		slog.Int("blobs", len(db.heaps.Blob)))
	return db, nil
}

func (db *Database) readRoot(image []byte) ([]streamHeader, error) {
	d := makeByteDecoder(image)
	sig, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	if sig != metadataSignature {
		return nil, decodeErrf(image[:4], 0, nil, "invalid metadata signature 0x%08x", sig)
	}
	if db.majorVersion, err = d.Uint16(); err != nil {
		return nil, err
	}
	if db.minorVersion, err = d.Uint16(); err != nil {
		return nil, err
	}
	if _, err = d.Uint32(); err != nil {
		return nil, err
	}
	vlen, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	vbuf, err := d.Raw(int(vlen))
	if err != nil {
		return nil, err
	}
	db.version = cstring(vbuf)

	if _, err = d.Uint16(); err != nil { // flags
		return nil, err
	}
	count, err := d.Uint16()
	if err != nil {
		return nil, err
	}

	streams := make([]streamHeader, 0, count)
	for range count {
		off, err := d.Uint32()
		if err != nil {
			return nil, err
		}
		size, err := d.Uint32()
		if err != nil {
			return nil, err
		}
		name, err := readStreamName(&d)
		if err != nil {
			return nil, err
		}
		end := int64(off) + int64(size)
		if end > int64(len(image)) {
			return nil, rangeErrf("stream "+name, end, int64(len(image)))
		}
		streams = append(streams, streamHeader{name, image[off:end:end]})
	}
	return streams, nil
}

// readStreamName reads a zero-terminated name padded to a 4-byte boundary.
func readStreamName(d *byteDecoder) (string, error) {
	var name []byte
	for {
		chunk, err := d.Raw(4)
		if err != nil {
			return "", err
		}
		for i, c := range chunk {
			if c == 0 {
				return string(append(name, chunk[:i]...)), nil
			}
		}
		name = append(name, chunk...)
		if len(name) > 32 {
			return "", d.errf("stream name too long")
		}
	}
}

func (db *Database) readTables(stream []byte) error {
	d := makeByteDecoder(stream)
	if _, err := d.Raw(6); err != nil { // reserved, major, minor
		return err
	}
	heapSizes, err := d.Byte()
	if err != nil {
		return err
	}
	if _, err := d.Byte(); err != nil {
		return err
	}
	valid, err := d.Uint64()
	if err != nil {
		return err
	}
	if db.sorted, err = d.Uint64(); err != nil {
		return err
	}
	if valid>>numTableKinds != 0 {
		return decodeErrf(stream[:24], 8, nil, "unknown tables present: valid mask 0x%016x", valid)
	}
	db.heapSizes = heapSizes

	var rowCounts [numTableKinds]uint32
	for k := range TableKind(numTableKinds) {
		if valid&(1<<k) != 0 {
			if rowCounts[k], err = d.Uint32(); err != nil {
				return err
			}
		}
	}
	if heapSizes&HeapExtraData != 0 {
		if _, err := d.Uint32(); err != nil {
			return err
		}
	}

	for k := range TableKind(numTableKinds) {
		cols, rowSize := layoutColumns(k, &rowCounts, heapSizes)
		size := int(rowCounts[k]) * rowSize
		data, err := d.Raw(size)
		if err != nil {
			return tableErrf(k, 0, "", err, "table data truncated")
		}
		db.tables[k] = Table{
			kind:     k,
			data:     data,
			rowCount: int(rowCounts[k]),
			rowSize:  rowSize,
			cols:     cols,
		}
	}
	db.logger.LogAttrs(context.Background(), slog.LevelDebug, "clrmeta: table stream",
		slog.Int("tables", bits.OnesCount64(valid)),
		slog.Int("heap_sizes", int(heapSizes)))
	return nil
}

func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
