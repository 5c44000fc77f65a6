package clrmeta

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Options configures a Database.
type Options struct {
	// Logger receives debug-level load events. Defaults to slog.Default().
	Logger *slog.Logger

	// Resolver resolves types that are referenced but not defined by this
	// image, e.g. enums used as custom attribute arguments.
	Resolver TypeResolver
}

// Database is a loaded, read-only metadata image. It is safe for concurrent
// use by multiple goroutines.
type Database struct {
	heaps        Heaps
	tables       [numTableKinds]Table
	version      string
	majorVersion uint16
	minorVersion uint16
	heapSizes    byte
	sorted       uint64

	logger   *slog.Logger
	resolver TypeResolver
	closer   func() error

	typeIndexOnce sync.Once
	typeIndex     map[typeName]int
	enumCache     sync.Map // TypeDef row -> *EnumInfo
}

type typeName struct {
	namespace, name string
}

// Version returns the runtime version string from the metadata root,
// e.g. "WindowsRuntime 1.4".
func (db *Database) Version() string { return db.version }

// Heaps returns the raw heaps.
func (db *Database) Heaps() *Heaps { return &db.heaps }

// Table returns the table of the given kind. Tables absent from the image
// are returned with no rows. Panics on an invalid kind.
func (db *Database) Table(kind TableKind) *Table {
	if !kind.Valid() {
		panic(fmt.Sprintf("invalid table kind %d", kind))
	}
	return &db.tables[kind]
}

// TableByName returns a table by its name, e.g. "TypeDef".
func (db *Database) TableByName(name string) (*Table, error) {
	kind, ok := ParseTableKind(name)
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, ErrNotFound)
	}
	return &db.tables[kind], nil
}

// IsSorted reports whether the image declares kind as sorted.
func (db *Database) IsSorted(kind TableKind) bool {
	return db.sorted&(1<<kind) != 0
}

// Row returns a row by table kind and zero-based index.
func (db *Database) Row(kind TableKind, index int) (Row, error) {
	if !kind.Valid() {
		return Row{}, rangeErrf("table kind", int64(kind), numTableKinds)
	}
	if index < 0 || index >= db.tables[kind].rowCount {
		return Row{}, rangeErrf(kind.String()+" row", int64(index), int64(db.tables[kind].rowCount))
	}
	return Row{db, kind, index}, nil
}

// Rows returns all rows of a table.
func (db *Database) Rows(kind TableKind) Range[Record] {
	return newRange[Record](db, kind, 0, db.Table(kind).rowCount)
}

func (db *Database) GetString(offset uint32) (string, error) { return db.heaps.GetString(offset) }
func (db *Database) GetBlob(offset uint32) ([]byte, error)   { return db.heaps.GetBlob(offset) }

func (db *Database) GetGUID(index uint32) (GUID, bool, error) { return db.heaps.GetGUID(index) }

func (db *Database) GetUserString(offset uint32) (string, error) {
	return db.heaps.GetUserString(offset)
}

// Close releases the image backing db if it was opened by OpenFile. Rows,
// strings and blobs obtained from db must not be used afterwards.
func (db *Database) Close() error {
	if db.closer == nil {
		return nil
	}
	c := db.closer
	db.closer = nil
	return c()
}

// FindTypeDef looks up a type defined in this image by namespace and name.
// Nested types are not indexed.
func (db *Database) FindTypeDef(namespace, name string) (TypeDef, error) {
	db.typeIndexOnce.Do(db.buildTypeIndex)
	i, ok := db.typeIndex[typeName{namespace, name}]
	if !ok {
		return TypeDef{}, fmt.Errorf("type %s: %w", joinTypeName(namespace, name), ErrNotFound)
	}
	return TypeDef{Row{db, TableTypeDef, i}}, nil
}

func (db *Database) buildTypeIndex() {
	tbl := db.Table(TableTypeDef)
	db.typeIndex = make(map[typeName]int, tbl.rowCount)
	for i := range tbl.rowCount {
		if TypeAttributes(tbl.value(i, typeDefFlags)).IsNested() {
			continue
		}
		ns, err1 := db.heaps.GetString(tbl.value(i, typeDefTypeNamespace))
		name, err2 := db.heaps.GetString(tbl.value(i, typeDefTypeName))
		if err1 != nil || err2 != nil {
			db.logger.LogAttrs(context.Background(), slog.LevelDebug, "clrmeta: skipping unreadable type name", slog.Int("row", i))
			continue
		}
		db.typeIndex[typeName{ns, name}] = i
	}
}

func joinTypeName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// All returns every row of kind viewed as V. V must be the view type of kind.
func All[V View](db *Database, kind TableKind) Range[V] {
	return newRange[V](db, kind, 0, db.Table(kind).rowCount)
}

// Assembly returns the assembly manifest row; ok is false for modules that
// are not assemblies (e.g. .winmd files produced by some tools).
func (db *Database) Assembly() (a Assembly, ok bool) {
	if db.tables[TableAssembly].rowCount == 0 {
		return Assembly{}, false
	}
	return Assembly{Row{db, TableAssembly, 0}}, true
}
