package catalog

import (
	"time"

	"github.com/andreyvit/clrmeta"
)

// TypeEntry locates a type definition.
type TypeEntry struct {
	Namespace string                 `msgpack:"ns"`
	Name      string                 `msgpack:"n"`
	Source    string                 `msgpack:"src"`
	Mvid      clrmeta.GUID           `msgpack:"mvid"`
	Row       int                    `msgpack:"row"`
	Flags     clrmeta.TypeAttributes `msgpack:"f"`
	Extends   string                 `msgpack:"ext,omitempty"`
	IsEnum    bool                   `msgpack:"enum,omitempty"`
}

func (e *TypeEntry) FullName() string {
	if e.Namespace == "" {
		return e.Name
	}
	return e.Namespace + "." + e.Name
}

// Token returns the TypeDef token of the entry within its source image.
func (e *TypeEntry) Token() uint32 {
	return uint32(clrmeta.TableTypeDef)<<24 | uint32(e.Row+1)
}

type enumRecord struct {
	Underlying clrmeta.ElementType `msgpack:"u"`
	Flags      bool                `msgpack:"fl,omitempty"`
	Members    []enumMember        `msgpack:"m"`
}

type enumMember struct {
	Name  string `msgpack:"n"`
	Value uint64 `msgpack:"v"`
}

func makeEnumRecord(info *clrmeta.EnumInfo) *enumRecord {
	rec := &enumRecord{Underlying: info.Underlying, Flags: info.Flags}
	rec.Members = make([]enumMember, len(info.Members))
	for i, m := range info.Members {
		rec.Members[i] = enumMember{m.Name, m.Value}
	}
	return rec
}

func (rec *enumRecord) info(namespace, name string) *clrmeta.EnumInfo {
	info := &clrmeta.EnumInfo{
		Namespace:  namespace,
		Name:       name,
		Underlying: rec.Underlying,
		Flags:      rec.Flags,
		Members:    make([]clrmeta.EnumMember, len(rec.Members)),
	}
	for i, m := range rec.Members {
		info.Members[i] = clrmeta.EnumMember{Name: m.Name, Value: m.Value}
	}
	return info
}

// Source describes one indexed image.
type Source struct {
	Path      string       `msgpack:"p"`
	Mvid      clrmeta.GUID `msgpack:"mvid"`
	Module    string       `msgpack:"mod"`
	Version   string       `msgpack:"ver"`
	Types     int          `msgpack:"t"`
	Enums     int          `msgpack:"e"`
	IndexedAt time.Time    `msgpack:"at"`

	// TypeNames are the catalog keys owned by this source, kept so that
	// re-indexing can drop types that disappeared.
	TypeNames []string `msgpack:"keys"`
}
