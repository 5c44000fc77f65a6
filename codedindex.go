package clrmeta

import "fmt"

const noTable TableKind = 0xFF

// CodedIndexScheme maps the low tag bits of a coded index to the table the
// index points into. Schemes are fixed by the format and never mutated.
type CodedIndexScheme struct {
	Name    string
	TagBits uint
	tables  []TableKind // noTable marks a reserved tag
}

func newScheme(name string, tagBits uint, tables ...TableKind) *CodedIndexScheme {
	if len(tables) > 1<<tagBits {
		panic(fmt.Sprintf("coded index %s: %d tables do not fit into %d tag bits", name, len(tables), tagBits))
	}
	return &CodedIndexScheme{name, tagBits, tables}
}

var (
	TypeDefOrRef = newScheme("TypeDefOrRef", 2, TableTypeDef, TableTypeRef, TableTypeSpec)
	HasConstant  = newScheme("HasConstant", 2, TableField, TableParam, TableProperty)

	HasCustomAttribute = newScheme("HasCustomAttribute", 5,
		TableMethodDef, TableField, TableTypeRef, TableTypeDef, TableParam,
		TableInterfaceImpl, TableMemberRef, TableModule, TableDeclSecurity, TableProperty,
		TableEvent, TableStandAloneSig, TableModuleRef, TableTypeSpec, TableAssembly,
		TableAssemblyRef, TableFile, TableExportedType, TableManifestResource, TableGenericParam,
		TableGenericParamConstraint, TableMethodSpec)

	HasFieldMarshal     = newScheme("HasFieldMarshal", 1, TableField, TableParam)
	HasDeclSecurity     = newScheme("HasDeclSecurity", 2, TableTypeDef, TableMethodDef, TableAssembly)
	MemberRefParent     = newScheme("MemberRefParent", 3, TableTypeDef, TableTypeRef, TableModuleRef, TableMethodDef, TableTypeSpec)
	HasSemantics        = newScheme("HasSemantics", 1, TableEvent, TableProperty)
	MethodDefOrRef      = newScheme("MethodDefOrRef", 1, TableMethodDef, TableMemberRef)
	MemberForwarded     = newScheme("MemberForwarded", 1, TableField, TableMethodDef)
	Implementation      = newScheme("Implementation", 2, TableFile, TableAssemblyRef, TableExportedType)
	CustomAttributeType = newScheme("CustomAttributeType", 3, noTable, noTable, TableMethodDef, TableMemberRef, noTable)
	ResolutionScope     = newScheme("ResolutionScope", 2, TableModule, TableModuleRef, TableAssemblyRef, TableTypeRef)
	TypeOrMethodDef     = newScheme("TypeOrMethodDef", 1, TableTypeDef, TableMethodDef)
)

// CodedIndexSchemes lists every scheme known to this package.
func CodedIndexSchemes() []*CodedIndexScheme {
	return []*CodedIndexScheme{
		TypeDefOrRef, HasConstant, HasCustomAttribute, HasFieldMarshal, HasDeclSecurity,
		MemberRefParent, HasSemantics, MethodDefOrRef, MemberForwarded, Implementation,
		CustomAttributeType, ResolutionScope, TypeOrMethodDef,
	}
}

func (s *CodedIndexScheme) String() string {
	return s.Name
}

// TagCount returns the number of tag values defined by the scheme, including
// reserved ones.
func (s *CodedIndexScheme) TagCount() int {
	return len(s.tables)
}

// Table returns the table a tag maps to; ok is false for reserved or
// undefined tags.
func (s *CodedIndexScheme) Table(tag uint32) (TableKind, bool) {
	if tag >= uint32(len(s.tables)) || s.tables[tag] == noTable {
		return 0, false
	}
	return s.tables[tag], true
}

// TagOf returns the tag under which kind is encoded by this scheme.
func (s *CodedIndexScheme) TagOf(kind TableKind) (uint32, bool) {
	for i, k := range s.tables {
		if k == kind {
			return uint32(i), true
		}
	}
	return 0, false
}

// Decode unpacks a raw coded index. ok is false when the value denotes no
// row, either because of a null row index or an unmapped tag.
func (s *CodedIndexScheme) Decode(raw uint32) (kind TableKind, row int, ok bool) {
	tag := raw & (1<<s.TagBits - 1)
	row = int(raw>>s.TagBits) - 1
	kind, ok = s.Table(tag)
	if !ok || row < 0 {
		return 0, -1, false
	}
	return kind, row, true
}

// Encode packs a zero-based row index and a tag. It is the inverse of Decode.
func (s *CodedIndexScheme) Encode(row int, tag uint32) uint32 {
	return uint32(row+1)<<s.TagBits | tag
}

// EncodeRow packs a row of the given table. Panics if the scheme cannot
// reference kind.
func (s *CodedIndexScheme) EncodeRow(kind TableKind, row int) uint32 {
	tag, ok := s.TagOf(kind)
	if !ok {
		panic(fmt.Sprintf("coded index %s cannot reference %v", s.Name, kind))
	}
	return s.Encode(row, tag)
}

func (s *CodedIndexScheme) width(rowCounts *[numTableKinds]uint32) int {
	limit := uint32(1) << (16 - s.TagBits)
	for _, k := range s.tables {
		if k != noTable && rowCounts[k] >= limit {
			return 4
		}
	}
	return 2
}

// CodedIndex is a raw coded index value together with its scheme. The zero
// value and any value with a null row or unmapped tag denote no row.
type CodedIndex struct {
	Scheme *CodedIndexScheme
	Raw    uint32
}

// IsNone reports whether the coded index points at no row.
func (ci CodedIndex) IsNone() bool {
	if ci.Scheme == nil {
		return true
	}
	_, _, ok := ci.Scheme.Decode(ci.Raw)
	return !ok
}

// Tag returns the raw tag bits.
func (ci CodedIndex) Tag() uint32 {
	if ci.Scheme == nil {
		return 0
	}
	return ci.Raw & (1<<ci.Scheme.TagBits - 1)
}

// Target returns the referenced table and zero-based row index.
func (ci CodedIndex) Target() (kind TableKind, row int, ok bool) {
	if ci.Scheme == nil {
		return 0, -1, false
	}
	return ci.Scheme.Decode(ci.Raw)
}

// Row materializes the referenced row in db. Returns ErrNoTarget for a null
// coded index and a RangeError if the row does not exist.
func (ci CodedIndex) Row(db *Database) (Row, error) {
	kind, row, ok := ci.Target()
	if !ok {
		return Row{}, ErrNoTarget
	}
	return db.Row(kind, row)
}

func (ci CodedIndex) String() string {
	kind, row, ok := ci.Target()
	if !ok {
		return "none"
	}
	return fmt.Sprintf("%v[%d]", kind, row)
}
