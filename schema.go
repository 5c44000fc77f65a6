package clrmeta

// TableKind identifies one of the metadata tables. Values match the table
// numbers used by the format (and by metadata tokens).
type TableKind uint8

const (
	TableModule                 TableKind = 0x00
	TableTypeRef                TableKind = 0x01
	TableTypeDef                TableKind = 0x02
	TableFieldPtr               TableKind = 0x03
	TableField                  TableKind = 0x04
	TableMethodPtr              TableKind = 0x05
	TableMethodDef              TableKind = 0x06
	TableParamPtr               TableKind = 0x07
	TableParam                  TableKind = 0x08
	TableInterfaceImpl          TableKind = 0x09
	TableMemberRef              TableKind = 0x0A
	TableConstant               TableKind = 0x0B
	TableCustomAttribute        TableKind = 0x0C
	TableFieldMarshal           TableKind = 0x0D
	TableDeclSecurity           TableKind = 0x0E
	TableClassLayout            TableKind = 0x0F
	TableFieldLayout            TableKind = 0x10
	TableStandAloneSig          TableKind = 0x11
	TableEventMap               TableKind = 0x12
	TableEventPtr               TableKind = 0x13
	TableEvent                  TableKind = 0x14
	TablePropertyMap            TableKind = 0x15
	TablePropertyPtr            TableKind = 0x16
	TableProperty               TableKind = 0x17
	TableMethodSemantics        TableKind = 0x18
	TableMethodImpl             TableKind = 0x19
	TableModuleRef              TableKind = 0x1A
	TableTypeSpec               TableKind = 0x1B
	TableImplMap                TableKind = 0x1C
	TableFieldRVA               TableKind = 0x1D
	TableEncLog                 TableKind = 0x1E
	TableEncMap                 TableKind = 0x1F
	TableAssembly               TableKind = 0x20
	TableAssemblyProcessor      TableKind = 0x21
	TableAssemblyOS             TableKind = 0x22
	TableAssemblyRef            TableKind = 0x23
	TableAssemblyRefProcessor   TableKind = 0x24
	TableAssemblyRefOS          TableKind = 0x25
	TableFile                   TableKind = 0x26
	TableExportedType           TableKind = 0x27
	TableManifestResource       TableKind = 0x28
	TableNestedClass            TableKind = 0x29
	TableGenericParam           TableKind = 0x2A
	TableMethodSpec             TableKind = 0x2B
	TableGenericParamConstraint TableKind = 0x2C

	numTableKinds = 0x2D
)

var tableNames = [numTableKinds]string{
	"Module", "TypeRef", "TypeDef", "FieldPtr", "Field", "MethodPtr", "MethodDef",
	"ParamPtr", "Param", "InterfaceImpl", "MemberRef", "Constant", "CustomAttribute",
	"FieldMarshal", "DeclSecurity", "ClassLayout", "FieldLayout", "StandAloneSig",
	"EventMap", "EventPtr", "Event", "PropertyMap", "PropertyPtr", "Property",
	"MethodSemantics", "MethodImpl", "ModuleRef", "TypeSpec", "ImplMap", "FieldRVA",
	"EncLog", "EncMap", "Assembly", "AssemblyProcessor", "AssemblyOS", "AssemblyRef",
	"AssemblyRefProcessor", "AssemblyRefOS", "File", "ExportedType", "ManifestResource",
	"NestedClass", "GenericParam", "MethodSpec", "GenericParamConstraint",
}

func (k TableKind) String() string {
	if k.Valid() {
		return tableNames[k]
	}
	return "Table(0x" + hexByte(byte(k)) + ")"
}

// Valid reports whether k names a known table.
func (k TableKind) Valid() bool {
	return k < numTableKinds
}

// TableKinds returns all known table kinds in table-number order.
func TableKinds() []TableKind {
	kinds := make([]TableKind, numTableKinds)
	for i := range kinds {
		kinds[i] = TableKind(i)
	}
	return kinds
}

// ParseTableKind looks up a table kind by its name, e.g. "TypeDef".
func ParseTableKind(name string) (TableKind, bool) {
	for i, n := range tableNames {
		if n == name {
			return TableKind(i), true
		}
	}
	return 0, false
}

// ColumnType describes how a column's raw value is interpreted.
type ColumnType uint8

const (
	ColumnFixed2 ColumnType = iota
	ColumnFixed4
	ColumnString
	ColumnGUID
	ColumnBlob
	ColumnIndex
	ColumnCodedIndex
)

func (t ColumnType) String() string {
	switch t {
	case ColumnFixed2:
		return "u16"
	case ColumnFixed4:
		return "u32"
	case ColumnString:
		return "string"
	case ColumnGUID:
		return "guid"
	case ColumnBlob:
		return "blob"
	case ColumnIndex:
		return "index"
	case ColumnCodedIndex:
		return "coded"
	default:
		return "unknown"
	}
}

type columnSpec struct {
	name   string
	typ    ColumnType
	target TableKind
	scheme *CodedIndexScheme
}

func fixed2(name string) columnSpec { return columnSpec{name: name, typ: ColumnFixed2} }
func fixed4(name string) columnSpec { return columnSpec{name: name, typ: ColumnFixed4} }
func str(name string) columnSpec    { return columnSpec{name: name, typ: ColumnString} }
func guid(name string) columnSpec   { return columnSpec{name: name, typ: ColumnGUID} }
func blob(name string) columnSpec   { return columnSpec{name: name, typ: ColumnBlob} }

func index(name string, target TableKind) columnSpec {
	return columnSpec{name: name, typ: ColumnIndex, target: target}
}

func coded(name string, scheme *CodedIndexScheme) columnSpec {
	return columnSpec{name: name, typ: ColumnCodedIndex, scheme: scheme}
}

// tableSchemas describes the columns of every table, in storage order.
var tableSchemas = [numTableKinds][]columnSpec{
	TableModule:    {fixed2("Generation"), str("Name"), guid("Mvid"), guid("EncId"), guid("EncBaseId")},
	TableTypeRef:   {coded("ResolutionScope", ResolutionScope), str("TypeName"), str("TypeNamespace")},
	TableTypeDef:   {fixed4("Flags"), str("TypeName"), str("TypeNamespace"), coded("Extends", TypeDefOrRef), index("FieldList", TableField), index("MethodList", TableMethodDef)},
	TableFieldPtr:  {index("Field", TableField)},
	TableField:     {fixed2("Flags"), str("Name"), blob("Signature")},
	TableMethodPtr: {index("Method", TableMethodDef)},
	TableMethodDef: {fixed4("RVA"), fixed2("ImplFlags"), fixed2("Flags"), str("Name"), blob("Signature"), index("ParamList", TableParam)},
	TableParamPtr:  {index("Param", TableParam)},
	TableParam:     {fixed2("Flags"), fixed2("Sequence"), str("Name")},

	TableInterfaceImpl:   {index("Class", TableTypeDef), coded("Interface", TypeDefOrRef)},
	TableMemberRef:       {coded("Class", MemberRefParent), str("Name"), blob("Signature")},
	TableConstant:        {fixed2("Type"), coded("Parent", HasConstant), blob("Value")},
	TableCustomAttribute: {coded("Parent", HasCustomAttribute), coded("Type", CustomAttributeType), blob("Value")},
	TableFieldMarshal:    {coded("Parent", HasFieldMarshal), blob("NativeType")},
	TableDeclSecurity:    {fixed2("Action"), coded("Parent", HasDeclSecurity), blob("PermissionSet")},
	TableClassLayout:     {fixed2("PackingSize"), fixed4("ClassSize"), index("Parent", TableTypeDef)},
	TableFieldLayout:     {fixed4("Offset"), index("Field", TableField)},
	TableStandAloneSig:   {blob("Signature")},
	TableEventMap:        {index("Parent", TableTypeDef), index("EventList", TableEvent)},
	TableEventPtr:        {index("Event", TableEvent)},
	TableEvent:           {fixed2("EventFlags"), str("Name"), coded("EventType", TypeDefOrRef)},
	TablePropertyMap:     {index("Parent", TableTypeDef), index("PropertyList", TableProperty)},
	TablePropertyPtr:     {index("Property", TableProperty)},
	TableProperty:        {fixed2("Flags"), str("Name"), blob("Type")},
	TableMethodSemantics: {fixed2("Semantics"), index("Method", TableMethodDef), coded("Association", HasSemantics)},
	TableMethodImpl:      {index("Class", TableTypeDef), coded("MethodBody", MethodDefOrRef), coded("MethodDeclaration", MethodDefOrRef)},
	TableModuleRef:       {str("Name")},
	TableTypeSpec:        {blob("Signature")},
	TableImplMap:         {fixed2("MappingFlags"), coded("MemberForwarded", MemberForwarded), str("ImportName"), index("ImportScope", TableModuleRef)},
	TableFieldRVA:        {fixed4("RVA"), index("Field", TableField)},
	TableEncLog:          {fixed4("Token"), fixed4("FuncCode")},
	TableEncMap:          {fixed4("Token")},

	TableAssembly:             {fixed4("HashAlgId"), fixed2("MajorVersion"), fixed2("MinorVersion"), fixed2("BuildNumber"), fixed2("RevisionNumber"), fixed4("Flags"), blob("PublicKey"), str("Name"), str("Culture")},
	TableAssemblyProcessor:    {fixed4("Processor")},
	TableAssemblyOS:           {fixed4("OSPlatformID"), fixed4("OSMajorVersion"), fixed4("OSMinorVersion")},
	TableAssemblyRef:          {fixed2("MajorVersion"), fixed2("MinorVersion"), fixed2("BuildNumber"), fixed2("RevisionNumber"), fixed4("Flags"), blob("PublicKeyOrToken"), str("Name"), str("Culture"), blob("HashValue")},
	TableAssemblyRefProcessor: {fixed4("Processor"), index("AssemblyRef", TableAssemblyRef)},
	TableAssemblyRefOS:        {fixed4("OSPlatformID"), fixed4("OSMajorVersion"), fixed4("OSMinorVersion"), index("AssemblyRef", TableAssemblyRef)},
	TableFile:                 {fixed4("Flags"), str("Name"), blob("HashValue")},
	TableExportedType:         {fixed4("Flags"), fixed4("TypeDefId"), str("TypeName"), str("TypeNamespace"), coded("Implementation", Implementation)},
	TableManifestResource:     {fixed4("Offset"), fixed4("Flags"), str("Name"), coded("Implementation", Implementation)},
	TableNestedClass:          {index("NestedClass", TableTypeDef), index("EnclosingClass", TableTypeDef)},
	TableGenericParam:         {fixed2("Number"), fixed2("Flags"), coded("Owner", TypeOrMethodDef), str("Name")},
	TableMethodSpec:           {coded("Method", MethodDefOrRef), blob("Instantiation")},

	TableGenericParamConstraint: {index("Owner", TableGenericParam), coded("Constraint", TypeDefOrRef)},
}

// HeapSizes flags from the table stream header.
const (
	HeapStringsWide = 0x01
	HeapGUIDWide    = 0x02
	HeapBlobWide    = 0x04
	HeapExtraData   = 0x40 // an extra dword follows the row counts
)

// Column is a column of a loaded table, with its resolved width.
type Column struct {
	Name   string
	Type   ColumnType
	Offset int
	Width  int

	// Target is the referenced table of a ColumnIndex column.
	Target TableKind

	// Scheme is the coding of a ColumnCodedIndex column.
	Scheme *CodedIndexScheme
}

// Layout computes the columns and row size of kind, given row counts indexed
// by TableKind (missing entries count as empty tables) and HeapSizes flags.
func Layout(kind TableKind, rowCounts []uint32, heapSizes byte) ([]Column, int) {
	var rc [numTableKinds]uint32
	copy(rc[:], rowCounts)
	return layoutColumns(kind, &rc, heapSizes)
}

// layoutColumns computes column offsets and widths for kind given the row
// counts of all tables and the heap size flags.
func layoutColumns(kind TableKind, rowCounts *[numTableKinds]uint32, heapSizes byte) ([]Column, int) {
	specs := tableSchemas[kind]
	cols := make([]Column, len(specs))
	off := 0
	for i, s := range specs {
		w := 2
		switch s.typ {
		case ColumnFixed4:
			w = 4
		case ColumnString:
			if heapSizes&HeapStringsWide != 0 {
				w = 4
			}
		case ColumnGUID:
			if heapSizes&HeapGUIDWide != 0 {
				w = 4
			}
		case ColumnBlob:
			if heapSizes&HeapBlobWide != 0 {
				w = 4
			}
		case ColumnIndex:
			if rowCounts[s.target] > 0xFFFF {
				w = 4
			}
		case ColumnCodedIndex:
			w = s.scheme.width(rowCounts)
		}
		cols[i] = Column{
			Name:   s.name,
			Type:   s.typ,
			Offset: off,
			Width:  w,
			Target: s.target,
			Scheme: s.scheme,
		}
		off += w
	}
	return cols, off
}

const hexDigits = "0123456789abcdef"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xF]})
}
