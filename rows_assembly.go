package clrmeta

import "fmt"

const (
	customAttributeParent = iota
	customAttributeType
	customAttributeValue
)

// CustomAttribute attaches an attribute instance to a row.
type CustomAttribute struct{ Row }

func (c CustomAttribute) Parent() CodedIndex         { return c.coded(customAttributeParent) }
func (c CustomAttribute) Type() CodedIndex           { return c.coded(customAttributeType) }
func (c CustomAttribute) ValueBlob() ([]byte, error) { return c.blob(customAttributeValue) }

// Constructor returns the signature of the attribute's constructor, which
// is either a MethodDef or a MemberRef.
func (c CustomAttribute) Constructor() (MethodDefSig, error) {
	row, err := c.Type().Row(c.db)
	if err != nil {
		return MethodDefSig{}, c.colErr(customAttributeType, err)
	}
	switch row.kind {
	case TableMethodDef:
		return MethodDef{row}.Signature()
	case TableMemberRef:
		return MemberRef{row}.MethodSignature()
	default:
		return MethodDefSig{}, c.colErr(customAttributeType, fmt.Errorf("unexpected constructor %v", row))
	}
}

// TypeName returns the namespace and name of the attribute type.
func (c CustomAttribute) TypeName() (namespace, name string, err error) {
	row, err := c.Type().Row(c.db)
	if err != nil {
		return "", "", c.colErr(customAttributeType, err)
	}
	var owner CodedIndex
	switch row.kind {
	case TableMethodDef:
		td, err := MethodDef{row}.Parent()
		if err != nil {
			return "", "", err
		}
		return td.Name()
	case TableMemberRef:
		owner = MemberRef{row}.Class()
	default:
		return "", "", c.colErr(customAttributeType, fmt.Errorf("unexpected constructor %v", row))
	}
	return c.db.TypeNameOf(owner)
}

// Value decodes the attribute arguments.
func (c CustomAttribute) Value() (CustomAttributeSig, error) {
	ctor, err := c.Constructor()
	if err != nil {
		return CustomAttributeSig{}, err
	}
	b, err := c.ValueBlob()
	if err != nil {
		return CustomAttributeSig{}, err
	}
	sig, err := c.db.DecodeCustomAttributeSig(b, ctor)
	if err != nil {
		return sig, c.colErr(customAttributeValue, err)
	}
	return sig, nil
}

// Version is a four-part assembly version.
type Version struct {
	Major, Minor, Build, Revision uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

const (
	assemblyHashAlgID = iota
	assemblyMajorVersion
	assemblyMinorVersion
	assemblyBuildNumber
	assemblyRevisionNumber
	assemblyFlags
	assemblyPublicKey
	assemblyName
	assemblyCulture
)

// Assembly is the manifest of the current assembly.
type Assembly struct{ Row }

func (a Assembly) HashAlgID() uint32          { return a.u32(assemblyHashAlgID) }
func (a Assembly) Flags() uint32              { return a.u32(assemblyFlags) }
func (a Assembly) PublicKey() ([]byte, error) { return a.blob(assemblyPublicKey) }
func (a Assembly) Name() (string, error)      { return a.str(assemblyName) }
func (a Assembly) Culture() (string, error)   { return a.str(assemblyCulture) }

func (a Assembly) Version() Version {
	return Version{
		uint16(a.u32(assemblyMajorVersion)),
		uint16(a.u32(assemblyMinorVersion)),
		uint16(a.u32(assemblyBuildNumber)),
		uint16(a.u32(assemblyRevisionNumber)),
	}
}

func (a Assembly) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](a.Row, TableCustomAttribute, customAttributeParent)
}

const (
	assemblyRefMajorVersion = iota
	assemblyRefMinorVersion
	assemblyRefBuildNumber
	assemblyRefRevisionNumber
	assemblyRefFlags
	assemblyRefPublicKeyOrToken
	assemblyRefName
	assemblyRefCulture
	assemblyRefHashValue
)

// AssemblyRef references another assembly.
type AssemblyRef struct{ Row }

func (a AssemblyRef) Flags() uint32                     { return a.u32(assemblyRefFlags) }
func (a AssemblyRef) PublicKeyOrToken() ([]byte, error) { return a.blob(assemblyRefPublicKeyOrToken) }
func (a AssemblyRef) Name() (string, error)             { return a.str(assemblyRefName) }
func (a AssemblyRef) Culture() (string, error)          { return a.str(assemblyRefCulture) }
func (a AssemblyRef) HashValue() ([]byte, error)        { return a.blob(assemblyRefHashValue) }

func (a AssemblyRef) Version() Version {
	return Version{
		uint16(a.u32(assemblyRefMajorVersion)),
		uint16(a.u32(assemblyRefMinorVersion)),
		uint16(a.u32(assemblyRefBuildNumber)),
		uint16(a.u32(assemblyRefRevisionNumber)),
	}
}

func (a AssemblyRef) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](a.Row, TableCustomAttribute, customAttributeParent)
}

const (
	fileFlags = iota
	fileName
	fileHashValue
)

// File is a file of a multi-file assembly.
type File struct{ Row }

func (f File) Flags() uint32              { return f.u32(fileFlags) }
func (f File) Name() (string, error)      { return f.str(fileName) }
func (f File) HashValue() ([]byte, error) { return f.blob(fileHashValue) }

const (
	exportedTypeFlags = iota
	exportedTypeTypeDefID
	exportedTypeTypeName
	exportedTypeTypeNamespace
	exportedTypeImplementation
)

// ExportedType is a type forwarded to or exported from another module.
type ExportedType struct{ Row }

func (e ExportedType) Flags() TypeAttributes          { return TypeAttributes(e.u32(exportedTypeFlags)) }
func (e ExportedType) TypeDefID() uint32              { return e.u32(exportedTypeTypeDefID) }
func (e ExportedType) TypeName() (string, error)      { return e.str(exportedTypeTypeName) }
func (e ExportedType) TypeNamespace() (string, error) { return e.str(exportedTypeTypeNamespace) }
func (e ExportedType) Implementation() CodedIndex     { return e.coded(exportedTypeImplementation) }

const (
	manifestResourceOffset = iota
	manifestResourceFlags
	manifestResourceName
	manifestResourceImplementation
)

// ManifestResource is a resource embedded in or linked from the assembly.
type ManifestResource struct{ Row }

func (m ManifestResource) Offset() uint32             { return m.u32(manifestResourceOffset) }
func (m ManifestResource) Flags() uint32              { return m.u32(manifestResourceFlags) }
func (m ManifestResource) Name() (string, error)      { return m.str(manifestResourceName) }
func (m ManifestResource) Implementation() CodedIndex { return m.coded(manifestResourceImplementation) }

// View returns r as its table-specific view type. Tables without a dedicated
// view (pointer tables, edit-and-continue logs, OS and processor tables) are
// returned as Record.
func (r Row) View() RowView {
	switch r.kind {
	case TableModule:
		return Module{r}
	case TableTypeRef:
		return TypeRef{r}
	case TableTypeDef:
		return TypeDef{r}
	case TableField:
		return Field{r}
	case TableMethodDef:
		return MethodDef{r}
	case TableParam:
		return Param{r}
	case TableInterfaceImpl:
		return InterfaceImpl{r}
	case TableMemberRef:
		return MemberRef{r}
	case TableConstant:
		return Constant{r}
	case TableCustomAttribute:
		return CustomAttribute{r}
	case TableFieldMarshal:
		return FieldMarshal{r}
	case TableDeclSecurity:
		return DeclSecurity{r}
	case TableClassLayout:
		return ClassLayout{r}
	case TableFieldLayout:
		return FieldLayout{r}
	case TableStandAloneSig:
		return StandAloneSig{r}
	case TableEventMap:
		return EventMap{r}
	case TableEvent:
		return Event{r}
	case TablePropertyMap:
		return PropertyMap{r}
	case TableProperty:
		return Property{r}
	case TableMethodSemantics:
		return MethodSemantics{r}
	case TableMethodImpl:
		return MethodImpl{r}
	case TableModuleRef:
		return ModuleRef{r}
	case TableTypeSpec:
		return TypeSpec{r}
	case TableImplMap:
		return ImplMap{r}
	case TableFieldRVA:
		return FieldRVA{r}
	case TableAssembly:
		return Assembly{r}
	case TableAssemblyRef:
		return AssemblyRef{r}
	case TableFile:
		return File{r}
	case TableExportedType:
		return ExportedType{r}
	case TableManifestResource:
		return ManifestResource{r}
	case TableNestedClass:
		return NestedClass{r}
	case TableGenericParam:
		return GenericParam{r}
	case TableMethodSpec:
		return MethodSpec{r}
	case TableGenericParamConstraint:
		return GenericParamConstraint{r}
	default:
		return Record{r}
	}
}
