package clrmeta

// TypeAttributes are the flags of a TypeDef row.
type TypeAttributes uint32

const (
	TypeVisibilityMask    TypeAttributes = 0x00000007
	TypeNotPublic         TypeAttributes = 0x00000000
	TypePublic            TypeAttributes = 0x00000001
	TypeNestedPublic      TypeAttributes = 0x00000002
	TypeNestedPrivate     TypeAttributes = 0x00000003
	TypeNestedFamily      TypeAttributes = 0x00000004
	TypeNestedAssembly    TypeAttributes = 0x00000005
	TypeNestedFamANDAssem TypeAttributes = 0x00000006
	TypeNestedFamORAssem  TypeAttributes = 0x00000007
	TypeInterface         TypeAttributes = 0x00000020
	TypeAbstract          TypeAttributes = 0x00000080
	TypeSealed            TypeAttributes = 0x00000100
	TypeSpecialName       TypeAttributes = 0x00000400
	TypeImport            TypeAttributes = 0x00001000
	TypeWindowsRuntime    TypeAttributes = 0x00004000
)

func (a TypeAttributes) IsPublic() bool         { return a&TypeVisibilityMask == TypePublic }
func (a TypeAttributes) IsNested() bool         { return a&TypeVisibilityMask >= TypeNestedPublic }
func (a TypeAttributes) IsInterface() bool      { return a&TypeInterface != 0 }
func (a TypeAttributes) IsAbstract() bool       { return a&TypeAbstract != 0 }
func (a TypeAttributes) IsSealed() bool         { return a&TypeSealed != 0 }
func (a TypeAttributes) IsWindowsRuntime() bool { return a&TypeWindowsRuntime != 0 }

// FieldAttributes are the flags of a Field row.
type FieldAttributes uint16

const (
	FieldAccessMask      FieldAttributes = 0x0007
	FieldPrivate         FieldAttributes = 0x0001
	FieldPublic          FieldAttributes = 0x0006
	FieldStatic          FieldAttributes = 0x0010
	FieldInitOnly        FieldAttributes = 0x0020
	FieldLiteral         FieldAttributes = 0x0040
	FieldSpecialName     FieldAttributes = 0x0200
	FieldRTSpecialName   FieldAttributes = 0x0400
	FieldHasFieldMarshal FieldAttributes = 0x1000
	FieldHasDefault      FieldAttributes = 0x8000
)

func (a FieldAttributes) IsStatic() bool  { return a&FieldStatic != 0 }
func (a FieldAttributes) IsLiteral() bool { return a&FieldLiteral != 0 }
func (a FieldAttributes) IsPublic() bool  { return a&FieldAccessMask == FieldPublic }

// MethodAttributes are the flags of a MethodDef row.
type MethodAttributes uint16

const (
	MethodAccessMask    MethodAttributes = 0x0007
	MethodPublic        MethodAttributes = 0x0006
	MethodStatic        MethodAttributes = 0x0010
	MethodFinal         MethodAttributes = 0x0020
	MethodVirtual       MethodAttributes = 0x0040
	MethodHideBySig     MethodAttributes = 0x0080
	MethodNewSlot       MethodAttributes = 0x0100
	MethodAbstract      MethodAttributes = 0x0400
	MethodSpecialName   MethodAttributes = 0x0800
	MethodPInvokeImpl   MethodAttributes = 0x2000
	MethodRTSpecialName MethodAttributes = 0x1000
)

func (a MethodAttributes) IsStatic() bool      { return a&MethodStatic != 0 }
func (a MethodAttributes) IsVirtual() bool     { return a&MethodVirtual != 0 }
func (a MethodAttributes) IsAbstract() bool    { return a&MethodAbstract != 0 }
func (a MethodAttributes) IsSpecialName() bool { return a&MethodSpecialName != 0 }
func (a MethodAttributes) IsPublic() bool      { return a&MethodAccessMask == MethodPublic }

// ParamAttributes are the flags of a Param row.
type ParamAttributes uint16

const (
	ParamIn         ParamAttributes = 0x0001
	ParamOut        ParamAttributes = 0x0002
	ParamOptional   ParamAttributes = 0x0010
	ParamHasDefault ParamAttributes = 0x1000
)

func (a ParamAttributes) IsIn() bool  { return a&ParamIn != 0 }
func (a ParamAttributes) IsOut() bool { return a&ParamOut != 0 }

// MethodSemanticsAttributes describe the role of a method for a property or
// an event.
type MethodSemanticsAttributes uint16

const (
	SemanticsSetter   MethodSemanticsAttributes = 0x0001
	SemanticsGetter   MethodSemanticsAttributes = 0x0002
	SemanticsOther    MethodSemanticsAttributes = 0x0004
	SemanticsAddOn    MethodSemanticsAttributes = 0x0008
	SemanticsRemoveOn MethodSemanticsAttributes = 0x0010
	SemanticsFire     MethodSemanticsAttributes = 0x0020
)

func (a MethodSemanticsAttributes) String() string {
	switch a {
	case SemanticsSetter:
		return "setter"
	case SemanticsGetter:
		return "getter"
	case SemanticsOther:
		return "other"
	case SemanticsAddOn:
		return "addon"
	case SemanticsRemoveOn:
		return "removeon"
	case SemanticsFire:
		return "fire"
	default:
		return "semantics(0x" + hexByte(byte(a>>8)) + hexByte(byte(a)) + ")"
	}
}
