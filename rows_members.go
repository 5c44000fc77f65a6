package clrmeta

const (
	fieldFlags = iota
	fieldName
	fieldSignature
)

// Field is a field definition.
type Field struct{ Row }

func (f Field) Flags() FieldAttributes         { return FieldAttributes(f.u32(fieldFlags)) }
func (f Field) Name() (string, error)          { return f.str(fieldName) }
func (f Field) SignatureBlob() ([]byte, error) { return f.blob(fieldSignature) }

func (f Field) Signature() (FieldSig, error) {
	b, err := f.SignatureBlob()
	if err != nil {
		return FieldSig{}, err
	}
	sig, err := DecodeFieldSig(b)
	if err != nil {
		return sig, f.colErr(fieldSignature, err)
	}
	return sig, nil
}

// Parent returns the type that owns f.
func (f Field) Parent() (TypeDef, error) {
	return parent[TypeDef](f.Row, TableTypeDef, typeDefFieldList)
}

// Constant returns the default value of f, if any.
func (f Field) Constant() (Constant, bool) {
	return firstOf(codedChildren[Constant](f.Row, TableConstant, constantParent))
}

func (f Field) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](f.Row, TableCustomAttribute, customAttributeParent)
}

func (f Field) Marshal() (FieldMarshal, bool) {
	return firstOf(codedChildren[FieldMarshal](f.Row, TableFieldMarshal, fieldMarshalParent))
}

func (f Field) Layout() (FieldLayout, bool) {
	return firstOf(children[FieldLayout](f.db, TableFieldLayout, fieldLayoutField, uint32(f.index+1)))
}

func (f Field) RVA() (FieldRVA, bool) {
	return firstOf(children[FieldRVA](f.db, TableFieldRVA, fieldRVAField, uint32(f.index+1)))
}

func firstOf[V View](rg Range[V]) (V, bool) {
	if rg.Empty() {
		var zero V
		return zero, false
	}
	return rg.At(0), true
}

const (
	methodDefRVA = iota
	methodDefImplFlags
	methodDefFlags
	methodDefName
	methodDefSignature
	methodDefParamList
)

// MethodDef is a method definition.
type MethodDef struct{ Row }

func (m MethodDef) RVA() uint32                    { return m.u32(methodDefRVA) }
func (m MethodDef) ImplFlags() uint16              { return uint16(m.u32(methodDefImplFlags)) }
func (m MethodDef) Flags() MethodAttributes        { return MethodAttributes(m.u32(methodDefFlags)) }
func (m MethodDef) Name() (string, error)          { return m.str(methodDefName) }
func (m MethodDef) SignatureBlob() ([]byte, error) { return m.blob(methodDefSignature) }

func (m MethodDef) Signature() (MethodDefSig, error) {
	b, err := m.SignatureBlob()
	if err != nil {
		return MethodDefSig{}, err
	}
	sig, err := DecodeMethodDefSig(b)
	if err != nil {
		return sig, m.colErr(methodDefSignature, err)
	}
	return sig, nil
}

func (m MethodDef) ParamList() (Range[Param], error) {
	return list[Param](m.Row, methodDefParamList)
}

// Parent returns the type that owns m.
func (m MethodDef) Parent() (TypeDef, error) {
	return parent[TypeDef](m.Row, TableTypeDef, typeDefMethodList)
}

func (m MethodDef) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](m.Row, TableCustomAttribute, customAttributeParent)
}

func (m MethodDef) GenericParams() Range[GenericParam] {
	return codedChildren[GenericParam](m.Row, TableGenericParam, genericParamOwner)
}

// ImplMap returns the P/Invoke mapping of m, if any.
func (m MethodDef) ImplMap() (ImplMap, bool) {
	return firstOf(codedChildren[ImplMap](m.Row, TableImplMap, implMapMemberForwarded))
}

// Semantics returns the property and event accessor roles of m. The
// MethodSemantics table is sorted by association, so this is a linear scan.
func (m MethodDef) Semantics() []MethodSemantics {
	var out []MethodSemantics
	tbl := &m.db.tables[TableMethodSemantics]
	for i := range tbl.rowCount {
		if tbl.value(i, methodSemanticsMethod) == uint32(m.index+1) {
			out = append(out, MethodSemantics{Row{m.db, TableMethodSemantics, i}})
		}
	}
	return out
}

const (
	paramFlags = iota
	paramSequence
	paramName
)

// Param describes a method parameter; sequence 0 is the return value.
type Param struct{ Row }

func (p Param) Flags() ParamAttributes { return ParamAttributes(p.u32(paramFlags)) }
func (p Param) Sequence() uint16       { return uint16(p.u32(paramSequence)) }
func (p Param) Name() (string, error)  { return p.str(paramName) }

// Parent returns the method that owns p.
func (p Param) Parent() (MethodDef, error) {
	return parent[MethodDef](p.Row, TableMethodDef, methodDefParamList)
}

func (p Param) Constant() (Constant, bool) {
	return firstOf(codedChildren[Constant](p.Row, TableConstant, constantParent))
}

func (p Param) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](p.Row, TableCustomAttribute, customAttributeParent)
}

const (
	memberRefClass = iota
	memberRefName
	memberRefSignature
)

// MemberRef references a field or method of another type.
type MemberRef struct{ Row }

func (m MemberRef) Class() CodedIndex              { return m.coded(memberRefClass) }
func (m MemberRef) Name() (string, error)          { return m.str(memberRefName) }
func (m MemberRef) SignatureBlob() ([]byte, error) { return m.blob(memberRefSignature) }

// IsField reports whether m references a field rather than a method.
func (m MemberRef) IsField() (bool, error) {
	b, err := m.SignatureBlob()
	if err != nil {
		return false, err
	}
	return len(b) > 0 && CallingConvention(b[0]).Kind() == CallField, nil
}

func (m MemberRef) MethodSignature() (MethodDefSig, error) {
	b, err := m.SignatureBlob()
	if err != nil {
		return MethodDefSig{}, err
	}
	sig, err := DecodeMethodDefSig(b)
	if err != nil {
		return sig, m.colErr(memberRefSignature, err)
	}
	return sig, nil
}

func (m MemberRef) FieldSignature() (FieldSig, error) {
	b, err := m.SignatureBlob()
	if err != nil {
		return FieldSig{}, err
	}
	sig, err := DecodeFieldSig(b)
	if err != nil {
		return sig, m.colErr(memberRefSignature, err)
	}
	return sig, nil
}

func (m MemberRef) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](m.Row, TableCustomAttribute, customAttributeParent)
}

const (
	constantType = iota
	constantParent
	constantValue
)

// Constant is the compile-time value of a field, parameter or property.
type Constant struct{ Row }

func (c Constant) Type() ElementType          { return ElementType(c.u32(constantType) & 0xFF) }
func (c Constant) Parent() CodedIndex         { return c.coded(constantParent) }
func (c Constant) ValueBlob() ([]byte, error) { return c.blob(constantValue) }

func (c Constant) Value() (ConstantValue, error) {
	b, err := c.ValueBlob()
	if err != nil {
		return ConstantValue{}, err
	}
	cv, err := DecodeConstant(c.Type(), b)
	if err != nil {
		return cv, c.colErr(constantValue, err)
	}
	return cv, nil
}

const (
	fieldMarshalParent = iota
	fieldMarshalNativeType
)

// FieldMarshal describes how a field or parameter is marshaled.
type FieldMarshal struct{ Row }

func (f FieldMarshal) Parent() CodedIndex          { return f.coded(fieldMarshalParent) }
func (f FieldMarshal) NativeType() ([]byte, error) { return f.blob(fieldMarshalNativeType) }

const (
	declSecurityAction = iota
	declSecurityParent
	declSecurityPermissionSet
)

// DeclSecurity attaches a security declaration to a type, method or assembly.
type DeclSecurity struct{ Row }

func (d DeclSecurity) Action() uint16                 { return uint16(d.u32(declSecurityAction)) }
func (d DeclSecurity) Parent() CodedIndex             { return d.coded(declSecurityParent) }
func (d DeclSecurity) PermissionSet() ([]byte, error) { return d.blob(declSecurityPermissionSet) }

const (
	fieldLayoutOffset = iota
	fieldLayoutField
)

// FieldLayout gives the explicit offset of a field.
type FieldLayout struct{ Row }

func (f FieldLayout) Offset() uint32 { return f.u32(fieldLayoutOffset) }

func (f FieldLayout) Field() (Field, error) {
	r, err := f.target(fieldLayoutField)
	return Field{r}, err
}

const (
	fieldRVARVA = iota
	fieldRVAField
)

// FieldRVA gives the initial data location of a field.
type FieldRVA struct{ Row }

func (f FieldRVA) RVA() uint32 { return f.u32(fieldRVARVA) }

func (f FieldRVA) Field() (Field, error) {
	r, err := f.target(fieldRVAField)
	return Field{r}, err
}

const standAloneSigSignature = 0

// StandAloneSig holds a signature not attached to a member, e.g. locals.
type StandAloneSig struct{ Row }

func (s StandAloneSig) SignatureBlob() ([]byte, error) { return s.blob(standAloneSigSignature) }

const (
	eventMapParent = iota
	eventMapEventList
)

// EventMap links a type to its events.
type EventMap struct{ Row }

func (e EventMap) Parent() (TypeDef, error) {
	r, err := e.target(eventMapParent)
	return TypeDef{r}, err
}

func (e EventMap) EventList() (Range[Event], error) {
	return list[Event](e.Row, eventMapEventList)
}

const (
	eventFlags = iota
	eventName
	eventEventType
)

// Event is an event definition.
type Event struct{ Row }

func (e Event) Flags() uint16         { return uint16(e.u32(eventFlags)) }
func (e Event) Name() (string, error) { return e.str(eventName) }
func (e Event) EventType() CodedIndex { return e.coded(eventEventType) }

// Parent returns the type that declares e.
func (e Event) Parent() (TypeDef, error) {
	m, err := parent[EventMap](e.Row, TableEventMap, eventMapEventList)
	if err != nil {
		return TypeDef{}, err
	}
	return m.Parent()
}

func (e Event) MethodSemantics() Range[MethodSemantics] {
	return codedChildren[MethodSemantics](e.Row, TableMethodSemantics, methodSemanticsAssociation)
}

func (e Event) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](e.Row, TableCustomAttribute, customAttributeParent)
}

const (
	propertyMapParent = iota
	propertyMapPropertyList
)

// PropertyMap links a type to its properties.
type PropertyMap struct{ Row }

func (p PropertyMap) Parent() (TypeDef, error) {
	r, err := p.target(propertyMapParent)
	return TypeDef{r}, err
}

func (p PropertyMap) PropertyList() (Range[Property], error) {
	return list[Property](p.Row, propertyMapPropertyList)
}

const (
	propertyFlags = iota
	propertyName
	propertyType
)

// Property is a property definition.
type Property struct{ Row }

func (p Property) Flags() uint16                  { return uint16(p.u32(propertyFlags)) }
func (p Property) Name() (string, error)          { return p.str(propertyName) }
func (p Property) SignatureBlob() ([]byte, error) { return p.blob(propertyType) }

func (p Property) Signature() (PropertySig, error) {
	b, err := p.SignatureBlob()
	if err != nil {
		return PropertySig{}, err
	}
	sig, err := DecodePropertySig(b)
	if err != nil {
		return sig, p.colErr(propertyType, err)
	}
	return sig, nil
}

// Parent returns the type that declares p.
func (p Property) Parent() (TypeDef, error) {
	m, err := parent[PropertyMap](p.Row, TablePropertyMap, propertyMapPropertyList)
	if err != nil {
		return TypeDef{}, err
	}
	return m.Parent()
}

func (p Property) MethodSemantics() Range[MethodSemantics] {
	return codedChildren[MethodSemantics](p.Row, TableMethodSemantics, methodSemanticsAssociation)
}

func (p Property) Constant() (Constant, bool) {
	return firstOf(codedChildren[Constant](p.Row, TableConstant, constantParent))
}

func (p Property) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](p.Row, TableCustomAttribute, customAttributeParent)
}

const (
	methodSemanticsSemantics = iota
	methodSemanticsMethod
	methodSemanticsAssociation
)

// MethodSemantics binds an accessor method to a property or event.
type MethodSemantics struct{ Row }

func (m MethodSemantics) Semantics() MethodSemanticsAttributes {
	return MethodSemanticsAttributes(m.u32(methodSemanticsSemantics))
}

func (m MethodSemantics) Method() (MethodDef, error) {
	r, err := m.target(methodSemanticsMethod)
	return MethodDef{r}, err
}

func (m MethodSemantics) Association() CodedIndex { return m.coded(methodSemanticsAssociation) }

const (
	methodImplClass = iota
	methodImplMethodBody
	methodImplMethodDeclaration
)

// MethodImpl records that a method body implements a declaration.
type MethodImpl struct{ Row }

func (m MethodImpl) Class() (TypeDef, error) {
	r, err := m.target(methodImplClass)
	return TypeDef{r}, err
}

func (m MethodImpl) MethodBody() CodedIndex        { return m.coded(methodImplMethodBody) }
func (m MethodImpl) MethodDeclaration() CodedIndex { return m.coded(methodImplMethodDeclaration) }

const moduleRefName = 0

// ModuleRef references another module, typically a native DLL.
type ModuleRef struct{ Row }

func (m ModuleRef) Name() (string, error) { return m.str(moduleRefName) }

func (m ModuleRef) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](m.Row, TableCustomAttribute, customAttributeParent)
}

const (
	implMapMappingFlags = iota
	implMapMemberForwarded
	implMapImportName
	implMapImportScope
)

// ImplMap describes a P/Invoke import.
type ImplMap struct{ Row }

func (i ImplMap) MappingFlags() uint16        { return uint16(i.u32(implMapMappingFlags)) }
func (i ImplMap) MemberForwarded() CodedIndex { return i.coded(implMapMemberForwarded) }
func (i ImplMap) ImportName() (string, error) { return i.str(implMapImportName) }

func (i ImplMap) ImportScope() (ModuleRef, error) {
	r, err := i.target(implMapImportScope)
	return ModuleRef{r}, err
}

const (
	methodSpecMethod = iota
	methodSpecInstantiation
)

// MethodSpec is an instantiation of a generic method.
type MethodSpec struct{ Row }

func (m MethodSpec) Method() CodedIndex                 { return m.coded(methodSpecMethod) }
func (m MethodSpec) InstantiationBlob() ([]byte, error) { return m.blob(methodSpecInstantiation) }

func (m MethodSpec) Instantiation() (MethodSpecSig, error) {
	b, err := m.InstantiationBlob()
	if err != nil {
		return MethodSpecSig{}, err
	}
	sig, err := DecodeMethodSpecSig(b)
	if err != nil {
		return sig, m.colErr(methodSpecInstantiation, err)
	}
	return sig, nil
}

func (m MethodSpec) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](m.Row, TableCustomAttribute, customAttributeParent)
}
