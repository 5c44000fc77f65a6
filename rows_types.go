package clrmeta

import "fmt"

const (
	moduleGeneration = iota
	moduleName
	moduleMvid
	moduleEncID
	moduleEncBaseID
)

// Module is the single row describing the current module.
type Module struct{ Row }

func (m Module) Generation() uint16       { return uint16(m.u32(moduleGeneration)) }
func (m Module) Name() (string, error)    { return m.str(moduleName) }
func (m Module) Mvid() (GUID, error)      { return m.guid(moduleMvid) }
func (m Module) EncID() (GUID, error)     { return m.guid(moduleEncID) }
func (m Module) EncBaseID() (GUID, error) { return m.guid(moduleEncBaseID) }
func (m Module) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](m.Row, TableCustomAttribute, customAttributeParent)
}

// Module returns the module row.
func (db *Database) Module() (Module, error) {
	r, err := db.Row(TableModule, 0)
	return Module{r}, err
}

const (
	typeRefResolutionScope = iota
	typeRefTypeName
	typeRefTypeNamespace
)

// TypeRef is a reference to a type defined in another module or assembly.
type TypeRef struct{ Row }

func (t TypeRef) ResolutionScope() CodedIndex    { return t.coded(typeRefResolutionScope) }
func (t TypeRef) TypeName() (string, error)      { return t.str(typeRefTypeName) }
func (t TypeRef) TypeNamespace() (string, error) { return t.str(typeRefTypeNamespace) }

// Name returns the namespace and name together.
func (t TypeRef) Name() (namespace, name string, err error) {
	if namespace, err = t.TypeNamespace(); err != nil {
		return "", "", err
	}
	name, err = t.TypeName()
	return namespace, name, err
}

// TypeNameOf returns the namespace and name of the TypeDef or TypeRef that ci
// points at.
func (db *Database) TypeNameOf(ci CodedIndex) (namespace, name string, err error) {
	row, err := ci.Row(db)
	if err != nil {
		return "", "", err
	}
	switch row.kind {
	case TableTypeRef:
		return TypeRef{row}.Name()
	case TableTypeDef:
		return TypeDef{row}.Name()
	default:
		return "", "", fmt.Errorf("%v does not name a type", row)
	}
}

func (t TypeRef) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](t.Row, TableCustomAttribute, customAttributeParent)
}

const (
	typeDefFlags = iota
	typeDefTypeName
	typeDefTypeNamespace
	typeDefExtends
	typeDefFieldList
	typeDefMethodList
)

// TypeDef is a type defined in this module.
type TypeDef struct{ Row }

// TypeDefs returns all type definitions, starting with the <Module> type.
func (db *Database) TypeDefs() Range[TypeDef] {
	return newRange[TypeDef](db, TableTypeDef, 0, db.tables[TableTypeDef].rowCount)
}

func (t TypeDef) Flags() TypeAttributes          { return TypeAttributes(t.u32(typeDefFlags)) }
func (t TypeDef) TypeName() (string, error)      { return t.str(typeDefTypeName) }
func (t TypeDef) TypeNamespace() (string, error) { return t.str(typeDefTypeNamespace) }
func (t TypeDef) Extends() CodedIndex            { return t.coded(typeDefExtends) }

// Name returns the namespace and name together.
func (t TypeDef) Name() (namespace, name string, err error) {
	if namespace, err = t.TypeNamespace(); err != nil {
		return "", "", err
	}
	name, err = t.TypeName()
	return namespace, name, err
}

func (t TypeDef) FieldList() (Range[Field], error) {
	return list[Field](t.Row, typeDefFieldList)
}

func (t TypeDef) MethodList() (Range[MethodDef], error) {
	return list[MethodDef](t.Row, typeDefMethodList)
}

func (t TypeDef) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](t.Row, TableCustomAttribute, customAttributeParent)
}

func (t TypeDef) GenericParams() Range[GenericParam] {
	return codedChildren[GenericParam](t.Row, TableGenericParam, genericParamOwner)
}

func (t TypeDef) InterfaceImpls() Range[InterfaceImpl] {
	return children[InterfaceImpl](t.db, TableInterfaceImpl, interfaceImplClass, uint32(t.index+1))
}

func (t TypeDef) MethodImpls() Range[MethodImpl] {
	return children[MethodImpl](t.db, TableMethodImpl, methodImplClass, uint32(t.index+1))
}

func (t TypeDef) DeclSecurity() Range[DeclSecurity] {
	return codedChildren[DeclSecurity](t.Row, TableDeclSecurity, declSecurityParent)
}

// ClassLayout returns the explicit layout of t, if any.
func (t TypeDef) ClassLayout() (ClassLayout, bool) {
	rg := children[ClassLayout](t.db, TableClassLayout, classLayoutParent, uint32(t.index+1))
	if rg.Empty() {
		return ClassLayout{}, false
	}
	return rg.At(0), true
}

// EnclosingType returns the type t is nested in, if any.
func (t TypeDef) EnclosingType() (TypeDef, bool, error) {
	rg := children[NestedClass](t.db, TableNestedClass, nestedClassNestedClass, uint32(t.index+1))
	if rg.Empty() {
		return TypeDef{}, false, nil
	}
	enc, err := rg.At(0).EnclosingClass()
	return enc, err == nil, err
}

// NestedTypes returns the types directly nested in t. The NestedClass table
// is sorted by the nested type, so this is a linear scan.
func (t TypeDef) NestedTypes() ([]TypeDef, error) {
	var out []TypeDef
	tbl := &t.db.tables[TableNestedClass]
	for i := range tbl.rowCount {
		if tbl.value(i, nestedClassEnclosingClass) != uint32(t.index+1) {
			continue
		}
		nc, err := NestedClass{Row{t.db, TableNestedClass, i}}.NestedClass()
		if err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, nil
}

// mapRow finds the PropertyMap or EventMap row owned by t.
func (t TypeDef) mapRow(kind TableKind, parentCol int) (Row, bool) {
	tbl := &t.db.tables[kind]
	for i := range tbl.rowCount {
		if tbl.value(i, parentCol) == uint32(t.index+1) {
			return Row{t.db, kind, i}, true
		}
	}
	return Row{}, false
}

func (t TypeDef) Properties() (Range[Property], error) {
	r, ok := t.mapRow(TablePropertyMap, propertyMapParent)
	if !ok {
		return Range[Property]{}, nil
	}
	return PropertyMap{r}.PropertyList()
}

func (t TypeDef) Events() (Range[Event], error) {
	r, ok := t.mapRow(TableEventMap, eventMapParent)
	if !ok {
		return Range[Event]{}, nil
	}
	return EventMap{r}.EventList()
}

// IsEnum reports whether t derives directly from System.Enum.
func (t TypeDef) IsEnum() (bool, error) {
	return t.extendsSystem("Enum")
}

// IsValueType reports whether t derives directly from System.ValueType.
func (t TypeDef) IsValueType() (bool, error) {
	return t.extendsSystem("ValueType")
}

func (t TypeDef) extendsSystem(name string) (bool, error) {
	ext := t.Extends()
	if ext.IsNone() {
		return false, nil
	}
	row, err := ext.Row(t.db)
	if err != nil {
		return false, err
	}
	var ns, n string
	switch row.kind {
	case TableTypeRef:
		ns, n, err = TypeRef{row}.Name()
	case TableTypeDef:
		ns, n, err = TypeDef{row}.Name()
	default:
		return false, nil
	}
	return ns == "System" && n == name, err
}

// FindMethod returns the first method of t with the given name.
func (t TypeDef) FindMethod(name string) (MethodDef, error) {
	methods, err := t.MethodList()
	if err != nil {
		return MethodDef{}, err
	}
	for m := range methods.All() {
		n, err := m.Name()
		if err != nil {
			return MethodDef{}, err
		}
		if n == name {
			return m, nil
		}
	}
	return MethodDef{}, fmt.Errorf("method %s: %w", name, ErrNotFound)
}

const (
	typeSpecSignature = iota
)

// TypeSpec is a constructed type, e.g. a generic instantiation.
type TypeSpec struct{ Row }

func (t TypeSpec) SignatureBlob() ([]byte, error) { return t.blob(typeSpecSignature) }

func (t TypeSpec) Signature() (TypeSpecSig, error) {
	b, err := t.SignatureBlob()
	if err != nil {
		return TypeSpecSig{}, err
	}
	sig, err := DecodeTypeSpecSig(b)
	if err != nil {
		return sig, t.colErr(typeSpecSignature, err)
	}
	return sig, nil
}

func (t TypeSpec) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](t.Row, TableCustomAttribute, customAttributeParent)
}

const (
	interfaceImplClass = iota
	interfaceImplInterface
)

// InterfaceImpl records that a type implements an interface.
type InterfaceImpl struct{ Row }

func (i InterfaceImpl) Class() (TypeDef, error) {
	r, err := i.target(interfaceImplClass)
	return TypeDef{r}, err
}

func (i InterfaceImpl) Interface() CodedIndex { return i.coded(interfaceImplInterface) }

func (i InterfaceImpl) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](i.Row, TableCustomAttribute, customAttributeParent)
}

const (
	nestedClassNestedClass = iota
	nestedClassEnclosingClass
)

// NestedClass links a nested type to its enclosing type.
type NestedClass struct{ Row }

func (n NestedClass) NestedClass() (TypeDef, error) {
	r, err := n.target(nestedClassNestedClass)
	return TypeDef{r}, err
}

func (n NestedClass) EnclosingClass() (TypeDef, error) {
	r, err := n.target(nestedClassEnclosingClass)
	return TypeDef{r}, err
}

const (
	classLayoutPackingSize = iota
	classLayoutClassSize
	classLayoutParent
)

// ClassLayout gives the explicit packing and size of a type.
type ClassLayout struct{ Row }

func (c ClassLayout) PackingSize() uint16 { return uint16(c.u32(classLayoutPackingSize)) }
func (c ClassLayout) ClassSize() uint32   { return c.u32(classLayoutClassSize) }

func (c ClassLayout) Parent() (TypeDef, error) {
	r, err := c.target(classLayoutParent)
	return TypeDef{r}, err
}

const (
	genericParamNumber = iota
	genericParamFlags
	genericParamOwner
	genericParamName
)

// GenericParam is a generic parameter of a type or method.
type GenericParam struct{ Row }

func (g GenericParam) Number() uint16        { return uint16(g.u32(genericParamNumber)) }
func (g GenericParam) Flags() uint16         { return uint16(g.u32(genericParamFlags)) }
func (g GenericParam) Owner() CodedIndex     { return g.coded(genericParamOwner) }
func (g GenericParam) Name() (string, error) { return g.str(genericParamName) }

func (g GenericParam) Constraints() Range[GenericParamConstraint] {
	return children[GenericParamConstraint](g.db, TableGenericParamConstraint, genericParamConstraintOwner, uint32(g.index+1))
}

func (g GenericParam) CustomAttributes() Range[CustomAttribute] {
	return codedChildren[CustomAttribute](g.Row, TableCustomAttribute, customAttributeParent)
}

const (
	genericParamConstraintOwner = iota
	genericParamConstraintConstraint
)

// GenericParamConstraint constrains a generic parameter to a type.
type GenericParamConstraint struct{ Row }

func (g GenericParamConstraint) Owner() (GenericParam, error) {
	r, err := g.target(genericParamConstraintOwner)
	return GenericParam{r}, err
}

func (g GenericParamConstraint) Constraint() CodedIndex {
	return g.coded(genericParamConstraintConstraint)
}
