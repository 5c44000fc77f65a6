package clrmeta

import (
	"fmt"
	"strconv"
	"strings"
)

// EnumInfo describes an enum type: its underlying integer type and its named
// constants.
type EnumInfo struct {
	Namespace  string
	Name       string
	Underlying ElementType
	Flags      bool
	Members    []EnumMember
}

// EnumMember is a literal static field of an enum.
type EnumMember struct {
	Name  string
	Value uint64 // sign-extended for signed underlying types
}

func (e *EnumInfo) FullName() string {
	return joinTypeName(e.Namespace, e.Name)
}

// Lookup returns the name of the first member whose value equals v.
func (e *EnumInfo) Lookup(v uint64) (string, bool) {
	for _, m := range e.Members {
		if m.Value == v {
			return m.Name, true
		}
	}
	return "", false
}

// TypeResolver finds types that an image references but does not define.
type TypeResolver interface {
	ResolveEnum(namespace, name string) (*EnumInfo, error)
}

// EnumValue is an enum-typed custom attribute argument.
type EnumValue struct {
	Type  *EnumInfo
	Value uint64
}

// String returns the member name matching the value, a |-joined list of
// members for [Flags] enums, or the number.
func (v EnumValue) String() string {
	if name, ok := v.Type.Lookup(v.Value); ok {
		return name
	}
	if v.Type.Flags && v.Value != 0 {
		var names []string
		rem := v.Value
		for _, m := range v.Type.Members {
			if m.Value != 0 && rem&m.Value == m.Value {
				names = append(names, m.Name)
				rem &^= m.Value
			}
		}
		if rem == 0 {
			return strings.Join(names, " | ")
		}
	}
	return v.Number()
}

// Number formats the raw value, signed if the underlying type is.
func (v EnumValue) Number() string {
	if v.Type.Underlying.IsSigned() {
		return strconv.FormatInt(int64(v.Value), 10)
	}
	return strconv.FormatUint(v.Value, 10)
}

// ResolveEnum finds an enum by name, first among the types defined by db
// and then through Options.Resolver.
func (db *Database) ResolveEnum(namespace, name string) (*EnumInfo, error) {
	td, err := db.FindTypeDef(namespace, name)
	if err == nil {
		return td.EnumInfo()
	}
	if db.resolver != nil {
		return db.resolver.ResolveEnum(namespace, name)
	}
	return nil, err
}

// enumFor resolves a TypeDefOrRef coded index to an enum.
func (db *Database) enumFor(ci CodedIndex) (*EnumInfo, error) {
	row, err := ci.Row(db)
	if err != nil {
		return nil, err
	}
	switch row.kind {
	case TableTypeDef:
		return TypeDef{row}.EnumInfo()
	case TableTypeRef:
		tr := TypeRef{row}
		ns, name, err := tr.Name()
		if err != nil {
			return nil, err
		}
		return db.ResolveEnum(ns, name)
	default:
		return nil, fmt.Errorf("%v cannot name an enum", row)
	}
}

const flagsAttributeName = "FlagsAttribute"

// EnumInfo describes t as an enum. Fails if t does not derive from
// System.Enum or has no instance field giving the underlying type.
func (t TypeDef) EnumInfo() (*EnumInfo, error) {
	if v, ok := t.db.enumCache.Load(t.index); ok {
		return v.(*EnumInfo), nil
	}
	isEnum, err := t.IsEnum()
	if err != nil {
		return nil, err
	}
	ns, name, err := t.Name()
	if err != nil {
		return nil, err
	}
	if !isEnum {
		return nil, fmt.Errorf("%s is not an enum", joinTypeName(ns, name))
	}
	info := &EnumInfo{Namespace: ns, Name: name}

	fields, err := t.FieldList()
	if err != nil {
		return nil, err
	}
	for f := range fields.All() {
		flags := f.Flags()
		if !flags.IsStatic() && !flags.IsLiteral() {
			sig, err := f.Signature()
			if err != nil {
				return nil, err
			}
			info.Underlying = sig.Type.Element
			continue
		}
		if !flags.IsLiteral() {
			continue
		}
		c, ok := f.Constant()
		if !ok {
			continue
		}
		cv, err := c.Value()
		if err != nil {
			return nil, err
		}
		bits, ok := cv.Bits()
		if !ok {
			continue
		}
		fname, err := f.Name()
		if err != nil {
			return nil, err
		}
		info.Members = append(info.Members, EnumMember{fname, bits})
	}
	if info.Underlying.Size() == 0 || info.Underlying == ElementR4 || info.Underlying == ElementR8 {
		return nil, fmt.Errorf("enum %s: invalid underlying type %v", info.FullName(), info.Underlying)
	}

	for ca := range t.CustomAttributes().All() {
		ans, aname, err := ca.TypeName()
		if err == nil && ans == "System" && aname == flagsAttributeName {
			info.Flags = true
		}
	}

	v, _ := t.db.enumCache.LoadOrStore(t.index, info)
	return v.(*EnumInfo), nil
}
