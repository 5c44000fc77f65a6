package mdtest

import (
	"fmt"
	"testing"

	"github.com/andreyvit/clrmeta"
)

// TypeRef rows of the sample image.
const (
	ObjectRef = iota
	EnumRef
	AttributeRef
	TypeRef
	FlagsAttributeRef
	ColorRef
	PaintAttributeRef
)

// TypeDef rows of the sample image.
const (
	ModuleType = iota
	Widget
	Kind
	InfoAttribute
	Empty
	Inner
)

// MethodDef rows of the sample image.
const (
	WidgetCtor = iota
	GetValue
	InfoCtor
)

var SampleMvid = clrmeta.GUID{0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

// Sample describes:
//
//	namespace Sample {
//	    [Info(Kind.Blue, "hello", new[]{1,2,3}, typeof(Sample.Widget), true)]
//	    class Widget {
//	        int Count; string Name;
//	        Widget();
//	        int GetValue<T, U>(string name) where U : object;
//	        int Count { get; }
//	        class Inner {}
//	    }
//	    [Flags] enum Kind { Red = 1, Blue = 2 }
//	    class InfoAttribute : Attribute { InfoAttribute(Kind, string, int[], Type, bool); }
//	    [External.Paint(External.Color.Blue)] class Empty {}
//	}
func Sample() *Builder {
	b := NewBuilder()
	s := b.Str

	b.Add(clrmeta.TableModule, 0, s("Sample.winmd"), b.GUID(SampleMvid), 0, 0)
	b.Add(clrmeta.TableAssembly, 0x8004, 1, 2, 3, 4, 0, 0, s("Sample"), 0)
	b.Add(clrmeta.TableAssemblyRef, 4, 0, 0, 0, 0, 0, s("mscorlib"), 0, 0)

	scope := clrmeta.ResolutionScope.EncodeRow(clrmeta.TableAssemblyRef, 0)
	b.Add(clrmeta.TableTypeRef, scope, s("Object"), s("System"))
	b.Add(clrmeta.TableTypeRef, scope, s("Enum"), s("System"))
	b.Add(clrmeta.TableTypeRef, scope, s("Attribute"), s("System"))
	b.Add(clrmeta.TableTypeRef, scope, s("Type"), s("System"))
	b.Add(clrmeta.TableTypeRef, scope, s("FlagsAttribute"), s("System"))
	b.Add(clrmeta.TableTypeRef, scope, s("Color"), s("External"))
	b.Add(clrmeta.TableTypeRef, scope, s("PaintAttribute"), s("External"))

	ref := func(row int) uint32 { return clrmeta.TypeDefOrRef.EncodeRow(clrmeta.TableTypeRef, row) }
	def := func(row int) uint32 { return clrmeta.TypeDefOrRef.EncodeRow(clrmeta.TableTypeDef, row) }

	public := uint32(clrmeta.TypePublic)
	b.Add(clrmeta.TableTypeDef, 0, s("<Module>"), 0, 0, 1, 1)
	b.Add(clrmeta.TableTypeDef, public, s("Widget"), s("Sample"), ref(ObjectRef), 1, 1)
	b.Add(clrmeta.TableTypeDef, public|uint32(clrmeta.TypeSealed), s("Kind"), s("Sample"), ref(EnumRef), 3, 3)
	b.Add(clrmeta.TableTypeDef, public, s("InfoAttribute"), s("Sample"), ref(AttributeRef), 6, 3)
	b.Add(clrmeta.TableTypeDef, public, s("Empty"), s("Sample"), ref(ObjectRef), 6, 4)
	b.Add(clrmeta.TableTypeDef, uint32(clrmeta.TypeNestedPublic), s("Inner"), 0, ref(ObjectRef), 6, 4)

	field := uint32(clrmeta.FieldPublic)
	literal := uint32(clrmeta.FieldPublic | clrmeta.FieldStatic | clrmeta.FieldLiteral | clrmeta.FieldHasDefault)
	b.Add(clrmeta.TableField, field, s("Count"), b.Blob(0x06, 0x08))
	b.Add(clrmeta.TableField, field, s("Name"), b.Blob(0x06, 0x0E))
	b.Add(clrmeta.TableField, uint32(clrmeta.FieldPublic|clrmeta.FieldSpecialName|clrmeta.FieldRTSpecialName), s("value__"), b.Blob(0x06, 0x08))
	b.Add(clrmeta.TableField, literal, s("Red"), b.Blob(0x06, 0x11, byte(def(Kind))))
	b.Add(clrmeta.TableField, literal, s("Blue"), b.Blob(0x06, 0x11, byte(def(Kind))))

	method := uint32(clrmeta.MethodPublic)
	ctor := uint32(clrmeta.MethodPublic | clrmeta.MethodSpecialName | clrmeta.MethodRTSpecialName)
	b.Add(clrmeta.TableMethodDef, 0, 0, ctor, s(".ctor"), b.Blob(0x20, 0x00, 0x01), 1)
	b.Add(clrmeta.TableMethodDef, 0, 0, method, s("GetValue"), b.Blob(0x30, 0x02, 0x01, 0x08, 0x0E), 1)
	b.Add(clrmeta.TableMethodDef, 0, 0, ctor, s(".ctor"),
		b.Blob(0x20, 0x05, 0x01, 0x11, byte(def(Kind)), 0x0E, 0x1D, 0x08, 0x12, byte(ref(TypeRef)), 0x02), 2)

	b.Add(clrmeta.TableParam, uint32(clrmeta.ParamIn), 1, s("name"))
	b.Add(clrmeta.TableParam, 0, 1, s("kind"))
	b.Add(clrmeta.TableParam, 0, 2, s("text"))
	b.Add(clrmeta.TableParam, 0, 3, s("values"))
	b.Add(clrmeta.TableParam, 0, 4, s("type"))
	b.Add(clrmeta.TableParam, 0, 5, s("flag"))

	parent := func(row int) uint32 { return clrmeta.MemberRefParent.EncodeRow(clrmeta.TableTypeRef, row) }
	b.Add(clrmeta.TableMemberRef, parent(FlagsAttributeRef), s(".ctor"), b.Blob(0x20, 0x00, 0x01))
	b.Add(clrmeta.TableMemberRef, parent(PaintAttributeRef), s(".ctor"), b.Blob(0x20, 0x01, 0x01, 0x11, byte(ref(ColorRef))))

	b.Add(clrmeta.TableConstant, uint32(clrmeta.ElementI4), clrmeta.HasConstant.EncodeRow(clrmeta.TableField, 3), b.Blob(1, 0, 0, 0))
	b.Add(clrmeta.TableConstant, uint32(clrmeta.ElementI4), clrmeta.HasConstant.EncodeRow(clrmeta.TableField, 4), b.Blob(2, 0, 0, 0))

	info := []byte{0x01, 0x00, 0x02, 0x00, 0x00, 0x00, 0x05, 'h', 'e', 'l', 'l', 'o', 0x03, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x0D}
	info = append(info, "Sample.Widget"...)
	info = append(info, 0x01, 0x00, 0x00)
	owner := func(row int) uint32 { return clrmeta.HasCustomAttribute.EncodeRow(clrmeta.TableTypeDef, row) }
	attr := clrmeta.CustomAttributeType.EncodeRow
	b.Add(clrmeta.TableCustomAttribute, owner(Widget), attr(clrmeta.TableMethodDef, InfoCtor), b.Blob(info...))
	b.Add(clrmeta.TableCustomAttribute, owner(Kind), attr(clrmeta.TableMemberRef, 0), b.Blob(0x01, 0x00, 0x00, 0x00))
	b.Add(clrmeta.TableCustomAttribute, owner(Empty), attr(clrmeta.TableMemberRef, 1), b.Blob(0x01, 0x00, 0x03, 0x00, 0x00))

	b.Add(clrmeta.TablePropertyMap, Widget+1, 1)
	b.Add(clrmeta.TableProperty, 0, s("Count"), b.Blob(0x28, 0x00, 0x08))

	b.Add(clrmeta.TableNestedClass, Inner+1, Widget+1)

	gpOwner := clrmeta.TypeOrMethodDef.EncodeRow(clrmeta.TableMethodDef, GetValue)
	b.Add(clrmeta.TableGenericParam, 0, 0, gpOwner, s("T"))
	b.Add(clrmeta.TableGenericParam, 1, 0, gpOwner, s("U"))
	b.Add(clrmeta.TableGenericParamConstraint, 2, ref(ObjectRef))

	b.UserString("Hi!")
	b.Sorted = 1<<clrmeta.TableConstant | 1<<clrmeta.TableCustomAttribute | 1<<clrmeta.TableNestedClass |
		1<<clrmeta.TableGenericParam | 1<<clrmeta.TableGenericParamConstraint
	return b
}

// OpenSample opens the sample image.
func OpenSample(t testing.TB, opt clrmeta.Options) *clrmeta.Database {
	t.Helper()
	return Sample().Open(t, opt)
}

// StubResolver serves enums by full name.
type StubResolver map[string]*clrmeta.EnumInfo

func (r StubResolver) ResolveEnum(namespace, name string) (*clrmeta.EnumInfo, error) {
	full := name
	if namespace != "" {
		full = namespace + "." + name
	}
	if e, ok := r[full]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("enum %s: %w", full, clrmeta.ErrNotFound)
}

// ColorEnum is the enum referenced, but not defined, by the sample image.
var ColorEnum = &clrmeta.EnumInfo{
	Namespace:  "External",
	Name:       "Color",
	Underlying: clrmeta.ElementU1,
	Members:    []clrmeta.EnumMember{{Name: "Red", Value: 1}, {Name: "Green", Value: 2}, {Name: "Blue", Value: 3}},
}

var ExternalMvid = clrmeta.GUID{0xee, 0xee, 0xee, 0xee, 0x01, 0x00, 0x02, 0x00, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a}

// External describes the image that defines the enum Sample refers to:
//
//	namespace External {
//	    enum Color : byte { Red = 1, Green = 2, Blue = 3 }
//	    class PaintAttribute : Attribute { PaintAttribute(Color); }
//	}
func External() *Builder {
	b := NewBuilder()
	s := b.Str

	b.Add(clrmeta.TableModule, 0, s("External.winmd"), b.GUID(ExternalMvid), 0, 0)
	b.Add(clrmeta.TableAssemblyRef, 4, 0, 0, 0, 0, 0, s("mscorlib"), 0, 0)
	scope := clrmeta.ResolutionScope.EncodeRow(clrmeta.TableAssemblyRef, 0)
	b.Add(clrmeta.TableTypeRef, scope, s("Enum"), s("System"))
	b.Add(clrmeta.TableTypeRef, scope, s("Attribute"), s("System"))

	ref := func(row int) uint32 { return clrmeta.TypeDefOrRef.EncodeRow(clrmeta.TableTypeRef, row) }
	color := byte(clrmeta.TypeDefOrRef.EncodeRow(clrmeta.TableTypeDef, 1))

	public := uint32(clrmeta.TypePublic)
	b.Add(clrmeta.TableTypeDef, 0, s("<Module>"), 0, 0, 1, 1)
	b.Add(clrmeta.TableTypeDef, public|uint32(clrmeta.TypeSealed), s("Color"), s("External"), ref(0), 1, 1)
	b.Add(clrmeta.TableTypeDef, public, s("PaintAttribute"), s("External"), ref(1), 5, 1)

	literal := uint32(clrmeta.FieldPublic | clrmeta.FieldStatic | clrmeta.FieldLiteral | clrmeta.FieldHasDefault)
	b.Add(clrmeta.TableField, uint32(clrmeta.FieldPublic|clrmeta.FieldSpecialName|clrmeta.FieldRTSpecialName), s("value__"), b.Blob(0x06, 0x05))
	for i, name := range []string{"Red", "Green", "Blue"} {
		b.Add(clrmeta.TableField, literal, s(name), b.Blob(0x06, 0x11, color))
		b.Add(clrmeta.TableConstant, uint32(clrmeta.ElementU1), clrmeta.HasConstant.EncodeRow(clrmeta.TableField, i+1), b.Blob(byte(i+1)))
	}

	ctor := uint32(clrmeta.MethodPublic | clrmeta.MethodSpecialName | clrmeta.MethodRTSpecialName)
	b.Add(clrmeta.TableMethodDef, 0, 0, ctor, s(".ctor"), b.Blob(0x20, 0x01, 0x01, 0x11, color), 1)
	b.Add(clrmeta.TableParam, 0, 1, s("color"))

	b.Sorted = 1 << clrmeta.TableConstant
	return b
}
