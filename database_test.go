package clrmeta_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/andreyvit/clrmeta"
	"github.com/andreyvit/clrmeta/internal/mdtest"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func names[V interface{ Name() (string, error) }](t *testing.T, views []V) string {
	t.Helper()
	var out []string
	for _, v := range views {
		n, err := v.Name()
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, n)
	}
	return strings.Join(out, ",")
}

func typeDef(t *testing.T, db *clrmeta.Database, index int) clrmeta.TypeDef {
	t.Helper()
	row, err := db.Row(clrmeta.TableTypeDef, index)
	if err != nil {
		t.Fatal(err)
	}
	return clrmeta.TypeDef{Row: row}
}

func TestOpen_Sample(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	db := mdtest.OpenSample(t, clrmeta.Options{Logger: logger})

	if db.Version() != "v4.0.30319" {
		t.Fatalf("Version = %q, wanted v4.0.30319", db.Version())
	}
	if !strings.Contains(logBuf.String(), "clrmeta: loaded metadata") {
		t.Fatalf("log = %q, wanted load message", logBuf.String())
	}
	if n := db.Table(clrmeta.TableTypeDef).RowCount(); n != 6 {
		t.Fatalf("TypeDef rows = %d, wanted 6", n)
	}
	tbl, err := db.TableByName("Field")
	if err != nil || tbl.RowCount() != 5 {
		t.Fatalf("TableByName(Field) = %v, %v", tbl, err)
	}
	if _, err := db.TableByName("Bogus"); !errors.Is(err, clrmeta.ErrNotFound) {
		t.Fatalf("TableByName(Bogus) err = %v, wanted ErrNotFound", err)
	}
	if !db.IsSorted(clrmeta.TableCustomAttribute) || db.IsSorted(clrmeta.TableTypeDef) {
		t.Fatalf("IsSorted wrong")
	}

	mod, err := db.Module()
	if err != nil {
		t.Fatal(err)
	}
	if n := must(mod.Name()); n != "Sample.winmd" {
		t.Fatalf("Module.Name = %q", n)
	}
	if g := must(mod.Mvid()); g != mdtest.SampleMvid {
		t.Fatalf("Module.Mvid = %v, wanted %v", g, mdtest.SampleMvid)
	}

	asm, ok := db.Assembly()
	if !ok || must(asm.Name()) != "Sample" || asm.Version().String() != "1.2.3.4" {
		t.Fatalf("Assembly = %v, %v", asm, ok)
	}

	if s := must(db.GetUserString(1)); s != "Hi!" {
		t.Fatalf("GetUserString(1) = %q, wanted Hi!", s)
	}
}

func TestDatabase_FindTypeDef(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})

	td, err := db.FindTypeDef("Sample", "Widget")
	if err != nil || td.Index() != mdtest.Widget {
		t.Fatalf("FindTypeDef(Sample.Widget) = %v, %v", td, err)
	}
	if td.Token() != 0x02000002 {
		t.Fatalf("Token = 0x%08x, wanted 0x02000002", td.Token())
	}
	if _, err := db.FindTypeDef("", "Inner"); !errors.Is(err, clrmeta.ErrNotFound) {
		t.Fatalf("FindTypeDef(Inner) err = %v, wanted ErrNotFound for nested type", err)
	}
	if _, err := db.FindTypeDef("Sample", "Nope"); !errors.Is(err, clrmeta.ErrNotFound) {
		t.Fatalf("FindTypeDef(Nope) err = %v, wanted ErrNotFound", err)
	}
}

func TestTypeDef_Members(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})
	widget := must(db.FindTypeDef("Sample", "Widget"))

	fields := must(widget.FieldList())
	if got := names(t, fields.Slice()); got != "Count,Name" {
		t.Fatalf("Widget fields = %v", got)
	}
	methods := must(widget.MethodList())
	if got := names(t, methods.Slice()); got != ".ctor,GetValue" {
		t.Fatalf("Widget methods = %v", got)
	}
	for f := range fields.All() {
		if p := must(f.Parent()); p != widget {
			t.Fatalf("%v.Parent = %v, wanted %v", f, p, widget)
		}
	}

	kind := must(db.FindTypeDef("Sample", "Kind"))
	if n := must(kind.FieldList()).Len(); n != 3 {
		t.Fatalf("Kind has %d fields, wanted 3", n)
	}
	if n := must(kind.MethodList()).Len(); n != 0 {
		t.Fatalf("Kind has %d methods, wanted 0", n)
	}
	if !must(kind.IsEnum()) || must(widget.IsEnum()) || must(kind.IsValueType()) {
		t.Fatalf("IsEnum/IsValueType wrong")
	}

	empty := must(db.FindTypeDef("Sample", "Empty"))
	if !must(empty.FieldList()).Empty() || !must(empty.MethodList()).Empty() {
		t.Fatalf("Empty has members")
	}
}

func TestMethodDef_Navigation(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})
	widget := must(db.FindTypeDef("Sample", "Widget"))
	m := must(widget.FindMethod("GetValue"))

	sig := must(m.Signature())
	if sig.GenericParamCount != 2 || len(sig.Params) != 1 {
		t.Fatalf("GetValue sig = %+v", sig)
	}
	params := must(m.ParamList())
	if got := names(t, params.Slice()); got != "name" {
		t.Fatalf("GetValue params = %v", got)
	}
	p := params.At(0)
	if p.Sequence() != 1 || !p.Flags().IsIn() || must(p.Parent()) != m {
		t.Fatalf("param = %v (seq %d)", p, p.Sequence())
	}

	gps := m.GenericParams().Slice()
	if got := names(t, gps); got != "T,U" {
		t.Fatalf("generic params = %v", got)
	}
	if gps[0].Constraints().Len() != 0 || gps[1].Constraints().Len() != 1 {
		t.Fatalf("constraints = %d, %d, wanted 0, 1", gps[0].Constraints().Len(), gps[1].Constraints().Len())
	}
	c := gps[1].Constraints().At(0)
	if owner := must(c.Owner()); owner != gps[1] {
		t.Fatalf("constraint owner = %v, wanted %v", owner, gps[1])
	}
	if widget.GenericParams().Len() != 0 {
		t.Fatalf("Widget has generic params")
	}

	if _, err := widget.FindMethod("Nope"); !errors.Is(err, clrmeta.ErrNotFound) {
		t.Fatalf("FindMethod(Nope) err = %v", err)
	}

	info := must(db.FindTypeDef("Sample", "InfoAttribute"))
	ctor := must(info.FindMethod(".ctor"))
	ctorParams := must(ctor.ParamList())
	if got := names(t, ctorParams.Slice()); got != "kind,text,values,type,flag" {
		t.Fatalf("Info ctor params = %v", got)
	}
	if must(ctor.Parent()) != info {
		t.Fatalf("ctor parent wrong")
	}
}

func TestTypeDef_PropertiesAndNesting(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})
	widget := must(db.FindTypeDef("Sample", "Widget"))

	props := must(widget.Properties())
	if props.Len() != 1 || must(props.At(0).Name()) != "Count" {
		t.Fatalf("Widget properties = %v", props.Slice())
	}
	ps := must(props.At(0).Signature())
	if !ps.HasThis || ps.Type.Element != clrmeta.ElementI4 {
		t.Fatalf("Count sig = %+v", ps)
	}
	if must(props.At(0).Parent()) != widget {
		t.Fatalf("property parent wrong")
	}
	if must(must(db.FindTypeDef("Sample", "Kind")).Properties()).Len() != 0 {
		t.Fatalf("Kind has properties")
	}

	inner := typeDef(t, db, mdtest.Inner)
	enc, ok, err := inner.EnclosingType()
	if err != nil || !ok || enc != widget {
		t.Fatalf("Inner.EnclosingType = %v, %v, %v", enc, ok, err)
	}
	if _, ok, _ := widget.EnclosingType(); ok {
		t.Fatalf("Widget has an enclosing type")
	}
	nested := must(widget.NestedTypes())
	if len(nested) != 1 || nested[0] != inner {
		t.Fatalf("Widget.NestedTypes = %v", nested)
	}
}

func TestField_Constant(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})
	fields := must(must(db.FindTypeDef("Sample", "Kind")).FieldList()).Slice()

	if _, ok := fields[0].Constant(); ok {
		t.Fatalf("value__ has a constant")
	}
	c, ok := fields[2].Constant()
	if !ok {
		t.Fatalf("Blue has no constant")
	}
	cv := must(c.Value())
	if cv.Type != clrmeta.ElementI4 || cv.Value != int32(2) {
		t.Fatalf("Blue = %+v, wanted int32 2", cv)
	}
	if parent := must(c.Parent().Row(db)); parent != fields[2].Row {
		t.Fatalf("constant parent = %v, wanted %v", parent, fields[2])
	}
	if fs := must(fields[2].Signature()); fs.Type.Element != clrmeta.ElementValueType {
		t.Fatalf("Blue sig = %+v", fs)
	}
}

func TestRow_View(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})
	for _, kind := range clrmeta.TableKinds() {
		for rec := range db.Rows(kind).All() {
			v := rec.View()
			if v.Kind() != kind || v.Index() != rec.Index() {
				t.Fatalf("%v.View() = %v", rec, v)
			}
		}
	}
	if _, ok := must(db.Row(clrmeta.TableTypeDef, 0)).View().(clrmeta.TypeDef); !ok {
		t.Fatalf("TypeDef row does not view as TypeDef")
	}
	if _, ok := must(db.Row(clrmeta.TableGenericParam, 0)).View().(clrmeta.GenericParam); !ok {
		t.Fatalf("GenericParam row does not view as GenericParam")
	}

	var re *clrmeta.RangeError
	if _, err := db.Row(clrmeta.TableTypeDef, 6); !errors.As(err, &re) {
		t.Fatalf("Row(TypeDef, 6) err = %v, wanted *RangeError", err)
	}
	if _, err := db.Row(clrmeta.TableKind(0x3F), 0); !errors.As(err, &re) {
		t.Fatalf("Row(0x3F) err = %v, wanted *RangeError", err)
	}
}

func TestRange(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})
	rg := clrmeta.All[clrmeta.TypeDef](db, clrmeta.TableTypeDef)
	if rg.Len() != 6 || rg.Start() != 0 || rg.End() != 6 || rg.Empty() {
		t.Fatalf("range = [%d, %d)", rg.Start(), rg.End())
	}
	if !rg.Contains(rg.At(5).Row) {
		t.Fatalf("range does not contain its last row")
	}
	n := 0
	for range rg.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("early break visited %d rows", n)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("At(6) did not panic")
		}
	}()
	rg.At(6)
}

func TestView_HeapErrors(t *testing.T) {
	b := mdtest.Sample()
	b.Add(clrmeta.TableTypeDef, 0, 0xFFF0, 0, 0, 6, 4)
	db := b.Open(t, clrmeta.Options{})

	_, err := typeDef(t, db, 6).TypeName()
	var te *clrmeta.TableError
	if !errors.As(err, &te) || te.Column != "TypeName" || te.Row != 6 {
		t.Fatalf("err = %v, wanted TableError for TypeDef[6].TypeName", err)
	}
	var re *clrmeta.RangeError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, wanted wrapped *RangeError", err)
	}
}

func TestOpen_Errors(t *testing.T) {
	good := mdtest.Sample().Bytes()
	tests := []struct {
		name  string
		image []byte
	}{
		{"empty", nil},
		{"bad signature", append([]byte("ABCD"), good[4:]...)},
		{"truncated root", good[:20]},
		{"truncated streams", good[:len(good)-8]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := clrmeta.Open(tt.image, clrmeta.Options{}); err == nil {
				t.Fatalf("Open succeeded")
			}
		})
	}
}

func TestOpen_UnknownTables(t *testing.T) {
	b := mdtest.Sample()
	img := b.Bytes()
	// The valid mask sits 8 bytes into the table stream.
	off := bytes.Index(img, b.TableStream()) + 8
	img[off+7] |= 0x80
	_, err := clrmeta.Open(img, clrmeta.Options{})
	var de *clrmeta.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, wanted *DecodeError", err)
	}
}

func TestOpen_WideHeaps(t *testing.T) {
	b := mdtest.Sample()
	b.HeapSizes = clrmeta.HeapStringsWide | clrmeta.HeapGUIDWide | clrmeta.HeapBlobWide | clrmeta.HeapExtraData
	db := b.Open(t, clrmeta.Options{})
	widget := must(db.FindTypeDef("Sample", "Widget"))
	if got := names(t, must(widget.FieldList()).Slice()); got != "Count,Name" {
		t.Fatalf("Widget fields = %v", got)
	}
	if n := db.Table(clrmeta.TableTypeDef).RowSize(); n != 4+4+4+2+2+2 {
		t.Fatalf("TypeDef row size = %d", n)
	}
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.md")
	if err := os.WriteFile(path, mdtest.Sample().Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := clrmeta.OpenFile(path, clrmeta.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.FindTypeDef("Sample", "Widget"); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("second Close = %v", err)
	}

	junk := filepath.Join(dir, "junk.dll")
	if err := os.WriteFile(junk, []byte("MZ not really a PE file at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := clrmeta.OpenFile(junk, clrmeta.Options{}); err == nil {
		t.Fatalf("OpenFile(junk) succeeded")
	}
}

func TestCodedIndex_Row(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})

	ci := clrmeta.CodedIndex{Scheme: clrmeta.TypeDefOrRef, Raw: clrmeta.TypeDefOrRef.EncodeRow(clrmeta.TableTypeRef, mdtest.ObjectRef)}
	row, err := ci.Row(db)
	if err != nil {
		t.Fatal(err)
	}
	ns, name, err := clrmeta.TypeRef{Row: row}.Name()
	if err != nil || ns != "System" || name != "Object" {
		t.Fatalf("row = %s.%s, %v, wanted System.Object", ns, name, err)
	}

	if _, err := (clrmeta.CodedIndex{Scheme: clrmeta.TypeDefOrRef}).Row(db); !errors.Is(err, clrmeta.ErrNoTarget) {
		t.Fatalf("null Row err = %v, wanted ErrNoTarget", err)
	}
	var re *clrmeta.RangeError
	ci.Raw = clrmeta.TypeDefOrRef.EncodeRow(clrmeta.TableTypeSpec, 0)
	if _, err := ci.Row(db); !errors.As(err, &re) {
		t.Fatalf("dangling Row err = %v, wanted *RangeError", err)
	}
}

func attributeOf(t *testing.T, db *clrmeta.Database, index int) clrmeta.CustomAttribute {
	t.Helper()
	cas := typeDef(t, db, index).CustomAttributes()
	if cas.Len() != 1 {
		t.Fatalf("TypeDef[%d] has %d custom attributes, wanted 1", index, cas.Len())
	}
	return cas.At(0)
}

func TestCustomAttribute_Value(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})
	ca := attributeOf(t, db, mdtest.Widget)

	ns, name, err := ca.TypeName()
	if err != nil || ns != "Sample" || name != "InfoAttribute" {
		t.Fatalf("TypeName = %s.%s, %v, wanted Sample.InfoAttribute", ns, name, err)
	}

	sig, err := ca.Value()
	if err != nil {
		t.Fatal(err)
	}
	if len(sig.FixedArgs) != 5 || sig.NamedArgCount != 0 {
		t.Fatalf("sig = %+v, wanted 5 fixed args and no named ones", sig)
	}

	kind := sig.FixedArgs[0].Elems[0]
	if kind.Type != clrmeta.ElementEnum || kind.Value != int32(2) || kind.Enum.String() != "Blue" {
		t.Fatalf("arg 0 = %+v (%v), wanted Kind.Blue", kind, kind.Enum)
	}
	if kind.Enum.Type.FullName() != "Sample.Kind" {
		t.Fatalf("arg 0 enum = %s, wanted Sample.Kind", kind.Enum.Type.FullName())
	}
	if e := sig.FixedArgs[1].Elems[0]; e.Type != clrmeta.ElementString || e.Value != "hello" {
		t.Fatalf("arg 1 = %+v, wanted \"hello\"", e)
	}

	arr := sig.FixedArgs[2]
	var values []any
	for _, e := range arr.Elems {
		values = append(values, e.Value)
	}
	if !arr.IsArray || !reflect.DeepEqual(values, []any{int32(1), int32(2), int32(3)}) {
		t.Fatalf("arg 2 = %+v, wanted [1 2 3]", arr)
	}
	if e := sig.FixedArgs[3].Elems[0]; e.Type != clrmeta.ElementSystemType || e.Value != "Sample.Widget" {
		t.Fatalf("arg 3 = %+v, wanted typeof(Sample.Widget)", e)
	}
	if e := sig.FixedArgs[4].Elems[0]; e.Type != clrmeta.ElementBoolean || e.Value != true {
		t.Fatalf("arg 4 = %+v, wanted true", e)
	}
}

func TestCustomAttribute_MemberRefConstructor(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})
	ca := attributeOf(t, db, mdtest.Kind)

	ns, name, err := ca.TypeName()
	if err != nil || ns != "System" || name != "FlagsAttribute" {
		t.Fatalf("TypeName = %s.%s, %v, wanted System.FlagsAttribute", ns, name, err)
	}
	sig, err := ca.Value()
	if err != nil || len(sig.FixedArgs) != 0 {
		t.Fatalf("Value = %+v, %v, wanted no arguments", sig, err)
	}
}

func TestCustomAttribute_ExternalEnum(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		db := mdtest.OpenSample(t, clrmeta.Options{Resolver: mdtest.StubResolver{"External.Color": mdtest.ColorEnum}})
		sig, err := attributeOf(t, db, mdtest.Empty).Value()
		if err != nil {
			t.Fatal(err)
		}
		e := sig.FixedArgs[0].Elems[0]
		if e.Value != uint8(3) || e.Enum.String() != "Blue" {
			t.Fatalf("arg 0 = %+v (%v), wanted Color.Blue", e, e.Enum)
		}
	})

	t.Run("unresolved", func(t *testing.T) {
		db := mdtest.OpenSample(t, clrmeta.Options{})
		_, err := attributeOf(t, db, mdtest.Empty).Value()
		if !errors.Is(err, clrmeta.ErrNotFound) {
			t.Fatalf("err = %v, wanted ErrNotFound", err)
		}
	})
}

func TestTypeDef_EnumInfo(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{})
	td := must(db.FindTypeDef("Sample", "Kind"))
	info, err := td.EnumInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.Underlying != clrmeta.ElementI4 || !info.Flags {
		t.Fatalf("info = %+v, wanted [Flags] int32 enum", info)
	}
	want := []clrmeta.EnumMember{{Name: "Red", Value: 1}, {Name: "Blue", Value: 2}}
	if !reflect.DeepEqual(info.Members, want) {
		t.Fatalf("Members = %+v, wanted %+v", info.Members, want)
	}
	if again := must(td.EnumInfo()); again != info {
		t.Fatalf("second EnumInfo = %p, wanted cached %p", again, info)
	}
	if _, err := must(db.FindTypeDef("Sample", "Widget")).EnumInfo(); err == nil {
		t.Fatalf("Widget.EnumInfo succeeded")
	}
}

func TestDatabase_ResolveEnum(t *testing.T) {
	db := mdtest.OpenSample(t, clrmeta.Options{Resolver: mdtest.StubResolver{"External.Color": mdtest.ColorEnum}})
	if e, err := db.ResolveEnum("External", "Color"); err != nil || e != mdtest.ColorEnum {
		t.Fatalf("ResolveEnum(External.Color) = %v, %v", e, err)
	}
	if e, err := db.ResolveEnum("Sample", "Kind"); err != nil || e.Name != "Kind" {
		t.Fatalf("ResolveEnum(Sample.Kind) = %v, %v", e, err)
	}
	if _, err := db.ResolveEnum("External", "Missing"); !errors.Is(err, clrmeta.ErrNotFound) {
		t.Fatalf("ResolveEnum(missing) err = %v, wanted ErrNotFound", err)
	}
}
