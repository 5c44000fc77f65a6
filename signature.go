package clrmeta

// CustomMod is a required or optional modifier attached to a type.
type CustomMod struct {
	Required bool
	Type     CodedIndex // TypeDefOrRef
}

// TypeSig describes a type in a signature.
type TypeSig struct {
	// SZArray is set for a single-dimensional zero-based array of the
	// element described by the remaining fields.
	SZArray    bool
	CustomMods []CustomMod

	// Element is a primitive type, or one of ElementClass, ElementValueType,
	// ElementGenericInst, ElementVar and ElementMVar.
	Element ElementType

	// Type is the referenced class or value type (TypeDefOrRef).
	Type CodedIndex

	// GenericInst is the instantiation for ElementGenericInst.
	GenericInst *GenericTypeInstSig

	// GenericParamIndex is the parameter number for ElementVar/ElementMVar.
	GenericParamIndex uint32
}

// IsClassRef reports whether t names a class or value type directly.
func (t *TypeSig) IsClassRef() bool {
	return t.Element == ElementClass || t.Element == ElementValueType
}

// GenericTypeInstSig is an instantiation of a generic type.
type GenericTypeInstSig struct {
	ValueType bool
	Type      CodedIndex // TypeDefOrRef
	Args      []TypeSig
}

// ParamSig is one parameter of a method or property.
type ParamSig struct {
	CustomMods []CustomMod
	ByRef      bool
	Type       TypeSig
}

// RetTypeSig is the return type of a method.
type RetTypeSig struct {
	CustomMods []CustomMod
	ByRef      bool
	Void       bool
	Type       TypeSig // unset when Void
}

// MethodDefSig is the signature of a method definition or method reference.
type MethodDefSig struct {
	CallingConvention CallingConvention
	GenericParamCount uint32
	ReturnType        RetTypeSig
	Params            []ParamSig

	// VarArgStart is the index of the first parameter following a sentinel
	// in a vararg call site signature, or -1.
	VarArgStart int
}

// FieldSig is the signature of a field.
type FieldSig struct {
	CustomMods []CustomMod
	Type       TypeSig
}

// PropertySig is the signature of a property.
type PropertySig struct {
	HasThis    bool
	CustomMods []CustomMod
	Type       TypeSig
	Params     []ParamSig
}

// TypeSpecSig is the signature stored in a TypeSpec row. Only generic
// instantiations are supported.
type TypeSpecSig struct {
	GenericInst GenericTypeInstSig
}

// MethodSpecSig lists the type arguments of a generic method instantiation.
type MethodSpecSig struct {
	Args []TypeSig
}

type sigDecoder struct {
	byteDecoder
}

func newSigDecoder(blob []byte) *sigDecoder {
	return &sigDecoder{makeByteDecoder(blob)}
}

func (d *sigDecoder) unsupported(form string) error {
	return &UnsupportedFormError{Form: form, Off: d.Off()}
}

func (d *sigDecoder) peekIs(e ElementType) (bool, error) {
	b, err := d.Peek()
	if err != nil {
		return false, err
	}
	return ElementType(b) == e, nil
}

// consume skips the next byte if it equals e.
func (d *sigDecoder) consume(e ElementType) (bool, error) {
	ok, err := d.peekIs(e)
	if ok {
		d.Buf = d.Buf[1:]
	}
	return ok, err
}

func (d *sigDecoder) typeDefOrRef() (CodedIndex, error) {
	v, err := d.CompressedUint()
	if err != nil {
		return CodedIndex{}, err
	}
	return CodedIndex{TypeDefOrRef, v}, nil
}

func (d *sigDecoder) customMods() ([]CustomMod, error) {
	var mods []CustomMod
	for {
		b, err := d.Peek()
		if err != nil {
			return nil, err
		}
		e := ElementType(b)
		if e != ElementCModReqd && e != ElementCModOpt {
			return mods, nil
		}
		d.Buf = d.Buf[1:]
		ci, err := d.typeDefOrRef()
		if err != nil {
			return nil, err
		}
		mods = append(mods, CustomMod{Required: e == ElementCModReqd, Type: ci})
	}
}

func (d *sigDecoder) typeSig() (TypeSig, error) {
	var sig TypeSig
	var err error
	if sig.SZArray, err = d.consume(ElementSZArray); err != nil {
		return sig, err
	}
	if sig.CustomMods, err = d.customMods(); err != nil {
		return sig, err
	}
	off := d.Off()
	b, err := d.Byte()
	if err != nil {
		return sig, err
	}
	e := ElementType(b)
	sig.Element = e
	switch {
	case e.IsPrimitive():
	case e == ElementClass || e == ElementValueType:
		sig.Type, err = d.typeDefOrRef()
	case e == ElementGenericInst:
		var gi GenericTypeInstSig
		gi, err = d.genericInst()
		sig.GenericInst = &gi
	case e == ElementVar || e == ElementMVar:
		sig.GenericParamIndex, err = d.CompressedUint()
	case e == ElementPtr || e == ElementFnPtr || e == ElementArray || e == ElementSZArray:
		return sig, &UnsupportedFormError{Form: e.String() + " type", Off: off}
	default:
		return sig, decodeErrf(d.Orig, off, nil, "unexpected element type 0x%02x in type signature", b)
	}
	return sig, err
}

// genericInst decodes a generic instantiation after its GenericInst tag.
func (d *sigDecoder) genericInst() (GenericTypeInstSig, error) {
	var gi GenericTypeInstSig
	off := d.Off()
	b, err := d.Byte()
	if err != nil {
		return gi, err
	}
	switch ElementType(b) {
	case ElementClass:
	case ElementValueType:
		gi.ValueType = true
	default:
		return gi, decodeErrf(d.Orig, off, nil, "generic instantiation of element type 0x%02x", b)
	}
	if gi.Type, err = d.typeDefOrRef(); err != nil {
		return gi, err
	}
	n, err := d.CompressedUint()
	if err != nil {
		return gi, err
	}
	if int(n) > d.Remaining() {
		return gi, d.short(int(n))
	}
	gi.Args = make([]TypeSig, n)
	for i := range gi.Args {
		if gi.Args[i], err = d.typeSig(); err != nil {
			return gi, err
		}
	}
	return gi, nil
}

func (d *sigDecoder) paramSig() (ParamSig, error) {
	var p ParamSig
	var err error
	if p.CustomMods, err = d.customMods(); err != nil {
		return p, err
	}
	if p.ByRef, err = d.consume(ElementByRef); err != nil {
		return p, err
	}
	p.Type, err = d.typeSig()
	return p, err
}

func (d *sigDecoder) retTypeSig() (RetTypeSig, error) {
	var r RetTypeSig
	var err error
	if r.CustomMods, err = d.customMods(); err != nil {
		return r, err
	}
	if r.ByRef, err = d.consume(ElementByRef); err != nil {
		return r, err
	}
	if r.Void, err = d.consume(ElementVoid); err != nil || r.Void {
		return r, err
	}
	r.Type, err = d.typeSig()
	return r, err
}

func (d *sigDecoder) callingConvention() (CallingConvention, error) {
	b, err := d.Byte()
	return CallingConvention(b), err
}

func (d *sigDecoder) params(n uint32) ([]ParamSig, int, error) {
	if int(n) > d.Remaining() {
		return nil, -1, d.short(int(n))
	}
	params := make([]ParamSig, n)
	varArgStart := -1
	for i := range params {
		sentinel, err := d.consume(ElementSentinel)
		if err != nil {
			return nil, -1, err
		}
		if sentinel {
			varArgStart = i
		}
		if params[i], err = d.paramSig(); err != nil {
			return nil, -1, err
		}
	}
	return params, varArgStart, nil
}

// DecodeMethodDefSig decodes a MethodDef or method MemberRef signature.
func DecodeMethodDefSig(blob []byte) (MethodDefSig, error) {
	d := newSigDecoder(blob)
	var sig MethodDefSig
	cc, err := d.callingConvention()
	if err != nil {
		return sig, err
	}
	switch cc.Kind() {
	case CallField, CallLocalSig, CallProperty, CallGenericInst:
		return sig, decodeErrf(blob, 0, nil, "calling convention 0x%02x is not a method", byte(cc))
	}
	sig.CallingConvention = cc
	if cc.IsGeneric() {
		if sig.GenericParamCount, err = d.CompressedUint(); err != nil {
			return sig, err
		}
	}
	n, err := d.CompressedUint()
	if err != nil {
		return sig, err
	}
	if sig.ReturnType, err = d.retTypeSig(); err != nil {
		return sig, err
	}
	sig.Params, sig.VarArgStart, err = d.params(n)
	return sig, err
}

// DecodeFieldSig decodes a Field or field MemberRef signature.
func DecodeFieldSig(blob []byte) (FieldSig, error) {
	d := newSigDecoder(blob)
	var sig FieldSig
	cc, err := d.callingConvention()
	if err != nil {
		return sig, err
	}
	if cc.Kind() != CallField {
		return sig, decodeErrf(blob, 0, nil, "calling convention 0x%02x is not a field", byte(cc))
	}
	if sig.CustomMods, err = d.customMods(); err != nil {
		return sig, err
	}
	sig.Type, err = d.typeSig()
	return sig, err
}

// DecodePropertySig decodes a Property signature.
func DecodePropertySig(blob []byte) (PropertySig, error) {
	d := newSigDecoder(blob)
	var sig PropertySig
	cc, err := d.callingConvention()
	if err != nil {
		return sig, err
	}
	if cc.Kind() != CallProperty {
		return sig, decodeErrf(blob, 0, nil, "calling convention 0x%02x is not a property", byte(cc))
	}
	sig.HasThis = cc.HasThis()
	n, err := d.CompressedUint()
	if err != nil {
		return sig, err
	}
	if sig.CustomMods, err = d.customMods(); err != nil {
		return sig, err
	}
	if sig.Type, err = d.typeSig(); err != nil {
		return sig, err
	}
	sig.Params, _, err = d.params(n)
	return sig, err
}

// DecodeTypeSpecSig decodes a TypeSpec signature.
func DecodeTypeSpecSig(blob []byte) (TypeSpecSig, error) {
	d := newSigDecoder(blob)
	var sig TypeSpecSig
	b, err := d.Byte()
	if err != nil {
		return sig, err
	}
	switch e := ElementType(b); e {
	case ElementGenericInst:
		sig.GenericInst, err = d.genericInst()
		return sig, err
	case ElementPtr, ElementFnPtr, ElementArray, ElementSZArray:
		return sig, &UnsupportedFormError{Form: e.String() + " type spec", Off: 0}
	default:
		return sig, decodeErrf(blob, 0, nil, "unexpected element type 0x%02x in type spec", b)
	}
}

// DecodeMethodSpecSig decodes the instantiation blob of a MethodSpec row.
func DecodeMethodSpecSig(blob []byte) (MethodSpecSig, error) {
	d := newSigDecoder(blob)
	var sig MethodSpecSig
	cc, err := d.callingConvention()
	if err != nil {
		return sig, err
	}
	if cc.Kind() != CallGenericInst {
		return sig, decodeErrf(blob, 0, nil, "calling convention 0x%02x is not a method instantiation", byte(cc))
	}
	n, err := d.CompressedUint()
	if err != nil {
		return sig, err
	}
	if int(n) > d.Remaining() {
		return sig, d.short(int(n))
	}
	sig.Args = make([]TypeSig, n)
	for i := range sig.Args {
		if sig.Args[i], err = d.typeSig(); err != nil {
			return sig, err
		}
	}
	return sig, nil
}
