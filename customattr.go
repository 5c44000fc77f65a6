package clrmeta

const customAttributeProlog = 0x0001

// CustomAttributeSig is a decoded custom attribute value blob.
type CustomAttributeSig struct {
	FixedArgs []FixedArgSig

	// NamedArgCount is the number of named arguments following the fixed
	// ones. Named arguments themselves are not decoded.
	NamedArgCount uint16
}

// FixedArgSig is one positional constructor argument.
type FixedArgSig struct {
	IsArray bool
	Elems   []ElemSig // exactly one element unless IsArray; nil for a null array
}

// ElemSig is a single custom attribute argument value.
type ElemSig struct {
	// Type is the primitive element type, ElementString, ElementSystemType
	// or ElementEnum.
	Type ElementType

	// Value holds bool, rune, int8, uint8, int16, uint16, int32, uint32,
	// int64, uint64 or string; nil for a null string.
	Value any

	// Enum is set when Type is ElementEnum.
	Enum EnumValue
}

// DecodeCustomAttributeSig decodes a custom attribute value blob given the
// signature of the attribute's constructor. Enum-typed arguments are
// resolved against db and its TypeResolver.
func (db *Database) DecodeCustomAttributeSig(blob []byte, ctor MethodDefSig) (CustomAttributeSig, error) {
	d := newSigDecoder(blob)
	var sig CustomAttributeSig
	prolog, err := d.Uint16()
	if err != nil {
		return sig, err
	}
	if prolog != customAttributeProlog {
		return sig, decodeErrf(blob, 0, nil, "invalid custom attribute prolog 0x%04x", prolog)
	}
	sig.FixedArgs = make([]FixedArgSig, len(ctor.Params))
	for i := range ctor.Params {
		if sig.FixedArgs[i], err = db.fixedArg(d, &ctor.Params[i].Type); err != nil {
			return sig, err
		}
	}
	sig.NamedArgCount, err = d.Uint16()
	return sig, err
}

func (db *Database) fixedArg(d *sigDecoder, t *TypeSig) (FixedArgSig, error) {
	if !t.SZArray {
		e, err := db.elem(d, t)
		return FixedArgSig{Elems: []ElemSig{e}}, err
	}
	arg := FixedArgSig{IsArray: true}
	n, err := d.Uint32()
	if err != nil {
		return arg, err
	}
	if n == 0xFFFFFFFF {
		return arg, nil
	}
	if int64(n) > int64(d.Remaining()) {
		return arg, d.short(int(min(n, 1<<30)))
	}
	et := *t
	et.SZArray = false
	arg.Elems = make([]ElemSig, n)
	for i := range arg.Elems {
		if arg.Elems[i], err = db.elem(d, &et); err != nil {
			return arg, err
		}
	}
	return arg, nil
}

func (db *Database) elem(d *sigDecoder, t *TypeSig) (ElemSig, error) {
	switch {
	case t.Element == ElementString:
		s, ok, err := d.SerString()
		if err != nil || !ok {
			return ElemSig{Type: ElementString}, err
		}
		return ElemSig{Type: ElementString, Value: s}, nil

	case t.Element.IsPrimitive():
		v, err := decodePrimitive(&d.byteDecoder, t.Element)
		return ElemSig{Type: t.Element, Value: v}, err

	case t.Element == ElementClass:
		isType, err := db.isSystemType(t.Type)
		if err != nil {
			return ElemSig{}, err
		}
		if !isType {
			return ElemSig{}, d.unsupported("class-typed attribute argument")
		}
		s, ok, err := d.SerString()
		if err != nil || !ok {
			return ElemSig{Type: ElementSystemType}, err
		}
		return ElemSig{Type: ElementSystemType, Value: s}, nil

	case t.Element == ElementValueType:
		info, err := db.enumFor(t.Type)
		if err != nil {
			return ElemSig{}, err
		}
		raw, err := decodePrimitive(&d.byteDecoder, info.Underlying)
		if err != nil {
			return ElemSig{}, err
		}
		bits, _ := integerBits(raw)
		return ElemSig{Type: ElementEnum, Value: raw, Enum: EnumValue{info, bits}}, nil

	default:
		return ElemSig{}, d.unsupported(t.Element.String() + " attribute argument")
	}
}

// isSystemType reports whether a TypeDefOrRef coded index names System.Type.
func (db *Database) isSystemType(ci CodedIndex) (bool, error) {
	row, err := ci.Row(db)
	if err != nil {
		return false, err
	}
	var ns, name string
	switch row.kind {
	case TableTypeRef:
		ns, name, err = TypeRef{row}.Name()
	case TableTypeDef:
		ns, name, err = TypeDef{row}.Name()
	default:
		return false, nil
	}
	return ns == "System" && name == "Type", err
}
