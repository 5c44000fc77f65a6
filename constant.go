package clrmeta

// ConstantValue is a decoded Constant row value. Value holds bool, rune,
// int8, uint8, int16, uint16, int32, uint32, int64, uint64, string, or nil
// for a null class reference.
type ConstantValue struct {
	Type  ElementType
	Value any
}

// Bits returns an integral value sign- or zero-extended to 64 bits, as used
// to compare enum members.
func (cv ConstantValue) Bits() (uint64, bool) {
	return integerBits(cv.Value)
}

// DecodeConstant decodes a Constant value blob of element type typ.
func DecodeConstant(typ ElementType, blob []byte) (ConstantValue, error) {
	cv := ConstantValue{Type: typ}
	d := makeByteDecoder(blob)
	switch typ {
	case ElementString:
		if len(blob)%2 != 0 {
			return cv, decodeErrf(blob, 0, nil, "odd-length UTF-16 string constant")
		}
		cv.Value = decodeUTF16(blob)
		return cv, nil
	case ElementClass:
		v, err := d.Uint32()
		if err != nil {
			return cv, err
		}
		if v != 0 {
			return cv, decodeErrf(blob, 0, nil, "class constant must be null")
		}
		return cv, nil
	}
	v, err := decodePrimitive(&d, typ)
	if err != nil {
		return cv, err
	}
	cv.Value = v
	return cv, nil
}

// decodePrimitive reads a fixed-width value of the given element type.
func decodePrimitive(d *byteDecoder, e ElementType) (any, error) {
	switch e {
	case ElementBoolean:
		b, err := d.Byte()
		return b != 0, err
	case ElementI1:
		b, err := d.Byte()
		return int8(b), err
	case ElementU1:
		b, err := d.Byte()
		return b, err
	case ElementChar:
		v, err := d.Uint16()
		return rune(v), err
	case ElementI2:
		v, err := d.Uint16()
		return int16(v), err
	case ElementU2:
		v, err := d.Uint16()
		return v, err
	case ElementI4:
		v, err := d.Uint32()
		return int32(v), err
	case ElementU4:
		v, err := d.Uint32()
		return v, err
	case ElementI8:
		v, err := d.Uint64()
		return int64(v), err
	case ElementU8:
		v, err := d.Uint64()
		return v, err
	default:
		return nil, &UnsupportedFormError{Form: e.String() + " value", Off: d.Off()}
	}
}

// integerBits converts any integer produced by decodePrimitive to 64 bits.
func integerBits(v any) (uint64, bool) {
	switch v := v.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int32: // also rune
		return uint64(v), true
	case int8:
		return uint64(int64(v)), true
	case uint8:
		return uint64(v), true
	case int16:
		return uint64(int64(v)), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case int64:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}
