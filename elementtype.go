package clrmeta

// ElementType is the leading byte of a type in a signature.
type ElementType uint8

const (
	ElementEnd         ElementType = 0x00
	ElementVoid        ElementType = 0x01
	ElementBoolean     ElementType = 0x02
	ElementChar        ElementType = 0x03
	ElementI1          ElementType = 0x04
	ElementU1          ElementType = 0x05
	ElementI2          ElementType = 0x06
	ElementU2          ElementType = 0x07
	ElementI4          ElementType = 0x08
	ElementU4          ElementType = 0x09
	ElementI8          ElementType = 0x0A
	ElementU8          ElementType = 0x0B
	ElementR4          ElementType = 0x0C
	ElementR8          ElementType = 0x0D
	ElementString      ElementType = 0x0E
	ElementPtr         ElementType = 0x0F
	ElementByRef       ElementType = 0x10
	ElementValueType   ElementType = 0x11
	ElementClass       ElementType = 0x12
	ElementVar         ElementType = 0x13
	ElementArray       ElementType = 0x14
	ElementGenericInst ElementType = 0x15
	ElementTypedByRef  ElementType = 0x16
	ElementI           ElementType = 0x18
	ElementU           ElementType = 0x19
	ElementFnPtr       ElementType = 0x1B
	ElementObject      ElementType = 0x1C
	ElementSZArray     ElementType = 0x1D
	ElementMVar        ElementType = 0x1E
	ElementCModReqd    ElementType = 0x1F
	ElementCModOpt     ElementType = 0x20
	ElementInternal    ElementType = 0x21
	ElementModifier    ElementType = 0x40
	ElementSentinel    ElementType = 0x41
	ElementPinned      ElementType = 0x45

	// Custom attribute encodings.
	ElementSystemType ElementType = 0x50
	ElementBoxed      ElementType = 0x51
	ElementField      ElementType = 0x53
	ElementProperty   ElementType = 0x54
	ElementEnum       ElementType = 0x55
)

var elementTypeNames = map[ElementType]string{
	ElementEnd:         "end",
	ElementVoid:        "void",
	ElementBoolean:     "bool",
	ElementChar:        "char",
	ElementI1:          "int8",
	ElementU1:          "uint8",
	ElementI2:          "int16",
	ElementU2:          "uint16",
	ElementI4:          "int32",
	ElementU4:          "uint32",
	ElementI8:          "int64",
	ElementU8:          "uint64",
	ElementR4:          "float32",
	ElementR8:          "float64",
	ElementString:      "string",
	ElementPtr:         "ptr",
	ElementByRef:       "byref",
	ElementValueType:   "valuetype",
	ElementClass:       "class",
	ElementVar:         "var",
	ElementArray:       "array",
	ElementGenericInst: "genericinst",
	ElementTypedByRef:  "typedbyref",
	ElementI:           "intptr",
	ElementU:           "uintptr",
	ElementFnPtr:       "fnptr",
	ElementObject:      "object",
	ElementSZArray:     "szarray",
	ElementMVar:        "mvar",
	ElementCModReqd:    "modreq",
	ElementCModOpt:     "modopt",
	ElementInternal:    "internal",
	ElementModifier:    "modifier",
	ElementSentinel:    "sentinel",
	ElementPinned:      "pinned",
	ElementSystemType:  "type",
	ElementBoxed:       "boxed",
	ElementField:       "field",
	ElementProperty:    "property",
	ElementEnum:        "enum",
}

func (e ElementType) String() string {
	if s, ok := elementTypeNames[e]; ok {
		return s
	}
	return "element(0x" + hexByte(byte(e)) + ")"
}

// IsPrimitive reports whether e denotes a type with no further encoding.
func (e ElementType) IsPrimitive() bool {
	switch e {
	case ElementBoolean, ElementChar, ElementI1, ElementU1, ElementI2, ElementU2,
		ElementI4, ElementU4, ElementI8, ElementU8, ElementR4, ElementR8,
		ElementString, ElementTypedByRef, ElementI, ElementU, ElementObject:
		return true
	}
	return false
}

// Size returns the width in bytes of an integral element type, or 0.
func (e ElementType) Size() int {
	switch e {
	case ElementBoolean, ElementI1, ElementU1:
		return 1
	case ElementChar, ElementI2, ElementU2:
		return 2
	case ElementI4, ElementU4, ElementR4:
		return 4
	case ElementI8, ElementU8, ElementR8:
		return 8
	}
	return 0
}

// IsSigned reports whether e is a signed integer type.
func (e ElementType) IsSigned() bool {
	switch e {
	case ElementI1, ElementI2, ElementI4, ElementI8, ElementI:
		return true
	}
	return false
}

// CallingConvention is the first byte of method, field, property and
// method instantiation signatures.
type CallingConvention uint8

const (
	CallDefault     CallingConvention = 0x00
	CallC           CallingConvention = 0x01
	CallStdCall     CallingConvention = 0x02
	CallThisCall    CallingConvention = 0x03
	CallFastCall    CallingConvention = 0x04
	CallVarArg      CallingConvention = 0x05
	CallField       CallingConvention = 0x06
	CallLocalSig    CallingConvention = 0x07
	CallProperty    CallingConvention = 0x08
	CallUnmanaged   CallingConvention = 0x09
	CallGenericInst CallingConvention = 0x0A

	CallKindMask     CallingConvention = 0x0F
	CallGeneric      CallingConvention = 0x10
	CallHasThis      CallingConvention = 0x20
	CallExplicitThis CallingConvention = 0x40
)

func (c CallingConvention) Kind() CallingConvention { return c & CallKindMask }
func (c CallingConvention) IsGeneric() bool         { return c&CallGeneric != 0 }
func (c CallingConvention) HasThis() bool           { return c&CallHasThis != 0 }
func (c CallingConvention) ExplicitThis() bool      { return c&CallExplicitThis != 0 }
