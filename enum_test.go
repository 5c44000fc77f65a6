package clrmeta

import "testing"

func TestEnumValue_String(t *testing.T) {
	flags := &EnumInfo{Name: "Kind", Underlying: ElementI4, Flags: true, Members: []EnumMember{{"None", 0}, {"Red", 1}, {"Blue", 2}}}
	signed := &EnumInfo{Name: "Delta", Underlying: ElementI2, Members: []EnumMember{{"Down", 0xFFFFFFFFFFFFFFFF}}}
	tests := []struct {
		v    EnumValue
		want string
	}{
		{EnumValue{flags, 0}, "None"},
		{EnumValue{flags, 2}, "Blue"},
		{EnumValue{flags, 3}, "Red | Blue"},
		{EnumValue{flags, 7}, "7"},
		{EnumValue{&EnumInfo{Name: "Color", Underlying: ElementU1}, 9}, "9"},
		{EnumValue{signed, 0xFFFFFFFFFFFFFFFF}, "Down"},
		{EnumValue{signed, 0xFFFFFFFFFFFFFFFE}, "-2"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("EnumValue{%s, %d} = %q, wanted %q", tt.v.Type.Name, tt.v.Value, got, tt.want)
		}
	}
}
