package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andreyvit/clrmeta"
)

// formatter renders signatures and values in a C#-like notation.
type formatter struct {
	db *clrmeta.Database
}

func joinName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

func (f formatter) typeRef(ci clrmeta.CodedIndex) string {
	kind, _, ok := ci.Target()
	if !ok {
		return "?"
	}
	if kind == clrmeta.TableTypeSpec {
		row, err := ci.Row(f.db)
		if err != nil {
			return fmt.Sprintf("<%v>", err)
		}
		sig, err := clrmeta.TypeSpec{Row: row}.Signature()
		if err != nil {
			return fmt.Sprintf("<%v>", err)
		}
		return f.genericInst(&sig.GenericInst)
	}
	ns, name, err := f.db.TypeNameOf(ci)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return joinName(ns, name)
}

func (f formatter) genericInst(gi *clrmeta.GenericTypeInstSig) string {
	var buf strings.Builder
	buf.WriteString(f.typeRef(gi.Type))
	buf.WriteByte('<')
	for i := range gi.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(f.typeSig(&gi.Args[i]))
	}
	buf.WriteByte('>')
	return buf.String()
}

func (f formatter) typeSig(t *clrmeta.TypeSig) string {
	var s string
	switch t.Element {
	case clrmeta.ElementClass, clrmeta.ElementValueType:
		s = f.typeRef(t.Type)
	case clrmeta.ElementGenericInst:
		s = f.genericInst(t.GenericInst)
	case clrmeta.ElementVar:
		s = "!" + strconv.Itoa(int(t.GenericParamIndex))
	case clrmeta.ElementMVar:
		s = "!!" + strconv.Itoa(int(t.GenericParamIndex))
	default:
		s = t.Element.String()
	}
	s += f.customMods(t.CustomMods)
	if t.SZArray {
		s += "[]"
	}
	return s
}

func (f formatter) customMods(mods []clrmeta.CustomMod) string {
	var s string
	for _, m := range mods {
		if m.Required {
			s += " modreq(" + f.typeRef(m.Type) + ")"
		} else {
			s += " modopt(" + f.typeRef(m.Type) + ")"
		}
	}
	return s
}

func (f formatter) retType(r *clrmeta.RetTypeSig) string {
	if r.Void {
		return "void" + f.customMods(r.CustomMods)
	}
	s := f.typeSig(&r.Type) + f.customMods(r.CustomMods)
	if r.ByRef {
		s += "&"
	}
	return s
}

func (f formatter) param(p *clrmeta.ParamSig) string {
	s := f.typeSig(&p.Type) + f.customMods(p.CustomMods)
	if p.ByRef {
		s += "&"
	}
	return s
}

// method formats a method declaration. Missing generic or parameter names
// are left out.
func (f formatter) method(name string, sig *clrmeta.MethodDefSig, generics, params []string) string {
	var buf strings.Builder
	if sig.CallingConvention.HasThis() {
		buf.WriteString("instance ")
	}
	buf.WriteString(f.retType(&sig.ReturnType))
	buf.WriteByte(' ')
	buf.WriteString(name)
	if sig.GenericParamCount > 0 {
		buf.WriteByte('<')
		for i := range int(sig.GenericParamCount) {
			if i > 0 {
				buf.WriteString(", ")
			}
			if i < len(generics) {
				buf.WriteString(generics[i])
			} else {
				fmt.Fprintf(&buf, "!!%d", i)
			}
		}
		buf.WriteByte('>')
	}
	buf.WriteByte('(')
	for i := range sig.Params {
		if i > 0 {
			buf.WriteString(", ")
		}
		if i == sig.VarArgStart {
			buf.WriteString("..., ")
		}
		buf.WriteString(f.param(&sig.Params[i]))
		if i < len(params) && params[i] != "" {
			buf.WriteByte(' ')
			buf.WriteString(params[i])
		}
	}
	buf.WriteByte(')')
	return buf.String()
}

func formatElem(e *clrmeta.ElemSig) string {
	switch e.Type {
	case clrmeta.ElementString:
		if e.Value == nil {
			return "null"
		}
		return strconv.Quote(e.Value.(string))
	case clrmeta.ElementSystemType:
		if e.Value == nil {
			return "null"
		}
		return "typeof(" + e.Value.(string) + ")"
	case clrmeta.ElementEnum:
		return e.Enum.Type.FullName() + "." + e.Enum.String()
	case clrmeta.ElementChar:
		return strconv.QuoteRune(e.Value.(rune))
	default:
		return fmt.Sprint(e.Value)
	}
}

func formatFixedArg(a *clrmeta.FixedArgSig) string {
	if !a.IsArray {
		return formatElem(&a.Elems[0])
	}
	if a.Elems == nil {
		return "null"
	}
	parts := make([]string, len(a.Elems))
	for i := range a.Elems {
		parts[i] = formatElem(&a.Elems[i])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatConstant(v clrmeta.ConstantValue) string {
	switch x := v.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case rune:
		if v.Type == clrmeta.ElementChar {
			return strconv.QuoteRune(x)
		}
	}
	return fmt.Sprint(v.Value)
}

// attribute formats an attribute application as Name(args).
func (f formatter) attribute(ca clrmeta.CustomAttribute) (string, error) {
	ns, name, err := ca.TypeName()
	if err != nil {
		return "", err
	}
	sig, err := ca.Value()
	if err != nil {
		return "", err
	}
	args := make([]string, len(sig.FixedArgs))
	for i := range sig.FixedArgs {
		args[i] = formatFixedArg(&sig.FixedArgs[i])
	}
	s := joinName(ns, strings.TrimSuffix(name, "Attribute")) + "(" + strings.Join(args, ", ") + ")"
	if sig.NamedArgCount > 0 {
		s += fmt.Sprintf(" +%d named", sig.NamedArgCount)
	}
	return s, nil
}

// owner names the row a custom attribute is attached to.
func (f formatter) owner(ci clrmeta.CodedIndex) string {
	row, err := ci.Row(f.db)
	if err != nil {
		return ci.String()
	}
	var member string
	var parent clrmeta.TypeDef
	switch row.Kind() {
	case clrmeta.TableTypeDef:
		ns, name, err := clrmeta.TypeDef{Row: row}.Name()
		if err != nil {
			return row.String()
		}
		return joinName(ns, name)
	case clrmeta.TableMethodDef:
		m := clrmeta.MethodDef{Row: row}
		member, err = m.Name()
		if err == nil {
			parent, err = m.Parent()
		}
	case clrmeta.TableField:
		fld := clrmeta.Field{Row: row}
		member, err = fld.Name()
		if err == nil {
			parent, err = fld.Parent()
		}
	case clrmeta.TableProperty:
		p := clrmeta.Property{Row: row}
		member, err = p.Name()
		if err == nil {
			parent, err = p.Parent()
		}
	default:
		return row.String()
	}
	if err != nil {
		return row.String()
	}
	ns, name, err := parent.Name()
	if err != nil {
		return row.String()
	}
	return joinName(ns, name) + "::" + member
}
