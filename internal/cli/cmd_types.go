package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andreyvit/clrmeta"
)

type typeInfo struct {
	Name       string       `yaml:"name"`
	Kind       string       `yaml:"kind"`
	Extends    string       `yaml:"extends,omitempty"`
	Token      string       `yaml:"token"`
	Nested     []string     `yaml:"nested,omitempty"`
	Members    []memberInfo `yaml:"members,omitempty"`
	Attributes []string     `yaml:"attributes,omitempty"`
}

type memberInfo struct {
	Kind      string `yaml:"kind"`
	Signature string `yaml:"signature"`
	Value     string `yaml:"value,omitempty"`
}

func newTypesCmd(a *app) *cobra.Command {
	var members bool
	cmd := &cobra.Command{
		Use:   "types FILE [NAMESPACE]",
		Short: "List the types defined by an image",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			db, err := a.openImage(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			f := formatter{db}
			errs := &rowErrors{logger: a.logger}
			var types []*typeInfo
			for td := range db.TypeDefs().All() {
				if td.Flags().IsNested() {
					continue
				}
				ns, name, err := td.Name()
				if err != nil {
					errs.report(td, err)
					continue
				}
				if name == "<Module>" || (len(args) > 1 && ns != args[1]) {
					continue
				}
				ti, err := f.describeType(td, members)
				if err != nil {
					errs.report(td, err)
					continue
				}
				types = append(types, ti)
			}

			out := cmd.OutOrStdout()
			err = a.emit(out, types, func() error {
				for _, ti := range types {
					printType(out, ti)
				}
				return nil
			})
			if err != nil {
				return err
			}
			return errs.err()
		}),
	}
	cmd.Flags().BoolVarP(&members, "members", "m", false, "list fields, methods and properties")
	return cmd
}

func typeKind(td clrmeta.TypeDef) (string, error) {
	if td.Flags().IsInterface() {
		return "interface", nil
	}
	if isEnum, err := td.IsEnum(); err != nil || isEnum {
		return "enum", err
	}
	if isStruct, err := td.IsValueType(); err != nil || isStruct {
		return "struct", err
	}
	return "class", nil
}

func (f formatter) describeType(td clrmeta.TypeDef, members bool) (*typeInfo, error) {
	ns, name, err := td.Name()
	if err != nil {
		return nil, err
	}
	ti := &typeInfo{Name: joinName(ns, name), Token: fmt.Sprintf("0x%08X", td.Token())}
	if ti.Kind, err = typeKind(td); err != nil {
		return nil, err
	}
	if ext := td.Extends(); !ext.IsNone() {
		ti.Extends = f.typeRef(ext)
	}
	nested, err := td.NestedTypes()
	if err != nil {
		return nil, err
	}
	for _, n := range nested {
		_, nn, err := n.Name()
		if err != nil {
			return nil, err
		}
		ti.Nested = append(ti.Nested, nn)
	}
	if !members {
		return ti, nil
	}

	for ca := range td.CustomAttributes().All() {
		s, err := f.attribute(ca)
		if err != nil {
			return nil, err
		}
		ti.Attributes = append(ti.Attributes, s)
	}
	fields, err := td.FieldList()
	if err != nil {
		return nil, err
	}
	for fld := range fields.All() {
		mi, err := f.describeField(fld)
		if err != nil {
			return nil, err
		}
		ti.Members = append(ti.Members, mi)
	}
	methods, err := td.MethodList()
	if err != nil {
		return nil, err
	}
	for m := range methods.All() {
		mi, err := f.describeMethod(m)
		if err != nil {
			return nil, err
		}
		ti.Members = append(ti.Members, mi)
	}
	props, err := td.Properties()
	if err != nil {
		return nil, err
	}
	for p := range props.All() {
		name, err := p.Name()
		if err != nil {
			return nil, err
		}
		sig, err := p.Signature()
		if err != nil {
			return nil, err
		}
		ti.Members = append(ti.Members, memberInfo{Kind: "property", Signature: f.typeSig(&sig.Type) + " " + name})
	}
	return ti, nil
}

func (f formatter) describeField(fld clrmeta.Field) (memberInfo, error) {
	mi := memberInfo{Kind: "field"}
	name, err := fld.Name()
	if err != nil {
		return mi, err
	}
	sig, err := fld.Signature()
	if err != nil {
		return mi, err
	}
	mi.Signature = f.typeSig(&sig.Type) + " " + name
	if fld.Flags().IsStatic() {
		mi.Signature = "static " + mi.Signature
	}
	if c, ok := fld.Constant(); ok {
		v, err := c.Value()
		if err != nil {
			return mi, err
		}
		mi.Value = formatConstant(v)
	}
	return mi, nil
}

func (f formatter) describeMethod(m clrmeta.MethodDef) (memberInfo, error) {
	mi := memberInfo{Kind: "method"}
	name, err := m.Name()
	if err != nil {
		return mi, err
	}
	sig, err := m.Signature()
	if err != nil {
		return mi, err
	}
	var generics, params []string
	for gp := range m.GenericParams().All() {
		n, err := gp.Name()
		if err != nil {
			return mi, err
		}
		generics = append(generics, n)
	}
	plist, err := m.ParamList()
	if err != nil {
		return mi, err
	}
	params = make([]string, len(sig.Params))
	for p := range plist.All() {
		// sequence 0 names the return value
		if seq := int(p.Sequence()); seq > 0 && seq <= len(params) {
			if params[seq-1], err = p.Name(); err != nil {
				return mi, err
			}
		}
	}
	mi.Signature = f.method(name, &sig, generics, params)
	return mi, nil
}

func printType(w io.Writer, ti *typeInfo) {
	line := ti.Kind + " " + ti.Name
	if ti.Extends != "" {
		line += " : " + ti.Extends
	}
	fmt.Fprintln(w, line)
	for _, a := range ti.Attributes {
		fmt.Fprintf(w, "  [%s]\n", a)
	}
	for _, n := range ti.Nested {
		fmt.Fprintf(w, "  nested %s\n", n)
	}
	for _, m := range ti.Members {
		s := "  " + m.Kind + " " + m.Signature
		if m.Value != "" {
			s += " = " + m.Value
		}
		fmt.Fprintln(w, strings.TrimRight(s, " "))
	}
}
