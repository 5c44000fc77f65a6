package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andreyvit/clrmeta"
)

type attrInfo struct {
	Owner     string `yaml:"owner"`
	Attribute string `yaml:"attribute"`
}

func newAttrsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attrs FILE [TYPE]",
		Short: "Decode custom attributes",
		Long: `Decode every custom attribute of an image, or only those applied to the
given type (full name) and its members.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			db, err := a.openImage(args[0])
			if err != nil {
				return err
			}
			defer db.Close()
			f := formatter{db}

			filter := func(string) bool { return true }
			if len(args) > 1 {
				if _, err := db.FindTypeDef(splitTypeName(args[1])); err != nil {
					return err
				}
				prefix := args[1] + "::"
				filter = func(owner string) bool {
					return owner == args[1] || strings.HasPrefix(owner, prefix)
				}
			}

			errs := &rowErrors{logger: a.logger}
			var attrs []attrInfo
			for ca := range clrmeta.All[clrmeta.CustomAttribute](db, clrmeta.TableCustomAttribute).All() {
				owner := f.owner(ca.Parent())
				if !filter(owner) {
					continue
				}
				s, err := f.attribute(ca)
				if err != nil {
					errs.report(ca, err)
					continue
				}
				attrs = append(attrs, attrInfo{owner, s})
			}

			out := cmd.OutOrStdout()
			err = a.emit(out, attrs, func() error {
				for _, at := range attrs {
					fmt.Fprintf(out, "%s: [%s]\n", at.Owner, at.Attribute)
				}
				return nil
			})
			if err != nil {
				return err
			}
			return errs.err()
		}),
	}
}

// splitTypeName splits a full name at its last dot.
func splitTypeName(full string) (namespace, name string) {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}
