package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreyvit/clrmeta"
)

type resolved struct {
	Name    string   `yaml:"name"`
	Source  string   `yaml:"source"`
	Mvid    string   `yaml:"mvid"`
	Token   string   `yaml:"token"`
	Extends string   `yaml:"extends,omitempty"`
	Members []string `yaml:"members,omitempty"`
}

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve TYPE...",
		Short: "Find which indexed image defines a type",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(false)
			if err != nil {
				return err
			}
			if cat == nil {
				return errors.New("catalog is empty; run mdnav index first")
			}

			var results []resolved
			var missing int
			for _, full := range args {
				ns, name := splitTypeName(full)
				e, err := cat.Lookup(ns, name)
				if errors.Is(err, clrmeta.ErrNotFound) {
					a.logger.Warn("not found", "type", full)
					missing++
					continue
				} else if err != nil {
					return err
				}
				r := resolved{
					Name:    e.FullName(),
					Source:  e.Source,
					Mvid:    e.Mvid.String(),
					Token:   fmt.Sprintf("0x%08X", e.Token()),
					Extends: e.Extends,
				}
				if e.IsEnum {
					info, err := cat.ResolveEnum(ns, name)
					if err != nil {
						return err
					}
					for _, m := range info.Members {
						r.Members = append(r.Members, fmt.Sprintf("%s = %s", m.Name, clrmeta.EnumValue{Type: info, Value: m.Value}.Number()))
					}
				}
				results = append(results, r)
			}

			out := cmd.OutOrStdout()
			err = a.emit(out, results, func() error {
				for _, r := range results {
					fmt.Fprintf(out, "%s\t%s\t%s\n", r.Name, r.Source, r.Token)
					for _, m := range r.Members {
						fmt.Fprintf(out, "  %s\n", m)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if missing > 0 {
				return fmt.Errorf("%d types not found", missing)
			}
			return nil
		}),
	}
}
