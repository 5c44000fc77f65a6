package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andreyvit/clrmeta"
)

type tableInfo struct {
	Name    string `yaml:"name"`
	Number  int    `yaml:"number"`
	Rows    int    `yaml:"rows"`
	RowSize int    `yaml:"row_size"`
	Sorted  bool   `yaml:"sorted,omitempty"`
}

func newTablesCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "tables FILE",
		Short: "List the metadata tables of an image",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			db, err := a.openImage(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			var tables []tableInfo
			for _, kind := range clrmeta.TableKinds() {
				tbl := db.Table(kind)
				if tbl.RowCount() == 0 && !all {
					continue
				}
				tables = append(tables, tableInfo{
					Name:    kind.String(),
					Number:  int(kind),
					Rows:    tbl.RowCount(),
					RowSize: tbl.RowSize(),
					Sorted:  db.IsSorted(kind),
				})
			}
			out := cmd.OutOrStdout()
			return a.emit(out, map[string]any{"version": db.Version(), "tables": tables}, func() error {
				fmt.Fprintf(out, "Metadata version %s\n\n", db.Version())
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TABLE\tNUM\tROWS\tROW SIZE\tSORTED")
				for _, t := range tables {
					fmt.Fprintf(w, "%s\t0x%02X\t%d\t%d\t%v\n", t.Name, t.Number, t.Rows, t.RowSize, t.Sorted)
				}
				return w.Flush()
			})
		}),
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include empty tables")
	return cmd
}
