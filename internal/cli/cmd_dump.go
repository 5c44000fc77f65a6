package cli

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andreyvit/clrmeta"
)

const maxBlobDump = 32

func newDumpCmd(a *app) *cobra.Command {
	var start, limit int
	cmd := &cobra.Command{
		Use:   "dump FILE TABLE",
		Short: "Print the rows of a table",
		Example: `  mdnav dump Windows.Foundation.winmd TypeDef
  mdnav dump -o yaml --start 10 --limit 5 Windows.Foundation.winmd MethodDef`,
		Args: cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			db, err := a.openImage(args[0])
			if err != nil {
				return err
			}
			defer db.Close()
			tbl, err := db.TableByName(args[1])
			if err != nil {
				return err
			}

			end := tbl.RowCount()
			if limit > 0 {
				end = min(end, start+limit)
			}
			out := cmd.OutOrStdout()
			errs := &rowErrors{logger: a.logger}
			var rows []*yaml.Node
			for i := start; i < end; i++ {
				cells, err := dumpRow(db, tbl, i)
				if err != nil {
					errs.report(rowName{tbl.Kind(), i}, err)
					continue
				}
				if a.format == "yaml" {
					kv := []any{"row", i}
					for _, c := range cells {
						kv = append(kv, c.name, c.value)
					}
					rows = append(rows, mapping(kv...))
					continue
				}
				parts := make([]string, len(cells))
				for j, c := range cells {
					parts[j] = c.name + "=" + c.text
				}
				fmt.Fprintf(out, "%v[%d] %s\n", tbl.Kind(), i, strings.Join(parts, " "))
			}
			if a.format == "yaml" {
				if err := a.emit(out, rows, nil); err != nil {
					return err
				}
			}
			return errs.err()
		}),
	}
	cmd.Flags().IntVar(&start, "start", 0, "first row to print")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of rows to print (0 prints all)")
	return cmd
}

type rowName struct {
	kind  clrmeta.TableKind
	index int
}

func (r rowName) String() string {
	return fmt.Sprintf("%v[%d]", r.kind, r.index)
}

type cell struct {
	name  string
	text  string
	value any
}

// dumpRow decodes every column of a row: heap references are dereferenced,
// table and coded indexes are shown as Table[row].
func dumpRow(db *clrmeta.Database, tbl *clrmeta.Table, row int) ([]cell, error) {
	cols := tbl.Columns()
	cells := make([]cell, len(cols))
	for i, col := range cols {
		v, err := tbl.GetValue(row, i)
		if err != nil {
			return nil, err
		}
		c := cell{name: col.Name}
		switch col.Type {
		case clrmeta.ColumnString:
			s, err := db.GetString(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", col.Name, err)
			}
			c.text, c.value = strconv.Quote(s), s
		case clrmeta.ColumnBlob:
			b, err := db.GetBlob(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", col.Name, err)
			}
			s := hex.EncodeToString(b[:min(len(b), maxBlobDump)])
			if len(b) > maxBlobDump {
				s += fmt.Sprintf("...(%d bytes)", len(b))
			}
			c.text, c.value = s, s
		case clrmeta.ColumnGUID:
			g, ok, err := db.GetGUID(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", col.Name, err)
			}
			if ok {
				c.text, c.value = g.String(), g.String()
			} else {
				c.text = "null"
			}
		case clrmeta.ColumnIndex:
			if v == 0 {
				c.text = "null"
			} else {
				c.text = fmt.Sprintf("%v[%d]", col.Target, v-1)
				c.value = c.text
			}
		case clrmeta.ColumnCodedIndex:
			c.text = clrmeta.CodedIndex{Scheme: col.Scheme, Raw: v}.String()
			c.value = c.text
		default:
			c.text, c.value = fmt.Sprintf("0x%X", v), v
		}
		cells[i] = c
	}
	return cells, nil
}
