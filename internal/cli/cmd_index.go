package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andreyvit/clrmeta"
	"github.com/andreyvit/clrmeta/catalog"
)

func newIndexCmd(a *app) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "index [FILE...]",
		Short: "Add images to the type catalog",
		Long: `Record the types and enums defined by each image in the catalog, replacing
anything previously indexed from the same path. Without arguments, the
references listed in the config file are indexed.`,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = a.cfg.References
			}
			if len(paths) == 0 {
				return errors.New("no files given and no references configured")
			}
			cat, err := a.catalog(true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var failed int
			for _, path := range paths {
				if remove {
					err = cat.Remove(path)
				} else {
					err = indexFile(a, cat, path, out)
				}
				if err != nil {
					a.logger.Error("index", "path", path, "err", err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(paths))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the files from the catalog instead")
	return cmd
}

func indexFile(a *app, cat *catalog.Catalog, path string, out io.Writer) error {
	db, err := clrmeta.OpenFile(path, clrmeta.Options{Logger: a.logger})
	if err != nil {
		return err
	}
	defer db.Close()
	src, err := cat.Index(db, path)
	if err != nil {
		return err
	}
	if a.format == "yaml" {
		return a.emit(out, src, nil)
	}
	_, err = fmt.Fprintf(out, "%s: %d types, %d enums (%s)\n", path, src.Types, src.Enums, src.Module)
	return err
}
