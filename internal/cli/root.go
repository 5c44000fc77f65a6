// Package cli implements the mdnav command line: a presentation layer over
// clrmeta and the type catalog.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/andreyvit/clrmeta"
	"github.com/andreyvit/clrmeta/catalog"
	"github.com/andreyvit/clrmeta/internal/config"
)

type app struct {
	configPath  string
	logLevel    string
	catalogPath string
	format      string

	cfg    *config.Config
	logger *slog.Logger
	cat    *catalog.Catalog
}

// NewRootCmd builds the mdnav command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mdnav",
		Short: "Inspect ECMA-335 metadata in .winmd and .dll files",
		Long: `mdnav reads the metadata tables, heaps and signatures of CLI images.

Enums used by custom attributes are resolved through a catalog of indexed
images; run "mdnav index" over your reference .winmd files first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	a.registerFlags(root.PersistentFlags())

	root.AddCommand(
		newTablesCmd(a),
		newDumpCmd(a),
		newTypesCmd(a),
		newAttrsCmd(a),
		newIndexCmd(a),
		newResolveCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) registerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvPath+" or the user config dir)")
	fs.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&a.catalogPath, "catalog", "", "type catalog database")
	fs.StringVarP(&a.format, "format", "o", "text", "output format: text or yaml")
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup(stderr io.Writer) error {
	path, required := a.configPath, true
	if path == "" {
		path, required = config.DefaultPath(), false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.catalogPath != "" {
		cfg.Catalog = a.catalogPath
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if a.format != "text" && a.format != "yaml" {
		return fmt.Errorf("unsupported format: %s", a.format)
	}
	a.cfg = cfg
	a.logger = newLogger(stderr, level)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
		w = colorable.NewColorable(f)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	}))
}

// run closes anything the command opened once it returns.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.closeCatalog()
		return fn(cmd, args)
	}
}

// catalog opens the configured catalog. Read-only opens of a missing catalog
// return nil without error.
func (a *app) catalog(writable bool) (*catalog.Catalog, error) {
	if a.cat != nil {
		return a.cat, nil
	}
	path := a.cfg.Catalog
	if writable {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		a.logger.Debug("no catalog, cross-image enums will not resolve", "path", path)
		return nil, nil
	}
	cat, err := catalog.Open(path, catalog.Options{Logger: a.logger, ReadOnly: !writable})
	if err != nil {
		return nil, err
	}
	a.cat = cat
	return cat, nil
}

func (a *app) closeCatalog() {
	if a.cat == nil {
		return
	}
	if err := a.cat.Close(); err != nil {
		a.logger.Warn("closing catalog", "err", err)
	}
	a.cat = nil
}

// openImage opens a metadata file with the catalog as its resolver.
func (a *app) openImage(path string) (*clrmeta.Database, error) {
	opt := clrmeta.Options{Logger: a.logger}
	cat, err := a.catalog(false)
	if err != nil {
		return nil, err
	}
	if cat != nil {
		opt.Resolver = cat
	}
	return clrmeta.OpenFile(path, opt)
}

// rowErrors counts per-row failures that were reported and skipped.
type rowErrors struct {
	logger *slog.Logger
	n      int
}

func (e *rowErrors) report(what fmt.Stringer, err error) {
	e.n++
	e.logger.Error("skipping", "row", what.String(), "err", err)
}

func (e *rowErrors) err() error {
	if e.n == 0 {
		return nil
	}
	return fmt.Errorf("%d rows could not be decoded", e.n)
}
