package cli

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			version, goVersion, revision, dirty := buildInfo()
			cmd.Printf("mdnav %s\n", version)
			cmd.Printf("  Go version: %s\n", goVersion)
			cmd.Printf("  Revision:   %s\n", revision)
			if dirty {
				cmd.Printf("  Modified:   true\n")
			}
		},
	}
}

func buildInfo() (version, goVersion, revision string, dirty bool) {
	version, goVersion, revision = "unknown", "unknown", "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}
