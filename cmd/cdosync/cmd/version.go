package cmd

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cdosync/internal/schema"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the build version, the VCS revision it was built from, and the
entity presets compiled into this binary.`,
	Run: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	info, _ := debug.ReadBuildInfo()
	cmd.Printf("cdosync version %s\n", Version)
	cmd.Printf("  Commit: %s\n", buildCommit(Commit, info))
	cmd.Printf("  Go version: %s\n", runtime.Version())
	cmd.Printf("  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	cmd.Printf("  Entity presets: %s\n", strings.Join(schema.Entities(), ", "))
}

// buildCommit prefers the ldflags commit and falls back to the revision the
// go tool stamped into the binary.
func buildCommit(commit string, info *debug.BuildInfo) string {
	if commit != "" && commit != "unknown" {
		return commit
	}
	if info == nil {
		return "unknown"
	}
	var rev, dirty string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if rev == "" {
		return "unknown"
	}
	return rev + dirty
}
