// Command bmr reshapes a bookmark tree to match an outline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, injected at build time.
var Version = "dev"

func main() {
	root := NewRootCmd()
	root.Version = Version
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd creates the root bmr command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "bmr",
		Short: "bmr - restructure bookmarks from an indented outline",
		Long: `bmr - restructure bookmarks from an indented outline

Write the layout you want, one entry per line:

  Dev/
    Go https://go.dev
    Rust https://rust-lang.org
  Reading/
    Blog https://example.com/blog

Folders end with "/", children are indented. bmr moves existing bookmarks
and folders into place, creating missing folders. A snapshot is taken
before every run and restored automatically if anything fails.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/bmr/config.json)")

	open := func(cmd *cobra.Command) (*app, error) {
		return openApp(configPath, cmd.ErrOrStderr())
	}

	root.AddCommand(
		newOutlineCmd(open),
		newApplyCmd(open),
		newEditCmd(open),
		newSnapshotCmd(open),
		newImportCmd(open),
		newExportCmd(open),
		newSearchCmd(open),
		newCheckCmd(open),
		newServeCmd(open),
		newMCPCmd(open),
	)
	return root
}
