package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/exporter"
	"github.com/nikbrunner/bmr/internal/importer"
	"github.com/nikbrunner/bmr/internal/model"
)

func newImportCmd(open opener) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:          "import <file.html>",
		Short:        "Import bookmarks from a browser HTML export",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer file.Close()

			nodes, err := importer.ParseHTML(file)
			if err != nil {
				return fmt.Errorf("parse HTML: %w", err)
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, _, err := importer.ImportWithSnapshot(cmd.Context(), a.tree, a.snapshots, parentID, nodes)
			if err != nil {
				return err
			}
			if _, err := a.snapshots.Prune(cmd.Context(), a.cfg.MaxSnapshots); err != nil {
				a.logger.Warn("import: prune snapshots", "error", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks, %d folders\n", stats.Bookmarks, stats.Folders)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", model.OtherID, "folder id to import into")
	return cmd
}

func newExportCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:          "export [path]",
		Short:        "Export bookmarks to a browser HTML file",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var outputPath string
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				var err error
				outputPath, err = exporter.DefaultExportPath()
				if err != nil {
					return fmt.Errorf("default export path: %w", err)
				}
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			roots, err := a.tree.GetTree(cmd.Context())
			if err != nil {
				return err
			}

			if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(roots)), 0644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}

			folders, bookmarks := 0, 0
			model.Walk(roots, func(n *model.Node) bool {
				switch {
				case model.IsReserved(n.ID):
				case n.IsFolder():
					folders++
				default:
					bookmarks++
				}
				return true
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks, %d folders to %s\n", bookmarks, folders, outputPath)
			return nil
		},
	}
}
