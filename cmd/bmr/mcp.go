package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/mcpserver"
)

func newMCPCmd(open opener) *cobra.Command {
	var readOnly bool

	cmd := &cobra.Command{
		Use:          "mcp",
		Short:        "Serve restructure tools to an MCP client over stdio",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcpserver.New(a.tree, a.restructurer, a.snapshots, mcpserver.Options{
				Version:      cmd.Root().Version,
				RootParentID: a.cfg.RootParentID,
				ReadOnly:     readOnly,
			})
			a.logger.Info("mcp: serving on stdio", "read_only", readOnly)
			return srv.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "leave out tools that change bookmarks")
	return cmd
}
