package main

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/outline"
	"github.com/nikbrunner/bmr/internal/tree"
)

func newOutlineCmd(open opener) *cobra.Command {
	var (
		parentID string
		copyOut  bool
	)

	cmd := &cobra.Command{
		Use:          "outline",
		Short:        "Print the current layout as an editable outline",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if parentID == "" {
				parentID = a.cfg.RootParentID
			}
			text, err := currentOutline(cmd.Context(), a.tree, parentID)
			if err != nil {
				return err
			}

			if copyOut {
				if err := clipboard.WriteAll(text); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Outline copied to clipboard")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "folder id to render (default from config)")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy to the clipboard instead of printing")
	return cmd
}

// currentOutline renders the children of parentID.
func currentOutline(ctx context.Context, svc tree.Service, parentID string) (string, error) {
	roots, err := svc.GetTree(ctx)
	if err != nil {
		return "", fmt.Errorf("read tree: %w", err)
	}
	parent := model.Find(roots, parentID)
	if parent == nil || !parent.IsFolder() {
		return "", fmt.Errorf("folder %s: %w", parentID, tree.ErrNotFound)
	}
	return outline.Render(parent.Children), nil
}
