package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/tui"
)

func newEditCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:          "edit",
		Short:        "Edit the layout interactively, preview and apply it",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			text, err := currentOutline(cmd.Context(), a.tree, a.cfg.RootParentID)
			if err != nil {
				return err
			}

			dialog := tui.NewApp(tui.AppParams{
				Text:     text,
				Simulate: a.restructurer.Simulate,
				Apply:    a.restructurer.Execute,
			})
			p := tea.NewProgram(dialog, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("run editor: %w", err)
			}

			res := final.(tui.App).Result()
			if res == nil {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			if !res.Success {
				return errors.New(res.Error)
			}
			return nil
		},
	}
}
