package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/picker"
)

func newSearchCmd(open opener) *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:          "search <query>",
		Short:        "Fuzzy search bookmarks and folders by title",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			nodes, err := a.tree.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No bookmarks found for '%s'\n", query)
				return nil
			}

			for _, n := range nodes {
				if n.IsFolder() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s/\n", n.ID, n.Title)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", n.ID, n.Title, n.URL)
				}
			}

			if !pick {
				return nil
			}
			var bookmarks []model.Node
			for _, n := range nodes {
				if !n.IsFolder() {
					bookmarks = append(bookmarks, n)
				}
			}
			if len(bookmarks) == 0 {
				return nil
			}

			selected := &bookmarks[0]
			if len(bookmarks) > 1 {
				final, err := tea.NewProgram(picker.New(bookmarks, query)).Run()
				if err != nil {
					return fmt.Errorf("run picker: %w", err)
				}
				selected = final.(picker.Picker).Selected()
			}
			if selected != nil {
				openURL(selected.URL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pick, "open", false, "pick a bookmark match and open it in the browser")
	return cmd
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
