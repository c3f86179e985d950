package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newApplyCmd(open opener) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply [file]",
		Short: "Restructure bookmarks to match an outline file",
		Long: `Restructure bookmarks to match an outline file.

Reads the outline from file, or from stdin when file is "-" or omitted.
With --dry-run the planned operations are printed and nothing changes.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readOutline(cmd, args)
			if err != nil {
				return err
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if dryRun {
				plan, err := a.restructurer.Simulate(ctx, text)
				if err != nil {
					return err
				}
				if len(plan.Operations) == 0 {
					fmt.Fprintln(out, "Nothing to do")
				} else {
					fmt.Fprint(out, plan.Describe())
				}
				for _, w := range plan.Warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", w.Title, w.Message)
				}
				return nil
			}

			res := a.restructurer.Execute(ctx, text)
			fmt.Fprintln(out, res.Message)
			if !res.Success {
				if res.SnapshotID != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "snapshot: %s\n", res.SnapshotID)
				}
				return errors.New(res.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without changing anything")
	return cmd
}

func readOutline(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read outline: %w", err)
	}
	return string(data), nil
}
