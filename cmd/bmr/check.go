package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/culler"
)

func newCheckCmd(open opener) *cobra.Command {
	var (
		concurrency int
		timeout     time.Duration
		exclude     []string
		moveTo      string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Find dead links, optionally moving them into a folder",
		Long: `Find dead links, optionally moving them into a folder.

With --move the dead bookmarks are gathered into the named folder through a
normal restructure run, so a snapshot is taken first.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			roots, err := a.tree.GetTree(ctx)
			if err != nil {
				return err
			}

			results := culler.CheckURLs(ctx, culler.Bookmarks(roots), culler.Options{
				Concurrency:    concurrency,
				Timeout:        timeout,
				ExcludeDomains: exclude,
				Logger:         a.logger,
				OnProgress: func(completed, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\rChecked %d/%d", completed, total)
				},
			})
			if len(results) > 0 {
				fmt.Fprintln(cmd.ErrOrStderr())
			}

			out := cmd.OutOrStdout()
			dead, unreachable := 0, 0
			for _, r := range results {
				switch r.Status {
				case culler.Dead:
					dead++
					fmt.Fprintf(out, "dead\t%d\t%s\t%s\n", r.StatusCode, r.Node.Title, r.Node.URL)
				case culler.Unreachable:
					unreachable++
					fmt.Fprintf(out, "unreachable\t%s\t%s\t%s\n", r.Error, r.Node.Title, r.Node.URL)
				}
			}
			fmt.Fprintf(out, "%d checked, %d dead, %d unreachable\n", len(results), dead, unreachable)

			if moveTo == "" || dead == 0 {
				return nil
			}
			res := a.restructurer.Execute(ctx, culler.DeadOutline(results, moveTo))
			fmt.Fprintln(out, res.Message)
			if !res.Success {
				return errors.New(res.Error)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 10, "parallel requests")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "domains where 404 means private, not dead")
	cmd.Flags().StringVar(&moveTo, "move", "", "folder to move dead links into")
	return cmd
}
