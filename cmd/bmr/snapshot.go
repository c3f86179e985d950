package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage snapshots of the bookmark tree",
	}
	cmd.AddCommand(
		newSnapshotListCmd(open),
		newSnapshotCreateCmd(open),
		newSnapshotRestoreCmd(open),
		newSnapshotPruneCmd(open),
		newSnapshotDeleteCmd(open),
	)
	return cmd
}

func newSnapshotListCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List snapshots, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			snaps, err := a.snapshots.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "NAME", "CREATED")
			for _, s := range snaps {
				t.Row(s.ID, s.Name, s.Timestamp.Local().Format(time.DateTime))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
}

func newSnapshotCreateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:          "create [name]",
		Short:        "Take a snapshot of the current tree",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.snapshots.Create(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created snapshot %s (%s)\n", snap.ID, snap.Name)
			return nil
		},
	}
}

func newSnapshotRestoreCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:          "restore <id>",
		Short:        "Restore the tree from a snapshot",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := a.snapshots.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("snapshot %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %s\n", args[0])
			return nil
		},
	}
}

func newSnapshotPruneCmd(open opener) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:          "prune",
		Short:        "Delete all but the newest snapshots",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.snapshots.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d snapshots\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "snapshots to keep (default from config)")
	return cmd
}

func newSnapshotDeleteCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:          "delete <id>",
		Short:        "Delete a snapshot",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.snapshots.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", args[0])
			return nil
		},
	}
}
