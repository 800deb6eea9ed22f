package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotUser string

// snapshotCmd groups the saved-progress subcommands.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect or clear saved wizard progress",
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a user's restorable snapshot as JSON",
	RunE:  runSnapshotShow,
}

var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete a user's saved progress",
	RunE:  runSnapshotClear,
}

func init() {
	for _, c := range []*cobra.Command{snapshotShowCmd, snapshotClearCmd} {
		c.Flags().StringVarP(&snapshotUser, "user", "u", "", "user id")
		_ = c.MarkFlagRequired("user")
		snapshotCmd.AddCommand(c)
	}
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	store, closeFn, err := openSnapshots(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	snap := store.Restore(ctx, snapshotUser)
	if snap == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "no restorable snapshot for %s\n", snapshotUser)
		return nil
	}
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runSnapshotClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	store, closeFn, err := openSnapshots(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	store.Clear(ctx, snapshotUser)
	fmt.Fprintf(cmd.OutOrStdout(), "cleared snapshot for %s\n", snapshotUser)
	return nil
}
