package main

import (
	"context"
	"fmt"
	"strconv"
	"translit/internal"

	"github.com/spf13/cobra"
)

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q: must be a positive integer", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Open the interactive history view",
	Long: `Open the interactive history view.

The list is loaded once and re-rendered whenever it changes. Type help
inside the session for the available commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, app *internal.App) error {
			return app.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the translation history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, app *internal.App) error {
			return app.Controller().List(ctx, cmd.OutOrStdout())
		})
	},
}

// --- delete ---

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete translations from the history",
	Long: `Delete translations from the history.

Deleting is irreversible and needs --yes. Every id is deleted
independently; the command fails if any of them failed.

Examples:
  translit delete 12 --yes
  translit delete 3 4 5 --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ deleting %d translation(s) cannot be undone, re-run with --yes\n", len(ids))
			return nil
		}
		return withApp(func(ctx context.Context, app *internal.App) error {
			return app.Controller().Delete(ctx, cmd.OutOrStdout(), ids)
		})
	},
}

// --- copy ---

var copyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Copy a translation to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, app *internal.App) error {
			return app.Controller().Copy(ctx, cmd.OutOrStdout(), ids[0])
		})
	},
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "confirm the delete")
}
