package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command and its subcommands.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage directories the server watches",
		Long: `Watched directories are kept in sync with the server's file index.
Changes are written back to the server's config file.

Examples:
  semindex watch list
  semindex watch add ~/notes
  semindex watch remove ~/notes`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List watched directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := newClient().WatchDirectories(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing watch directories: %w", err)
			}
			if outputFormat == formatJSON {
				return writeJSON(cmd.OutOrStdout(), map[string][]string{"directories": dirs})
			}
			if len(dirs) == 0 {
				printf(cmd, "No watched directories\n")
				return nil
			}
			for _, d := range dirs {
				printf(cmd, "%s\n", d)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <path>",
		Short: "Watch a directory and index its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := newClient().AddWatchDirectory(cmd.Context(), abs); err != nil {
				return fmt.Errorf("adding watch directory: %w", err)
			}
			printf(cmd, "Watching %s\n", abs)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <path>",
		Short: "Stop watching a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := newClient().RemoveWatchDirectory(cmd.Context(), abs); err != nil {
				return fmt.Errorf("removing watch directory: %w", err)
			}
			printf(cmd, "Stopped watching %s\n", abs)
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
