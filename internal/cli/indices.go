package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/semindex/internal/models"
)

var (
	indexDimension int
	indexMetric    string
)

// NewIndicesCmd creates the indices command and its subcommands.
func NewIndicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indices",
		Short: "Manage indices",
		Long: `List, create, drop and snapshot indices.

Examples:
  semindex indices list
  semindex indices create docs --dimension 384 --metric cosine
  semindex indices snapshot docs
  semindex indices drop docs`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := newClient().ListIndices(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing indices: %w", err)
			}
			return WriteIndices(cmd.OutOrStdout(), indices, outputFormat)
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(indexDimension, "dimension"); err != nil {
				return err
			}
			if _, err := models.ParseMetric(indexMetric); err != nil {
				return err
			}
			info, err := newClient().CreateIndex(cmd.Context(), args[0], indexDimension, indexMetric)
			if err != nil {
				return fmt.Errorf("creating index: %w", err)
			}
			if outputFormat == formatJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			printf(cmd, "Created index %s (%d dimensions, %s)\n", info.Name, info.Dimension, info.Metric)
			return nil
		},
	}
	create.Flags().IntVar(&indexDimension, "dimension", 384, "vector dimension")
	create.Flags().StringVar(&indexMetric, "metric", string(models.MetricCosine), "similarity metric: cosine, euclidean or dot_product")

	drop := &cobra.Command{
		Use:   "drop <name>",
		Short: "Drop an index and its snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DropIndex(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("dropping index: %w", err)
			}
			printf(cmd, "Dropped index %s\n", args[0])
			return nil
		},
	}

	snapshot := &cobra.Command{
		Use:   "snapshot <name>",
		Short: "Persist an index to the snapshot database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Snapshot(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("saving snapshot: %w", err)
			}
			printf(cmd, "Saved snapshot of %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, drop, snapshot)
	return cmd
}
