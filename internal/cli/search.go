package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/semindex/internal/models"
)

var (
	searchLimit     int
	searchThreshold float64
	searchTypes     []string
	searchFilters   []string
	similarLimit    int
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <index> <query...>",
		Short: "Semantic search over an index",
		Long: `Embed the query and return the most similar content.

The query is all remaining arguments joined by spaces, so quoting is optional.

Examples:
  semindex search docs reset password
  semindex search docs "billing cycle" --limit 5 --threshold 0.6
  semindex search docs onboarding --type text --filter category=tutorial`,
		Args: cobra.MinimumNArgs(2),
		RunE: runSearch,
	}
	cmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results")
	cmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity (0 keeps everything)")
	cmd.Flags().StringSliceVar(&searchTypes, "type", nil, "allowed content types")
	cmd.Flags().StringArrayVar(&searchFilters, "filter", nil, "metadata filter as key=value (repeatable)")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}
	query := &models.SearchQuery{Text: joinArgs(args[1:]), Limit: searchLimit}
	if query.Text == "" {
		return fmt.Errorf("query is empty")
	}
	if cmd.Flags().Changed("threshold") {
		t := searchThreshold
		query.Threshold = &t
	}
	for _, raw := range searchTypes {
		ct, err := models.ParseContentType(raw)
		if err != nil {
			return err
		}
		query.ContentTypes = append(query.ContentTypes, ct)
	}
	filters, err := parseMetadata(searchFilters)
	if err != nil {
		return err
	}
	query.Filters = filters

	results, err := newClient().Search(cmd.Context(), args[0], query)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}
	return WriteSearchResults(cmd.OutOrStdout(), results, outputFormat)
}

// NewSimilarCmd creates the similar command.
func NewSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <index> <id>",
		Short: "Find content similar to a stored embedding",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(similarLimit, "limit"); err != nil {
				return err
			}
			results, err := newClient().FindSimilar(cmd.Context(), args[0], args[1], similarLimit)
			if err != nil {
				return fmt.Errorf("finding similar: %w", err)
			}
			return WriteSearchResults(cmd.OutOrStdout(), results, outputFormat)
		},
	}
	cmd.Flags().IntVar(&similarLimit, "limit", 10, "maximum results")
	return cmd
}
