package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/search"
)

var (
	clusterK           int
	recommendLimit     int
	recommendInterests []string
	recommendSkill     string
	recommendProfile   []string
	trendsTimeframe    string
)

// NewClustersCmd creates the clusters command.
func NewClustersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clusters <index>",
		Short: "Group an index into k clusters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(clusterK, "k"); err != nil {
				return err
			}
			clusters, err := newClient().Clusters(cmd.Context(), args[0], clusterK)
			if err != nil {
				return fmt.Errorf("clustering: %w", err)
			}
			return WriteClusters(cmd.OutOrStdout(), clusters, outputFormat)
		},
	}
	cmd.Flags().IntVarP(&clusterK, "k", "k", 5, "number of clusters")
	return cmd
}

// NewRecommendCmd creates the recommend command.
func NewRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <index>",
		Short: "Recommend content for a user profile",
		Long: `Rank content against a profile built from interests, a skill level and
any extra key=value attributes.

Examples:
  semindex recommend courses --interest go --interest databases --skill beginner
  semindex recommend courses --profile role=backend --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: runRecommend,
	}
	cmd.Flags().IntVar(&recommendLimit, "limit", 10, "maximum recommendations")
	cmd.Flags().StringSliceVar(&recommendInterests, "interest", nil, "profile interests")
	cmd.Flags().StringVar(&recommendSkill, "skill", "", "profile skill level")
	cmd.Flags().StringArrayVar(&recommendProfile, "profile", nil, "extra profile attribute as key=value (repeatable)")
	return cmd
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(recommendLimit, "limit"); err != nil {
		return err
	}
	profile, err := parseMetadata(recommendProfile)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = models.Metadata{}
	}
	if len(recommendInterests) > 0 {
		profile[search.ProfileInterests] = models.Strings(recommendInterests...)
	}
	if recommendSkill != "" {
		profile[search.ProfileSkillLevel] = models.String(recommendSkill)
	}
	if len(profile) == 0 {
		return fmt.Errorf("profile is empty; pass --interest, --skill or --profile")
	}
	recs, err := newClient().Recommend(cmd.Context(), args[0], profile, recommendLimit)
	if err != nil {
		return fmt.Errorf("recommending: %w", err)
	}
	return WriteRecommendations(cmd.OutOrStdout(), recs, outputFormat)
}

// NewTrendsCmd creates the trends command.
func NewTrendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends <index>",
		Short: "Cluster recent content into trends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trends, err := newClient().Trends(cmd.Context(), args[0], trendsTimeframe)
			if err != nil {
				return fmt.Errorf("detecting trends: %w", err)
			}
			return WriteTrends(cmd.OutOrStdout(), trends, outputFormat)
		},
	}
	cmd.Flags().StringVar(&trendsTimeframe, "timeframe", "7d", "window of recent content: 1d, 7d or 30d")
	return cmd
}

// NewGapsCmd creates the gaps command.
func NewGapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gaps <index> <topic...>",
		Short: "Report target topics the index does not cover",
		Long: `Each argument is one target topic. Quote multi-word topics.

Examples:
  semindex gaps docs "password reset" "refund policy" onboarding`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gaps, err := newClient().Gaps(cmd.Context(), args[0], args[1:])
			if err != nil {
				return fmt.Errorf("analyzing gaps: %w", err)
			}
			return WriteGaps(cmd.OutOrStdout(), gaps, outputFormat)
		},
	}
}
