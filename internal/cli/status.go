package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := newClient().Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching status: %w", err)
	}
	if outputFormat == formatJSON {
		return writeJSON(cmd.OutOrStdout(), status)
	}

	printf(cmd, "Server:        %s\n", serverURL)
	if n, ok := status["total_vectors"].(float64); ok {
		printf(cmd, "Total vectors: %d\n", int(n))
	}
	if n, ok := status["disk_usage_bytes"].(float64); ok {
		printf(cmd, "Disk usage:    %s\n", formatBytes(int64(n)))
	}
	if n, ok := status["indices"].(float64); ok {
		printf(cmd, "Indices:       %d\n", int(n))
	}
	if c, ok := status["embedding_cache"].(map[string]interface{}); ok {
		entries, _ := c["entries"].(float64)
		hits, _ := c["hits"].(float64)
		misses, _ := c["misses"].(float64)
		printf(cmd, "Cache:         %d entries, %d hits, %d misses\n", int(entries), int(hits), int(misses))
	}
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
