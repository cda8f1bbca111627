package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/semindex/internal/models"
)

func newClient() *Client {
	return NewClient(serverURL)
}

func validatePositiveInt(value int, name string) error {
	if value <= 0 {
		return fmt.Errorf("--%s must be positive, got %d", name, value)
	}
	return nil
}

// parseMetadata turns key=value pairs into metadata. A value that parses as JSON
// keeps its JSON type (numbers, booleans, lists); anything else is a string.
func parseMetadata(pairs []string) (models.Metadata, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(models.Metadata, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: want key=value", pair)
		}
		var v models.Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = models.String(raw)
		}
		m[key] = v
	}
	return m, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func printf(cmd *cobra.Command, format string, a ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}
