// Package cli implements the semindex command line: the server and a thin HTTP
// client for the rest of the API.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hyperjump/semindex/internal/config"
)

// DefaultConfigPath is where the server looks for its config file.
const DefaultConfigPath = "/usr/local/etc/semindex/config.yaml"

const defaultServerURL = "http://localhost:8080"

var (
	configPath   string
	serverURL    string
	outputFormat string
	debugFlag    bool
)

// NewRootCmd builds the semindex command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semindex",
		Short: "Vector similarity index and semantic search engine",
		Long: `semindex stores embeddings in named indices and answers similarity
queries over them: semantic search, clustering, recommendations, and
trend and gap analysis.

Run "semindex server" to start the HTTP API; the other commands talk to
a running server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != formatText && outputFormat != formatJSON {
				return fmt.Errorf("unknown output format %q; use text or json", outputFormat)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", DefaultConfigPath, "config file path")
	cmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL, "server URL")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "output format: text or json")
	cmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	cmd.AddCommand(
		NewServerCmd(),
		NewStatusCmd(),
		NewIndicesCmd(),
		NewAddCmd(),
		NewIndexFilesCmd(),
		NewSearchCmd(),
		NewSimilarCmd(),
		NewClustersCmd(),
		NewRecommendCmd(),
		NewTrendsCmd(),
		NewGapsCmd(),
		NewWatchCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads config from path. When path is the default and a config.yaml
// exists in the working directory, that file wins, so running from a project
// checkout picks up the project's config. Environment overrides are applied last.
// A missing default config file yields the built-in defaults. It returns the config
// and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == DefaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(local); err == nil {
				path = local
			}
		}
	}
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath {
		cfg, err = &config.Config{}, nil
		config.ApplyDefaults(cfg)
	}
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
