package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/pkg/utils"
)

var (
	addID          string
	addContentType string
	addMetadata    []string
)

// NewAddCmd creates the add command.
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <index> <content>",
		Short: "Embed content and add it to an index",
		Long: `Embed content with the server's embedding provider and store it.

Metadata values that parse as JSON keep their type.

Examples:
  semindex add docs "How do I reset my password?" --id faq-1
  semindex add docs "Intro to goroutines" --metadata category=tutorial --metadata difficulty=beginner
  semindex add media /srv/media/talk.mp4 --type video`,
		Args: cobra.ExactArgs(2),
		RunE: runAdd,
	}
	cmd.Flags().StringVar(&addID, "id", "", "embedding id (generated when empty)")
	cmd.Flags().StringVar(&addContentType, "type", string(models.ContentTypeText), "content type: text, image, audio, video or document")
	cmd.Flags().StringArrayVar(&addMetadata, "metadata", nil, "metadata as key=value (repeatable)")
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ct, err := models.ParseContentType(addContentType)
	if err != nil {
		return err
	}
	meta, err := parseMetadata(addMetadata)
	if err != nil {
		return err
	}
	emb, err := newClient().AddContent(cmd.Context(), args[0], &models.ContentInput{
		ID:          addID,
		Content:     args[1],
		ContentType: ct,
		Metadata:    meta,
	})
	if err != nil {
		return fmt.Errorf("adding content: %w", err)
	}
	if outputFormat == formatJSON {
		return writeJSON(cmd.OutOrStdout(), emb)
	}
	printf(cmd, "Added %s to %s\n", emb.ID, args[0])
	return nil
}

// NewIndexFilesCmd creates the index-files command.
func NewIndexFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index-files <path>",
		Short: "Index a file or directory straight into the snapshot database",
		Long: `Extract, embed and store files without a running server. The result is
written to the snapshot database, so snapshots must be enabled in the config.
Stop the server first: it overwrites snapshots on shutdown.

Examples:
  semindex index-files ~/notes
  semindex index-files report.pdf --config ./config.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runIndexFiles,
	}
}

func runIndexFiles(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Storage.SnapshotEnabled {
		return fmt.Errorf("snapshots are disabled; set storage.snapshot_enabled to keep indexed files")
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	n := 1
	if info.IsDir() {
		n, err = components.Indexer.IndexDirectory(ctx, args[0])
	} else {
		err = components.Indexer.IndexFile(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("indexing %s: %w", args[0], err)
	}

	index := components.Indexer.Index()
	snap, embs, err := components.Engine.Store().Export(index)
	if err != nil {
		return err
	}
	if err := components.Storage.SaveIndex(ctx, snap, embs); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	logger.Debug("index-files done", zap.String("index", index), zap.Int("files", n))
	printf(cmd, "Indexed %d file(s) into %s (%d vectors)\n", n, index, len(embs))
	return nil
}
