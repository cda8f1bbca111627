// Package indexer embeds files from disk into a named index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/semindex/internal/embedding"
	"github.com/hyperjump/semindex/internal/extract"
	"github.com/hyperjump/semindex/internal/fileid"
	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/search"
	"github.com/hyperjump/semindex/internal/vector"
)

// Metadata keys set on every file embedding.
const (
	MetaSourcePath  = "source_path"
	MetaSourceMtime = "source_mtime"
	MetaSourceSize  = "source_size"
	MetaFileName    = "file_name"
)

// Indexer turns files into embeddings in one index. A file's id is derived from its
// absolute path, so re-indexing replaces the previous embedding.
type Indexer struct {
	engine     *search.Engine
	extractor  *extract.Extractor
	index      string
	extensions []string
	logger     *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a logger for debug output (file indexed, file skipped, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// WithExtensions restricts indexing to the given extensions (case-insensitive, the
// leading dot optional). Empty allows every file.
func WithExtensions(exts []string) Option {
	return func(idx *Indexer) { idx.extensions = exts }
}

// NewIndexer creates an indexer writing into indexName. extractor may be nil, in
// which case a default extractor is used.
func NewIndexer(engine *search.Engine, extractor *extract.Extractor, indexName string, opts ...Option) *Indexer {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	idx := &Indexer{
		engine:    engine,
		extractor: extractor,
		index:     indexName,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Index returns the name of the target index.
func (idx *Indexer) Index() string {
	return idx.index
}

// EnsureIndex creates the target index if it does not exist yet.
func (idx *Indexer) EnsureIndex(dimension int, metric string) error {
	if _, ok := idx.engine.GetIndexStats(idx.index); ok {
		return nil
	}
	_, err := idx.engine.CreateIndex(idx.index, dimension, metric)
	if err != nil && !errors.Is(err, vector.ErrDuplicateIndex) {
		return err
	}
	return nil
}

// IndexFile extracts and embeds the file at path. Files already indexed with the same
// path, mtime, and size are skipped. Files with no extractable text are removed from
// the index instead.
func (idx *Indexer) IndexFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(idx.extensions) > 0 && !extensionAllowed(ext, idx.extensions) {
		return fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}

	id := fileid.ForPath(absPath)
	if idx.unchanged(id, absPath, info) {
		idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
		return nil
	}

	doc, err := idx.extractor.Extract(absPath)
	if err != nil {
		return fmt.Errorf("extract content: %w", err)
	}
	content := doc.Content
	if doc.ContentType == models.ContentTypeText || doc.ContentType == models.ContentTypeDocument {
		content = Preprocess(content)
	}
	if content == "" {
		idx.logger.Debug("indexer skipping empty file", zap.String("path", absPath))
		return idx.remove(id)
	}

	input := &models.ContentInput{
		ID:          id,
		Content:     content,
		ContentType: doc.ContentType,
		Timestamp:   info.ModTime(),
		Metadata: models.Metadata{
			MetaSourcePath: models.String(absPath),
			MetaFileName:   models.String(filepath.Base(absPath)),
			// UnixNano exceeds float64 precision, so the mtime is kept as a string.
			MetaSourceMtime: models.String(strconv.FormatInt(info.ModTime().UnixNano(), 10)),
			MetaSourceSize:  models.Number(float64(info.Size())),
		},
	}
	if _, err := idx.engine.AddContent(ctx, idx.index, input); err != nil {
		return err
	}
	idx.logger.Debug("indexer file indexed", zap.String("path", absPath), zap.String("id", id),
		zap.String("content_type", string(doc.ContentType)))
	return nil
}

// unchanged reports whether id is already indexed from absPath with the same mtime and size.
func (idx *Indexer) unchanged(id, absPath string, info os.FileInfo) bool {
	emb, err := idx.engine.GetEmbedding(idx.index, id)
	if err != nil {
		return false
	}
	m := emb.Metadata
	if m[MetaSourcePath].Str != absPath {
		return false
	}
	mtime, err := strconv.ParseInt(m[MetaSourceMtime].Str, 10, 64)
	if err != nil || mtime != info.ModTime().UnixNano() {
		return false
	}
	return int64(m[MetaSourceSize].Num) == info.Size()
}

// IndexDirectory walks dir recursively and indexes every allowed regular file. Files
// the embedder cannot handle are skipped; any other failure stops the walk. It returns
// the number of files indexed.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(idx.extensions) > 0 && !extensionAllowed(filepath.Ext(path), idx.extensions) {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		if indexErr := idx.IndexFile(ctx, path); indexErr != nil {
			if errors.Is(indexErr, embedding.ErrUnsupportedContentType) {
				idx.logger.Debug("indexer skipping unsupported file", zap.String("path", path), zap.Error(indexErr))
				return nil
			}
			return indexErr
		}
		n++
		return nil
	})
	return n, err
}

// RemoveFile deletes the embedding for path. A file that was never indexed is not an error.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	idx.logger.Debug("indexer removing file", zap.String("path", absPath))
	return idx.remove(fileid.ForPath(absPath))
}

func (idx *Indexer) remove(id string) error {
	err := idx.engine.DeleteEmbedding(idx.index, id)
	if err != nil && !errors.Is(err, vector.ErrVectorNotFound) {
		return err
	}
	return nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
