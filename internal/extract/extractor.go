// Package extract turns files on disk into content for embedding. Document formats
// are reduced to plain text; media files are passed through by path.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/semindex/internal/models"
)

// Document is the result of extracting one file.
type Document struct {
	Content     string
	ContentType models.ContentType
}

type textFunc func(content []byte) (string, error)

var textFormats = map[string]textFunc{
	".txt":  extractPlain,
	".md":   extractPlain,
	".rst":  extractPlain,
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".pptx": extractPPTX,
	".odp":  extractODP,
	".ods":  extractODS,
	".xlsx": extractExcel,
	".odt":  extractWithCat(".odt"),
	".rtf":  extractWithCat(".rtf"),
}

var mediaTypes = map[string]models.ContentType{
	".png":  models.ContentTypeImage,
	".jpg":  models.ContentTypeImage,
	".jpeg": models.ContentTypeImage,
	".gif":  models.ContentTypeImage,
	".webp": models.ContentTypeImage,
	".mp3":  models.ContentTypeAudio,
	".wav":  models.ContentTypeAudio,
	".flac": models.ContentTypeAudio,
	".ogg":  models.ContentTypeAudio,
	".mp4":  models.ContentTypeVideo,
	".mov":  models.ContentTypeVideo,
	".mkv":  models.ContentTypeVideo,
	".webm": models.ContentTypeVideo,
}

// ContentTypeFor classifies a path by extension. Plain text formats are text, other
// extractable formats are documents, known media extensions map to their media type.
// Anything else is treated as text.
func ContentTypeFor(path string) models.ContentType {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := mediaTypes[ext]; ok {
		return ct
	}
	switch ext {
	case ".txt", ".md", ".rst", "":
		return models.ContentTypeText
	}
	if _, ok := textFormats[ext]; ok {
		return models.ContentTypeDocument
	}
	return models.ContentTypeText
}

// Extractor reads files and returns their embeddable content.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path. Media files are not read: their content is the
// absolute path, which media-capable embedders resolve themselves.
func (e *Extractor) Extract(path string) (*Document, error) {
	ct := ContentTypeFor(path)
	if ct == models.ContentTypeImage || ct == models.ContentTypeAudio || ct == models.ContentTypeVideo {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("stat file: %w", err)
		}
		return &Document{Content: abs, ContentType: ct}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	text, err := e.ExtractBytes(content, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return &Document{Content: text, ContentType: ct}, nil
}

// ExtractBytes extracts text from content using the format named by ext (leading dot
// included). Unknown extensions are read as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	fn, ok := textFormats[strings.ToLower(ext)]
	if !ok {
		fn = extractPlain
	}
	return fn(content)
}
