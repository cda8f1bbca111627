// Package models defines core data structures for indices, embeddings, queries, and results.
package models

import (
	"fmt"
	"strings"
	"time"
)

// ContentType is the kind of content an embedding represents.
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeImage    ContentType = "image"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeVideo    ContentType = "video"
	ContentTypeDocument ContentType = "document"
)

// ParseContentType returns the ContentType for s (case-insensitive). Empty means text.
func ParseContentType(s string) (ContentType, error) {
	switch ct := ContentType(strings.ToLower(strings.TrimSpace(s))); ct {
	case "":
		return ContentTypeText, nil
	case ContentTypeText, ContentTypeImage, ContentTypeAudio, ContentTypeVideo, ContentTypeDocument:
		return ct, nil
	default:
		return "", fmt.Errorf("unknown content type: %s (supported: text, image, audio, video, document)", s)
	}
}

// Metric is the similarity function an index applies to every comparison.
type Metric string

const (
	MetricCosine     Metric = "cosine"
	MetricEuclidean  Metric = "euclidean"
	MetricDotProduct Metric = "dot_product"
)

// ParseMetric returns the Metric for s. Empty defaults to cosine.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MetricCosine, nil
	case MetricCosine, MetricEuclidean, MetricDotProduct:
		return m, nil
	default:
		return "", fmt.Errorf("unknown metric: %s (supported: cosine, euclidean, dot_product)", s)
	}
}

// Embedding is a single indexed unit: a vector plus the content it represents.
type Embedding struct {
	ID          string      `json:"id"`
	Vector      []float32   `json:"vector"`
	Content     string      `json:"content"`
	ContentType ContentType `json:"content_type"`
	Metadata    Metadata    `json:"metadata,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Clone returns a copy that shares no slices or maps with e.
func (e *Embedding) Clone() *Embedding {
	out := *e
	out.Vector = append([]float32(nil), e.Vector...)
	out.Metadata = e.Metadata.Clone()
	return &out
}

// ContentInput is raw content submitted for embedding and storage.
// A zero Timestamp means "now".
type ContentInput struct {
	ID          string      `json:"id,omitempty"`
	Content     string      `json:"content"`
	ContentType ContentType `json:"content_type,omitempty"`
	Metadata    Metadata    `json:"metadata,omitempty"`
	Timestamp   time.Time   `json:"timestamp,omitempty"`
}

// IndexInfo describes a named index. TotalVectors is recomputed on every mutation.
type IndexInfo struct {
	Name         string    `json:"name"`
	Dimension    int       `json:"dimension"`
	Metric       Metric    `json:"metric"`
	TotalVectors int       `json:"total_vectors"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
