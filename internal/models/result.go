package models

// SearchResult is a single ranked hit, carrying enough to render without a second lookup.
type SearchResult struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	Similarity  float64     `json:"similarity"`
	Metadata    Metadata    `json:"metadata,omitempty"`
	ContentType ContentType `json:"content_type"`
}

// Cluster is a group of embeddings produced on demand. It is never persisted.
type Cluster struct {
	ID        int          `json:"id"`
	Members   []*Embedding `json:"members"`
	Centroid  []float32    `json:"centroid"`
	Coherence float64      `json:"coherence"`
	Topics    []string     `json:"topics"`
}

// Recommendation is a ranked, explained match against a profile.
type Recommendation struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	Relevance   float64     `json:"relevance"`
	Similarity  float64     `json:"similarity"`
	Metadata    Metadata    `json:"metadata,omitempty"`
	ContentType ContentType `json:"content_type"`
	Reasons     []string    `json:"reasons"`
}

// Trend is a cluster of recent content.
type Trend struct {
	Topics    []string `json:"topics"`
	Size      int      `json:"size"`
	Coherence float64  `json:"coherence"`
	Examples  []string `json:"examples"`
}

// Gap is a target topic that no existing content covers well enough.
type Gap struct {
	Topic            string  `json:"topic"`
	BestMatchID      string  `json:"best_match_id,omitempty"`
	BestMatchContent string  `json:"best_match_content,omitempty"`
	Similarity       float64 `json:"similarity"`
	Severity         float64 `json:"severity"`
}
