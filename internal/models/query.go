package models

import "fmt"

// SearchQuery is a semantic search request against one index.
// Either Vector or Text must be set; Text is embedded when Vector is empty.
type SearchQuery struct {
	Vector       []float32     `json:"vector,omitempty"`
	Text         string        `json:"text,omitempty"`
	Filters      Metadata      `json:"filters,omitempty"`
	ContentTypes []ContentType `json:"content_types,omitempty"`
	Threshold    *float64      `json:"threshold,omitempty"`
	Limit        int           `json:"limit,omitempty"`
}

// Validate checks the query and normalizes the limit into [1, maxLimit].
func (q *SearchQuery) Validate(defaultLimit, maxLimit int) error {
	if len(q.Vector) == 0 && q.Text == "" {
		return fmt.Errorf("query needs a vector or text")
	}
	for _, ct := range q.ContentTypes {
		if _, err := ParseContentType(string(ct)); err != nil {
			return err
		}
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return nil
}

// AllowsContentType reports whether ct passes the query's allow-list (empty allows all).
func (q *SearchQuery) AllowsContentType(ct ContentType) bool {
	if len(q.ContentTypes) == 0 {
		return true
	}
	for _, allowed := range q.ContentTypes {
		if allowed == ct {
			return true
		}
	}
	return false
}
