package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/semindex/internal/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client calls the semindex HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func indexPath(name string, parts ...string) string {
	p := "/api/v1/indices/" + url.PathEscape(name)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Status returns the server status document.
func (c *Client) Status(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, nil, &out)
	return out, err
}

// ListIndices returns every index.
func (c *Client) ListIndices(ctx context.Context) ([]*models.IndexInfo, error) {
	var out struct {
		Indices []*models.IndexInfo `json:"indices"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/indices", nil, nil, &out)
	return out.Indices, err
}

// CreateIndex creates an index.
func (c *Client) CreateIndex(ctx context.Context, name string, dimension int, metric string) (*models.IndexInfo, error) {
	body := map[string]interface{}{"name": name, "dimension": dimension, "metric": metric}
	var out models.IndexInfo
	if err := c.do(ctx, http.MethodPost, "/api/v1/indices", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DropIndex deletes an index and its snapshot.
func (c *Client) DropIndex(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, indexPath(name), nil, nil, nil)
}

// Snapshot asks the server to persist an index.
func (c *Client) Snapshot(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, indexPath(name, "snapshot"), nil, nil, nil)
}

// AddContent embeds and stores content.
func (c *Client) AddContent(ctx context.Context, index string, input *models.ContentInput) (*models.Embedding, error) {
	var out models.Embedding
	if err := c.do(ctx, http.MethodPost, indexPath(index, "content"), nil, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a semantic search.
func (c *Client) Search(ctx context.Context, index string, query *models.SearchQuery) ([]*models.SearchResult, error) {
	var out struct {
		Results []*models.SearchResult `json:"results"`
	}
	err := c.do(ctx, http.MethodPost, indexPath(index, "search"), nil, query, &out)
	return out.Results, err
}

// FindSimilar returns the nearest neighbours of a stored embedding.
func (c *Client) FindSimilar(ctx context.Context, index, id string, limit int) ([]*models.SearchResult, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Results []*models.SearchResult `json:"results"`
	}
	err := c.do(ctx, http.MethodGet, indexPath(index, "embeddings", url.PathEscape(id), "similar"), q, nil, &out)
	return out.Results, err
}

// Clusters groups an index into k clusters.
func (c *Client) Clusters(ctx context.Context, index string, k int) ([]*models.Cluster, error) {
	var out struct {
		Clusters []*models.Cluster `json:"clusters"`
	}
	err := c.do(ctx, http.MethodPost, indexPath(index, "clusters"), nil, map[string]int{"k": k}, &out)
	return out.Clusters, err
}

// Recommend ranks content against a profile.
func (c *Client) Recommend(ctx context.Context, index string, profile models.Metadata, limit int) ([]*models.Recommendation, error) {
	body := map[string]interface{}{"profile": profile, "limit": limit}
	var out struct {
		Recommendations []*models.Recommendation `json:"recommendations"`
	}
	err := c.do(ctx, http.MethodPost, indexPath(index, "recommendations"), nil, body, &out)
	return out.Recommendations, err
}

// Trends clusters recent content.
func (c *Client) Trends(ctx context.Context, index, timeframe string) ([]*models.Trend, error) {
	q := url.Values{}
	if timeframe != "" {
		q.Set("timeframe", timeframe)
	}
	var out struct {
		Trends []*models.Trend `json:"trends"`
	}
	err := c.do(ctx, http.MethodGet, indexPath(index, "trends"), q, nil, &out)
	return out.Trends, err
}

// Gaps reports target topics the index does not cover.
func (c *Client) Gaps(ctx context.Context, index string, topics []string) ([]*models.Gap, error) {
	var out struct {
		Gaps []*models.Gap `json:"gaps"`
	}
	err := c.do(ctx, http.MethodPost, indexPath(index, "gaps"), nil, map[string][]string{"topics": topics}, &out)
	return out.Gaps, err
}

// WatchDirectories lists watched directories.
func (c *Client) WatchDirectories(ctx context.Context) ([]string, error) {
	var out struct {
		Directories []string `json:"directories"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/watch/directories", nil, nil, &out)
	return out.Directories, err
}

// AddWatchDirectory starts watching path, indexing files already in it.
func (c *Client) AddWatchDirectory(ctx context.Context, path string) error {
	body := map[string]interface{}{"path": path, "sync": true}
	return c.do(ctx, http.MethodPost, "/api/v1/watch/directories", nil, body, nil)
}

// RemoveWatchDirectory stops watching path.
func (c *Client) RemoveWatchDirectory(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/watch/directories", url.Values{"path": {path}}, nil, nil)
}
