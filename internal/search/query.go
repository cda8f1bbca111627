package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
)

// SemanticSearch scans the index, applies metadata and content-type filters, scores
// with the index metric, drops results under the threshold, and returns the top
// Limit by similarity. Equal scores are ordered by id.
func (e *Engine) SemanticSearch(ctx context.Context, indexName string, query *models.SearchQuery) ([]*models.SearchResult, error) {
	if err := e.ProcessQuery(query); err != nil {
		return nil, err
	}
	info, ok := e.store.Stats(indexName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", vector.ErrIndexNotFound, indexName)
	}

	qvec := query.Vector
	if len(qvec) == 0 {
		var err error
		qvec, err = e.embed(ctx, query.Text, models.ContentTypeText, info.Dimension)
		if err != nil {
			return nil, err
		}
	}
	if len(qvec) != info.Dimension {
		return nil, fmt.Errorf("%w: query has %d, index %s expects %d", vector.ErrDimensionMismatch, len(qvec), indexName, info.Dimension)
	}

	results, err := e.scan(ctx, indexName, qvec, func(emb *models.Embedding) bool {
		return emb.Metadata.Matches(query.Filters) && query.AllowsContentType(emb.ContentType)
	}, query.Threshold)
	if err != nil {
		return nil, err
	}
	if len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results, nil
}

// FindSimilar uses the stored vector of id as the query and excludes id from the results.
func (e *Engine) FindSimilar(ctx context.Context, indexName, id string, limit int) ([]*models.SearchResult, error) {
	source, err := e.store.Get(indexName, id)
	if err != nil {
		return nil, err
	}
	results, err := e.scan(ctx, indexName, source.Vector, func(emb *models.Embedding) bool {
		return emb.ID != id
	}, nil)
	if err != nil {
		return nil, err
	}
	if limit = e.clampLimit(limit); len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// scan scores every embedding that passes keep under the index read lock and
// returns them sorted by similarity descending, then id ascending.
func (e *Engine) scan(ctx context.Context, indexName string, qvec []float32, keep func(*models.Embedding) bool, threshold *float64) ([]*models.SearchResult, error) {
	var results []*models.SearchResult
	err := e.store.View(indexName, func(info models.IndexInfo, embs []*models.Embedding) error {
		results = make([]*models.SearchResult, 0, len(embs))
		for i, emb := range embs {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if !keep(emb) {
				continue
			}
			sim, err := vector.Similarity(info.Metric, qvec, emb.Vector)
			if err != nil {
				return err
			}
			if threshold != nil && sim < *threshold {
				continue
			}
			results = append(results, &models.SearchResult{
				ID:          emb.ID,
				Content:     emb.Content,
				Similarity:  sim,
				Metadata:    emb.Metadata.Clone(),
				ContentType: emb.ContentType,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortResults(results)
	return results, nil
}

func sortResults(results []*models.SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ID < results[j].ID
	})
}
