package search

import (
	"fmt"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
)

// ProcessQuery validates the query and applies the configured limits.
func (e *Engine) ProcessQuery(query *models.SearchQuery) error {
	if query == nil {
		return fmt.Errorf("%w: query is required", vector.ErrInvalidArgument)
	}
	if err := query.Validate(e.config.DefaultLimit, e.config.MaxLimit); err != nil {
		return fmt.Errorf("%w: %v", vector.ErrInvalidArgument, err)
	}
	return nil
}

// clampLimit applies the configured default and maximum to a bare limit.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		limit = e.config.DefaultLimit
	}
	if limit > e.config.MaxLimit {
		limit = e.config.MaxLimit
	}
	return limit
}
