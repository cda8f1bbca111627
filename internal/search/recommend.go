package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
)

// Recommendation scoring weights.
const (
	similarityWeight    = 0.7
	interestBonus       = 0.2
	skillLevelBonus     = 0.1
	minRelevance        = 0.5
	highSimilarityFloor = 0.7
)

// Profile keys read by Recommend, and the content metadata keys they are matched against.
const (
	ProfileInterests  = "interests"
	ProfileSkillLevel = "skillLevel"
	MetaCategory      = "category"
	MetaDifficulty    = "difficulty"
)

// Recommend embeds a description of profile and ranks the index's content by
//
//	relevance = 0.7*similarity + 0.2 (category in interests) + 0.1 (difficulty matches skillLevel)
//
// capped at 1. Only relevance above 0.5 is returned.
func (e *Engine) Recommend(ctx context.Context, indexName string, profile models.Metadata, limit int) ([]*models.Recommendation, error) {
	info, ok := e.store.Stats(indexName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", vector.ErrIndexNotFound, indexName)
	}
	if len(profile) == 0 {
		return nil, fmt.Errorf("%w: profile is empty", vector.ErrInvalidArgument)
	}
	pvec, err := e.embed(ctx, profile.Describe(), models.ContentTypeText, info.Dimension)
	if err != nil {
		return nil, err
	}

	interests, hasInterests := profile[ProfileInterests]
	skill, hasSkill := profile[ProfileSkillLevel]

	var recs []*models.Recommendation
	err = e.store.View(indexName, func(info models.IndexInfo, embs []*models.Embedding) error {
		for _, emb := range embs {
			sim, err := vector.Similarity(info.Metric, pvec, emb.Vector)
			if err != nil {
				return err
			}
			relevance := similarityWeight * sim
			reasons := make([]string, 0, 3)
			if sim >= highSimilarityFloor {
				reasons = append(reasons, "High content similarity")
			}
			if category, ok := emb.Metadata[MetaCategory]; ok && hasInterests && category.Kind == models.KindString && interests.Contains(category.Str) {
				relevance += interestBonus
				reasons = append(reasons, fmt.Sprintf("Matches your interest in %s", category.Str))
			}
			if difficulty, ok := emb.Metadata[MetaDifficulty]; ok && hasSkill && sameLevel(difficulty, skill) {
				relevance += skillLevelBonus
				reasons = append(reasons, fmt.Sprintf("Matches your %s skill level", difficulty.String()))
			}
			relevance = math.Min(relevance, 1.0)
			if relevance <= minRelevance {
				continue
			}
			recs = append(recs, &models.Recommendation{
				ID:          emb.ID,
				Content:     emb.Content,
				Relevance:   relevance,
				Similarity:  sim,
				Metadata:    emb.Metadata.Clone(),
				ContentType: emb.ContentType,
				Reasons:     reasons,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Relevance != recs[j].Relevance {
			return recs[i].Relevance > recs[j].Relevance
		}
		return recs[i].ID < recs[j].ID
	})
	if limit = e.clampLimit(limit); len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// sameLevel compares skill levels. Strings match case-insensitively, like interests.
func sameLevel(difficulty, skill models.Value) bool {
	if difficulty.Kind == models.KindString && skill.Kind == models.KindString {
		return strings.EqualFold(strings.TrimSpace(difficulty.Str), strings.TrimSpace(skill.Str))
	}
	return difficulty.Equal(skill)
}
