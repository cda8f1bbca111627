package search

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
)

const (
	// DefaultTimeframe applies when a timeframe string is not recognised.
	DefaultTimeframe = 30 * 24 * time.Hour
	// GapThreshold is the best-match similarity a topic needs to count as covered.
	GapThreshold = 0.7

	minTrendItems    = 3
	maxTrendClusters = 5
	trendExamples    = 3
	exampleLength    = 100
)

var timeframePattern = regexp.MustCompile(`^(\d+)\s*([hdwmy])$`)

// ParseTimeframe converts "<n>h", "<n>d", "<n>w", "<n>m" (30 days) or "<n>y" (365 days)
// to a duration. Anything else, including zero, yields DefaultTimeframe.
func ParseTimeframe(s string) time.Duration {
	m := timeframePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return DefaultTimeframe
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return DefaultTimeframe
	}
	day := 24 * time.Hour
	var unit time.Duration
	switch m[2] {
	case "h":
		unit = time.Hour
	case "d":
		unit = day
	case "w":
		unit = 7 * day
	case "m":
		unit = 30 * day
	case "y":
		unit = 365 * day
	}
	// guard against overflow for absurd inputs
	if time.Duration(n) > (1<<62)/unit {
		return DefaultTimeframe
	}
	return time.Duration(n) * unit
}

// DetectTrends clusters the embeddings newer than the timeframe window into
// min(5, n/3) groups. Fewer than three recent items yield no trends.
func (e *Engine) DetectTrends(ctx context.Context, indexName, timeframe string) ([]*models.Trend, error) {
	cutoff := e.now().Add(-ParseTimeframe(timeframe))

	var recent []*models.Embedding
	err := e.store.View(indexName, func(_ models.IndexInfo, embs []*models.Embedding) error {
		for _, emb := range embs {
			if emb.Timestamp.After(cutoff) {
				recent = append(recent, emb.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(recent) < minTrendItems {
		return []*models.Trend{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := len(recent) / minTrendItems
	if k > maxTrendClusters {
		k = maxTrendClusters
	}
	clusters, err := e.kmeans(recent, k)
	if err != nil {
		return nil, err
	}

	trends := make([]*models.Trend, 0, len(clusters))
	for _, c := range clusters {
		examples := make([]string, 0, trendExamples)
		for _, m := range c.Members {
			if len(examples) == trendExamples {
				break
			}
			examples = append(examples, Snippet(m.Content, exampleLength))
		}
		trends = append(trends, &models.Trend{
			Topics:    c.Topics,
			Size:      len(c.Members),
			Coherence: c.Coherence,
			Examples:  examples,
		})
	}
	sort.SliceStable(trends, func(i, j int) bool { return trends[i].Size > trends[j].Size })
	return trends, nil
}

// AnalyzeGaps embeds each topic and finds its best cosine match in the index. Topics
// whose best match is below GapThreshold are returned, most severe first.
func (e *Engine) AnalyzeGaps(ctx context.Context, indexName string, topics []string) ([]*models.Gap, error) {
	info, ok := e.store.Stats(indexName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", vector.ErrIndexNotFound, indexName)
	}

	type target struct {
		topic string
		vec   []float32
	}
	targets := make([]target, 0, len(topics))
	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		vec, err := e.embed(ctx, topic, models.ContentTypeText, info.Dimension)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", topic, err)
		}
		targets = append(targets, target{topic: topic, vec: vec})
	}

	gaps := make([]*models.Gap, 0, len(targets))
	err := e.store.View(indexName, func(_ models.IndexInfo, embs []*models.Embedding) error {
		for _, t := range targets {
			var (
				best    float64
				bestEmb *models.Embedding
			)
			for _, emb := range embs {
				sim, err := vector.Cosine(t.vec, emb.Vector)
				if err != nil {
					return err
				}
				if bestEmb == nil || sim > best {
					best, bestEmb = sim, emb
				}
			}
			if best >= GapThreshold {
				continue
			}
			gap := &models.Gap{Topic: t.topic, Similarity: best, Severity: 1 - best}
			if bestEmb != nil {
				gap.BestMatchID = bestEmb.ID
				gap.BestMatchContent = Snippet(bestEmb.Content, exampleLength)
			}
			gaps = append(gaps, gap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Severity != gaps[j].Severity {
			return gaps[i].Severity > gaps[j].Severity
		}
		return gaps[i].Topic < gaps[j].Topic
	})
	return gaps, nil
}
