package search

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/hyperjump/semindex/internal/config"
	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
	"github.com/hyperjump/semindex/pkg/utils"
)

// vocabEmbedder maps each known word to its own axis so similarities in tests are
// exact. Content with no known words points along the last axis.
type vocabEmbedder struct {
	vocab map[string]int
}

var testVocab = []string{
	"pricing", "plans", "refunds", "golang", "databases", "cooking",
	"beginner", "advanced", "concurrency", "security",
}

func newVocabEmbedder() *vocabEmbedder {
	v := &vocabEmbedder{vocab: make(map[string]int, len(testVocab))}
	for i, w := range testVocab {
		v.vocab[w] = i
	}
	return v
}

func (v *vocabEmbedder) Embed(ctx context.Context, content string, _ models.ContentType) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, v.Dimensions())
	known := false
	for _, w := range strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if i, ok := v.vocab[w]; ok {
			vec[i]++
			known = true
		}
	}
	if !known {
		vec[len(vec)-1] = 1
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

func (v *vocabEmbedder) Dimensions() int { return len(testVocab) + 1 }
func (v *vocabEmbedder) Close() error    { return nil }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	clock := func() time.Time { return testNow }
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewEngine(vector.NewStore(vector.WithClock(clock)), newVocabEmbedder(), &config.SearchConfig{DefaultLimit: 10, MaxLimit: 50}, opts...)
}

func resultIDs(results []*models.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func ptr(f float64) *float64 { return &f }
