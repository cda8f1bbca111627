package cluster

import (
	"sort"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"

	"github.com/hyperjump/semindex/internal/models"
)

// DefaultTopicCount is how many keywords label a cluster.
const DefaultTopicCount = 5

// minTopicRunes excludes short words such as articles and prepositions.
const minTopicRunes = 4

var (
	tokenizer   = unicode.NewUnicodeTokenizer()
	lowerFilter = lowercase.NewLowerCaseFilter()
)

// Topics returns the n most frequent case-folded words longer than three characters
// across the members' content. Equal counts are ordered alphabetically.
func Topics(members []*models.Embedding, n int) []string {
	counts := make(map[string]int)
	for _, m := range members {
		for _, w := range Words(m.Content) {
			counts[w]++
		}
	}
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// Words tokenizes text on unicode word boundaries, lowercases it and keeps words
// longer than three characters.
func Words(text string) []string {
	if text == "" {
		return nil
	}
	stream := lowerFilter.Filter(tokenizer.Tokenize([]byte(text)))
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		if utf8.RuneCount(tok.Term) < minTopicRunes {
			continue
		}
		out = append(out, string(tok.Term))
	}
	return out
}
