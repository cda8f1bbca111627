package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/pkg/utils"
)

const (
	formatText = "text"
	formatJSON = "json"
)

const (
	separator     = "─────────────────────────────────────────────────────────"
	previewLength = 200
	timeLayout    = "2006-01-02 15:04:05"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// preview flattens whitespace and truncates content for one-screen display.
func preview(content string) string {
	return utils.Truncate(strings.Join(strings.Fields(content), " "), previewLength)
}

// WriteSearchResults writes ranked results as text or JSON.
func WriteSearchResults(w io.Writer, results []*models.SearchResult, format string) error {
	if format == formatJSON {
		return writeJSON(w, results)
	}
	fmt.Fprintf(w, "\nFound %d results\n\n", len(results))
	for i, r := range results {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "Rank: %d | Similarity: %.4f | Type: %s\n", i+1, r.Similarity, r.ContentType)
		fmt.Fprintf(w, "ID: %s\n", r.ID)
		if len(r.Metadata) > 0 {
			fmt.Fprintf(w, "Metadata: %s\n", r.Metadata.Describe())
		}
		fmt.Fprintf(w, "\n%s\n\n", preview(r.Content))
	}
	return nil
}

// WriteIndices writes index metadata as a table or JSON.
func WriteIndices(w io.Writer, indices []*models.IndexInfo, format string) error {
	if format == formatJSON {
		return writeJSON(w, indices)
	}
	if len(indices) == 0 {
		fmt.Fprintln(w, "No indices")
		return nil
	}
	fmt.Fprintf(w, "%-24s %9s %-12s %8s  %s\n", "NAME", "DIMENSION", "METRIC", "VECTORS", "UPDATED")
	for _, info := range indices {
		fmt.Fprintf(w, "%-24s %9d %-12s %8d  %s\n",
			info.Name, info.Dimension, info.Metric, info.TotalVectors, info.UpdatedAt.Local().Format(timeLayout))
	}
	return nil
}

// WriteClusters writes clusters with their topics and a few member ids.
func WriteClusters(w io.Writer, clusters []*models.Cluster, format string) error {
	if format == formatJSON {
		return writeJSON(w, clusters)
	}
	fmt.Fprintf(w, "\n%d clusters\n\n", len(clusters))
	for _, c := range clusters {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "Cluster %d | Members: %d | Coherence: %.4f\n", c.ID, len(c.Members), c.Coherence)
		if len(c.Topics) > 0 {
			fmt.Fprintf(w, "Topics: %s\n", strings.Join(c.Topics, ", "))
		}
		for i, m := range c.Members {
			if i == 5 {
				fmt.Fprintf(w, "  ... and %d more\n", len(c.Members)-i)
				break
			}
			fmt.Fprintf(w, "  %s  %s\n", m.ID, utils.Truncate(preview(m.Content), 60))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteRecommendations writes recommendations with their reasons.
func WriteRecommendations(w io.Writer, recs []*models.Recommendation, format string) error {
	if format == formatJSON {
		return writeJSON(w, recs)
	}
	fmt.Fprintf(w, "\n%d recommendations\n\n", len(recs))
	for i, r := range recs {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "Rank: %d | Relevance: %.4f | Similarity: %.4f\n", i+1, r.Relevance, r.Similarity)
		fmt.Fprintf(w, "ID: %s\n", r.ID)
		for _, reason := range r.Reasons {
			fmt.Fprintf(w, "  • %s\n", reason)
		}
		fmt.Fprintf(w, "\n%s\n\n", preview(r.Content))
	}
	return nil
}

// WriteTrends writes trends, largest first.
func WriteTrends(w io.Writer, trends []*models.Trend, format string) error {
	if format == formatJSON {
		return writeJSON(w, trends)
	}
	if len(trends) == 0 {
		fmt.Fprintln(w, "No trends: not enough recent content")
		return nil
	}
	for i, t := range trends {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "Trend %d | Size: %d | Coherence: %.4f\n", i+1, t.Size, t.Coherence)
		fmt.Fprintf(w, "Topics: %s\n", strings.Join(t.Topics, ", "))
		for _, ex := range t.Examples {
			fmt.Fprintf(w, "  - %s\n", ex)
		}
	}
	return nil
}

// WriteGaps writes uncovered topics, most severe first.
func WriteGaps(w io.Writer, gaps []*models.Gap, format string) error {
	if format == formatJSON {
		return writeJSON(w, gaps)
	}
	if len(gaps) == 0 {
		fmt.Fprintln(w, "No gaps: every topic is covered")
		return nil
	}
	fmt.Fprintf(w, "%-32s %8s %10s  %s\n", "TOPIC", "SEVERITY", "SIMILARITY", "BEST MATCH")
	for _, g := range gaps {
		best := g.BestMatchID
		if best == "" {
			best = "-"
		}
		fmt.Fprintf(w, "%-32s %8.4f %10.4f  %s\n", utils.Truncate(g.Topic, 32), g.Severity, g.Similarity, best)
	}
	return nil
}
