// Package cluster groups embeddings with k-means and labels the groups.
package cluster

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
)

// Options controls a KMeans run.
type Options struct {
	// K is the number of seed centroids.
	K int
	// Rand picks the seeds. Nil means an unseeded source, so results vary run to run.
	Rand *rand.Rand
	// MaxIterations enables refinement: centroids are recomputed as member means and
	// members reassigned until nothing moves or the limit is hit. Zero keeps the
	// single assignment pass against the random seeds.
	MaxIterations int
}

// KMeans partitions embeddings into at most opts.K clusters. All vectors must share
// one dimension. Clusters left without members are dropped, so fewer than K may come back.
func KMeans(embeddings []*models.Embedding, opts Options) ([]*models.Cluster, error) {
	if opts.K < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", vector.ErrInsufficientData, opts.K)
	}
	if len(embeddings) < opts.K {
		return nil, fmt.Errorf("%w: %d embeddings for k=%d", vector.ErrInsufficientData, len(embeddings), opts.K)
	}
	dim := len(embeddings[0].Vector)
	for _, e := range embeddings {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("%w: embedding %s has %d, expected %d", vector.ErrDimensionMismatch, e.ID, len(e.Vector), dim)
		}
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	centroids := make([][]float32, opts.K)
	for i := range centroids {
		seed := embeddings[rng.IntN(len(embeddings))].Vector
		centroids[i] = append([]float32(nil), seed...)
	}

	assign := make([]int, len(embeddings))
	for i, e := range embeddings {
		assign[i] = nearest(centroids, e.Vector)
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		recompute(centroids, embeddings, assign)
		moved := false
		for i, e := range embeddings {
			c := nearest(centroids, e.Vector)
			if c != assign[i] {
				assign[i] = c
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	members := make([][]*models.Embedding, opts.K)
	for i, c := range assign {
		members[c] = append(members[c], embeddings[i])
	}

	out := make([]*models.Cluster, 0, opts.K)
	for c, m := range members {
		if len(m) == 0 {
			continue
		}
		out = append(out, &models.Cluster{
			ID:        len(out),
			Members:   m,
			Centroid:  centroids[c],
			Coherence: Coherence(m),
			Topics:    Topics(m, DefaultTopicCount),
		})
	}
	return out, nil
}

// nearest returns the index of the closest centroid; ties go to the lower index.
func nearest(centroids [][]float32, v []float32) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centroids {
		var sum float64
		for j := range v {
			d := float64(v[j]) - float64(c[j])
			sum += d * d
		}
		if sum < bestDist {
			best, bestDist = i, sum
		}
	}
	return best
}

// recompute moves each centroid to the mean of its members. Centroids with no
// members stay put.
func recompute(centroids [][]float32, embeddings []*models.Embedding, assign []int) {
	dim := len(centroids[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for i, c := range assign {
		counts[c]++
		for j, x := range embeddings[i].Vector {
			sums[c][j] += float64(x)
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for j := range centroids[c] {
			centroids[c][j] = float32(sums[c][j] / float64(counts[c]))
		}
	}
}

// Coherence is the mean pairwise cosine similarity of the members, 1.0 for a
// single member and 0 for none.
func Coherence(members []*models.Embedding) float64 {
	switch len(members) {
	case 0:
		return 0
	case 1:
		return 1
	}
	var total float64
	pairs := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sim, err := vector.Cosine(members[i].Vector, members[j].Vector)
			if err != nil {
				continue
			}
			total += sim
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}
