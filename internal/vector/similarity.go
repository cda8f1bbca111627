// Package vector provides the in-memory embedding store and similarity functions.
package vector

import (
	"fmt"
	"math"

	"github.com/hyperjump/semindex/internal/models"
)

func checkLengths(a, b []float32) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	return nil
}

// DotProduct returns the unnormalized inner product of a and b.
func DotProduct(a, b []float32) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, err
	}
	return dot(a, b), nil
}

// Cosine returns dot(a,b)/(|a||b|), or 0 when either vector has zero magnitude.
func Cosine(a, b []float32) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, err
	}
	return cosine(a, b), nil
}

// EuclideanDistance returns the L2 distance between a and b.
func EuclideanDistance(a, b []float32) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, err
	}
	return euclidean(a, b), nil
}

// EuclideanSimilarity maps distance into (0, 1]: 1/(1+distance).
func EuclideanSimilarity(a, b []float32) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, err
	}
	return 1 / (1 + euclidean(a, b)), nil
}

// Similarity scores a against b with the given index metric.
func Similarity(metric models.Metric, a, b []float32) (float64, error) {
	switch metric {
	case models.MetricCosine:
		return Cosine(a, b)
	case models.MetricEuclidean:
		return EuclideanSimilarity(a, b)
	case models.MetricDotProduct:
		return DotProduct(a, b)
	default:
		return 0, fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, metric)
	}
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func cosine(a, b []float32) float64 {
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
