package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/semindex/internal/models"
)

const eps = 1e-9

func TestCosine_SelfIsOne(t *testing.T) {
	vecs := [][]float32{
		{1, 0, 0},
		{0.3, -2, 7},
		{1e-3, 1e-3, 1e-3, 5},
	}
	for _, v := range vecs {
		got, err := Cosine(v, v)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-1) > 1e-6 {
			t.Errorf("Cosine(%v, self) = %f, want 1", v, got)
		}
	}
}

func TestCosine_ZeroMagnitude(t *testing.T) {
	got, err := Cosine([]float32{0, 0}, []float32{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("zero vector cosine = %f, want 0", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	got, _ := Cosine([]float32{1, 0}, []float32{0, 1})
	if math.Abs(got) > eps {
		t.Errorf("orthogonal cosine = %f, want 0", got)
	}
}

func TestEuclideanSimilarity(t *testing.T) {
	got, err := EuclideanSimilarity([]float32{1, 2}, []float32{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("identical vectors = %f, want 1", got)
	}
	// distance 5 -> 1/6
	got, _ = EuclideanSimilarity([]float32{0, 0}, []float32{3, 4})
	if math.Abs(got-1.0/6) > eps {
		t.Errorf("got %f, want %f", got, 1.0/6)
	}
	d, _ := EuclideanDistance([]float32{0, 0}, []float32{3, 4})
	if math.Abs(d-5) > eps {
		t.Errorf("distance = %f, want 5", d)
	}
}

func TestDotProduct(t *testing.T) {
	got, err := DotProduct([]float32{1, 2, 3}, []float32{4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if got != 32 {
		t.Errorf("dot = %f, want 32", got)
	}
}

func TestSimilarity_DimensionMismatch(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{1, 2}
	fns := map[string]func(a, b []float32) (float64, error){
		"cosine":    Cosine,
		"euclidean": EuclideanSimilarity,
		"distance":  EuclideanDistance,
		"dot":       DotProduct,
	}
	for name, fn := range fns {
		if _, err := fn(a, b); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("%s: expected ErrDimensionMismatch, got %v", name, err)
		}
	}
	for _, m := range []models.Metric{models.MetricCosine, models.MetricEuclidean, models.MetricDotProduct} {
		if _, err := Similarity(m, a, b); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("Similarity(%s): expected ErrDimensionMismatch, got %v", m, err)
		}
	}
}

func TestSimilarity_Dispatch(t *testing.T) {
	a := []float32{2, 0}
	b := []float32{1, 0}
	if got, _ := Similarity(models.MetricCosine, a, b); math.Abs(got-1) > eps {
		t.Errorf("cosine = %f", got)
	}
	if got, _ := Similarity(models.MetricDotProduct, a, b); got != 2 {
		t.Errorf("dot = %f", got)
	}
	if got, _ := Similarity(models.MetricEuclidean, a, b); math.Abs(got-0.5) > eps {
		t.Errorf("euclidean = %f", got)
	}
	if _, err := Similarity("manhattan", a, b); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown metric: got %v", err)
	}
}
