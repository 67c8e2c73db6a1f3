package embeddings

import (
	"math"
	"testing"
)

func euclideanNorm(vector []float32) float64 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestNormalizeProducesUnitNorm(t *testing.T) {
	vector := []float32{3, 4}

	normalized := Normalize(vector)

	if norm := euclideanNorm(normalized); math.Abs(norm-1) > 1e-6 {
		t.Fatalf("expected unit norm, got %f", norm)
	}
	if normalized[0] != 0.6 || normalized[1] != 0.8 {
		t.Fatalf("unexpected normalized vector: %v", normalized)
	}
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	vector := []float32{0, 0, 0}

	normalized := Normalize(vector)

	for i, v := range normalized {
		if v != 0 {
			t.Fatalf("component %d changed: %f", i, v)
		}
	}
}

func TestNormalizeBatch(t *testing.T) {
	matrix := [][]float32{
		{1, 0, 0},
		{0, 0, 0},
		{2, 2, 2, 2},
	}

	normalized := NormalizeBatch(matrix)

	if len(normalized) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(normalized))
	}
	if norm := euclideanNorm(normalized[0]); math.Abs(norm-1) > 1e-6 {
		t.Fatalf("row 0 not unit norm: %f", norm)
	}
	for i, v := range normalized[1] {
		if v != 0 {
			t.Fatalf("zero row changed at %d: %f", i, v)
		}
	}
	if norm := euclideanNorm(normalized[2]); math.Abs(norm-1) > 1e-6 {
		t.Fatalf("row 2 not unit norm: %f", norm)
	}
}
