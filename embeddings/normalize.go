package embeddings

import "math"

// Normalize divides a vector by its Euclidean norm so cosine similarity
// reduces to a dot product. A zero vector is returned as-is.
func Normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vector
	}

	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// NormalizeBatch applies Normalize to every row of a matrix.
func NormalizeBatch(matrix [][]float32) [][]float32 {
	out := make([][]float32, len(matrix))
	for i, row := range matrix {
		out[i] = Normalize(row)
	}
	return out
}
