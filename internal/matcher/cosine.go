package matcher

import "math"

// CosineSimilarity computes the cosine similarity between two vectors:
// dot product divided by the product of the Euclidean norms.
// Returns a value in [-1, 1]; length mismatches, empty or zero-norm vectors
// all yield 0 instead of an error so one degenerate row never breaks a
// matching pass.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}

	return finiteOrZero(similarity)
}

// finiteOrZero is the single place where a similarity score is normalized:
// NaN or ±Inf from degenerate input collapses to 0.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
