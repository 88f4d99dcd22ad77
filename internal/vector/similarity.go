package vector

import "math"

// InnerProduct returns the inner product of two vectors of equal length.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// cosineWithNorms returns dot(a,b)/(na*nb) clamped to [-1, 1]. A zero norm scores 0.
func cosineWithNorms(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, InnerProduct(a, b)/(na*nb)))
}

// CosineSimilarity returns the cosine similarity of a and b in [-1, 1]; 0 if either is a zero vector.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return cosineWithNorms(a, b, L2Norm(a), L2Norm(b))
}
