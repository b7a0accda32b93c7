package ngram

import "sort"

// Cosine returns the cosine similarity of two profiles. Only trigrams present
// in both profiles contribute to the dot product. An empty profile on either
// side yields 0.
func Cosine(a, b Profile) float64 {
	return CosineWithMagnitudes(a, a.Magnitude(), b, b.Magnitude())
}

// CosineWithMagnitudes is Cosine with precomputed magnitudes, for callers that
// compare one profile against many.
func CosineWithMagnitudes(a Profile, magnitudeA float64, b Profile, magnitudeB float64) float64 {
	if magnitudeA == 0 || magnitudeB == 0 {
		return 0
	}

	dot := Dot(a, b)
	if dot <= 0 {
		return 0
	}

	similarity := dot / (magnitudeA * magnitudeB)
	if similarity > 1 {
		return 1
	}
	return similarity
}

// Dot sums a[t]*b[t] over the shared trigrams in sorted order, so the result
// does not depend on map iteration or argument order.
func Dot(a, b Profile) float64 {
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}

	shared := make([]string, 0, len(small))
	for trigram := range small {
		if _, ok := large[trigram]; ok {
			shared = append(shared, trigram)
		}
	}
	sort.Strings(shared)

	dot := 0.0
	for _, trigram := range shared {
		dot += a[trigram] * b[trigram]
	}
	return dot
}
