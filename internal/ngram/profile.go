package ngram

import (
	"fmt"
	"math"
	"sort"
)

// Profile maps a trigram to its share of all trigrams in the source text.
type Profile map[string]float64

// Normalize divides every count by the total count. An empty multiset yields
// an empty profile.
func Normalize(counts map[string]int) Profile {
	total := 0
	for _, count := range counts {
		total += count
	}

	profile := make(Profile, len(counts))
	if total == 0 {
		return profile
	}
	for trigram, count := range counts {
		if count <= 0 {
			continue
		}
		profile[trigram] = float64(count) / float64(total)
	}
	return profile
}

func Build(trigrams []string) Profile {
	return Normalize(Count(trigrams))
}

// FromText builds the single-document profile of text.
func FromText(text string) Profile {
	return Build(Extract(text))
}

func (p Profile) Len() int {
	return len(p)
}

// Keys returns the trigrams of p in sorted order.
func (p Profile) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (p Profile) Sum() float64 {
	sum := 0.0
	for _, key := range p.Keys() {
		sum += p[key]
	}
	return sum
}

// Magnitude is the Euclidean norm over all values of p.
func (p Profile) Magnitude() float64 {
	sumSquares := 0.0
	for _, key := range p.Keys() {
		value := p[key]
		sumSquares += value * value
	}
	return math.Sqrt(sumSquares)
}

func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for key, value := range p {
		out[key] = value
	}
	return out
}

// Validate reports the first entry that cannot be a normalized frequency.
func (p Profile) Validate() error {
	for _, key := range p.Keys() {
		if key == "" {
			return fmt.Errorf("profile contains an empty trigram")
		}
		value := p[key]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("trigram %q has non-finite frequency", key)
		}
		if value < 0 || value > 1 {
			return fmt.Errorf("trigram %q frequency %v is outside [0,1]", key, value)
		}
	}
	return nil
}
