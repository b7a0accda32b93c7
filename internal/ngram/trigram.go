// Package ngram extracts character trigrams and compares trigram frequency profiles.
package ngram

import "strings"

// Size is the character length of every extracted n-gram.
const Size = 3

// Extract lower-cases text and returns every run of three consecutive runes,
// sliding one rune at a time. Whitespace, punctuation and digits are kept.
// Text shorter than three runes yields an empty slice.
func Extract(text string) []string {
	runes := []rune(strings.ToLower(text))
	if len(runes) < Size {
		return []string{}
	}

	trigrams := make([]string, 0, len(runes)-Size+1)
	for i := 0; i+Size <= len(runes); i++ {
		trigrams = append(trigrams, string(runes[i:i+Size]))
	}
	return trigrams
}

// Count accumulates trigram occurrences.
func Count(trigrams []string) map[string]int {
	counts := make(map[string]int, len(trigrams))
	for _, trigram := range trigrams {
		counts[trigram]++
	}
	return counts
}

// Counter pools trigrams from many texts into one multiset.
type Counter struct {
	counts map[string]int
	total  int
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) Add(trigrams []string) {
	for _, trigram := range trigrams {
		c.counts[trigram]++
	}
	c.total += len(trigrams)
}

// Total returns the number of trigrams added, duplicates included.
func (c *Counter) Total() int {
	return c.total
}

// Distinct returns the number of unique trigrams seen.
func (c *Counter) Distinct() int {
	return len(c.counts)
}

func (c *Counter) Profile() Profile {
	return Normalize(c.counts)
}
