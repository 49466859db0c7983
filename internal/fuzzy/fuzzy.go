// Package fuzzy re-ranks a page of catalog components by approximate,
// typo-tolerant matching of the query against weighted component fields.
package fuzzy

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/kailas-cloud/partdex/internal/domain/component"
	"github.com/kailas-cloud/partdex/internal/domain/search/result"
)

// Threshold is the worst field score (normalized edit distance) still counted as a match.
const Threshold = 0.3

type field struct {
	name   string
	weight float64
	values func(c *component.Component) []string
}

var fields = []field{
	{"name", 2.0, func(c *component.Component) []string { return []string{c.Name} }},
	{"description", 1.5, func(c *component.Component) []string { return []string{c.Description} }},
	{"partNumber", 1.5, func(c *component.Component) []string { return []string{c.PartNumber} }},
	{"category", 1.2, func(c *component.Component) []string { return []string{c.Category} }},
	{"material", 1.0, func(c *component.Component) []string { return []string{component.Deref(c.Material)} }},
	{"manufacturer", 1.0, func(c *component.Component) []string { return []string{component.Deref(c.Manufacturer)} }},
	{"tags", 1.0, func(c *component.Component) []string { return c.Tags }},
}

var totalWeight = func() float64 {
	var sum float64
	for _, f := range fields {
		sum += f.weight
	}
	return sum
}()

// Rank scores every component against query, drops those with no matching
// field and orders the rest by relevance, best first. Equal relevance keeps
// input order. An empty query returns the input as unscored hits.
func Rank(components []component.Component, query string) []result.Hit {
	q := newQuery(query)
	if q.empty() {
		return result.Unscored(components)
	}

	hits := make([]result.Hit, 0, len(components))
	for i := range components {
		rel, ok := q.relevance(&components[i])
		if !ok {
			continue
		}
		hits = append(hits, result.Hit{Component: components[i], Score: &rel})
	}
	slices.SortStableFunc(hits, func(a, b result.Hit) int {
		return cmp.Compare(*b.Score, *a.Score)
	})
	return hits
}

type query struct {
	phrase []rune
	tokens [][]rune
}

func newQuery(s string) query {
	s = strings.ToLower(strings.TrimSpace(s))
	q := query{phrase: []rune(s)}
	for _, tok := range strings.FieldsFunc(s, unicode.IsSpace) {
		q.tokens = append(q.tokens, []rune(tok))
	}
	return q
}

func (q query) empty() bool { return len(q.tokens) == 0 }

func (q query) relevance(c *component.Component) (float64, bool) {
	var sum float64
	matched := false
	for _, f := range fields {
		best := 1.0
		for _, v := range f.values(c) {
			best = min(best, q.fieldScore(v))
		}
		if best <= Threshold {
			matched = true
			sum += f.weight * (1 - best)
		}
	}
	return sum / totalWeight, matched
}

// fieldScore is 0 for an exact substring match and 1 for no resemblance.
// It takes the better of the whole-phrase score and the mean of per-token scores.
func (q query) fieldScore(text string) float64 {
	if text == "" {
		return 1
	}
	t := []rune(strings.ToLower(text))

	phrase := normalized(q.phrase, t)
	if len(q.tokens) == 1 {
		return phrase
	}
	var sum float64
	for _, tok := range q.tokens {
		sum += normalized(tok, t)
	}
	return min(phrase, sum/float64(len(q.tokens)))
}

func normalized(pattern, text []rune) float64 {
	if len(pattern) == 0 {
		return 1
	}
	return min(float64(substringDistance(pattern, text))/float64(len(pattern)), 1)
}

// substringDistance is the smallest edit distance between pattern and any
// substring of text (Sellers). A match may start and end anywhere in text.
func substringDistance(pattern, text []rune) int {
	m := len(pattern)
	// col[i] = distance of pattern[:i] ending at the current text position.
	col := make([]int, m+1)
	for i := range col {
		col[i] = i
	}
	best := col[m]
	for _, r := range text {
		diag := col[0] // col[0] stays 0: a match may start at any position
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == r {
				cost = 0
			}
			next := min(diag+cost, col[i]+1, col[i-1]+1)
			diag = col[i]
			col[i] = next
		}
		best = min(best, col[m])
	}
	return best
}
