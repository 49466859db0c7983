package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/partdex/internal/domain"
)

// stripFences removes a surrounding markdown code fence some models add
// despite being asked for bare JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseEnhancement(content string) (domain.Enhancement, error) {
	var raw struct {
		EnhancedQuery string                     `json:"enhancedQuery"`
		Suggestions   []string                   `json:"suggestions"`
		Filters       map[string]json.RawMessage `json:"filters"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return domain.Enhancement{}, fmt.Errorf("decode: %w", err)
	}

	enhanced := strings.TrimSpace(raw.EnhancedQuery)
	if enhanced == "" {
		return domain.Enhancement{}, errors.New("missing enhancedQuery")
	}

	suggestions := make([]string, 0, len(raw.Suggestions))
	for _, s := range raw.Suggestions {
		if s = strings.TrimSpace(s); s != "" {
			suggestions = append(suggestions, s)
		}
		if len(suggestions) == maxSuggestions {
			break
		}
	}

	filters := make(map[string][]string, len(raw.Filters))
	for key, msg := range raw.Filters {
		if vals := stringList(msg); len(vals) > 0 {
			filters[key] = vals
		}
	}

	return domain.Enhancement{
		EnhancedQuery: enhanced,
		Suggestions:   suggestions,
		Filters:       filters,
	}, nil
}

// stringList accepts a JSON string or an array of strings. Other shapes,
// and non-string array items, are dropped.
func stringList(msg json.RawMessage) []string {
	var one string
	if json.Unmarshal(msg, &one) == nil {
		if one = strings.TrimSpace(one); one != "" {
			return []string{one}
		}
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(msg, &items) != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func parseRecommendations(content string) (domain.RecommendationSet, error) {
	var set domain.RecommendationSet
	if err := json.Unmarshal([]byte(stripFences(content)), &set); err != nil {
		return domain.RecommendationSet{}, fmt.Errorf("decode: %w", err)
	}

	recs := make([]domain.Recommendation, 0, len(set.Recommendations))
	for _, r := range set.Recommendations {
		r.Type = strings.TrimSpace(r.Type)
		if r.Type == "" {
			continue
		}
		r.Confidence = min(max(r.Confidence, 0), 1)
		recs = append(recs, r)
	}
	if len(recs) == 0 {
		return domain.RecommendationSet{}, errors.New("no recommendations")
	}
	set.Recommendations = recs
	if set.AlternativeOptions == nil {
		set.AlternativeOptions = []string{}
	}
	return set, nil
}
