package fuzzy

import (
	"testing"

	"github.com/kailas-cloud/partdex/internal/domain/component"
)

func strPtr(s string) *string { return &s }

func catalog() []component.Component {
	return []component.Component{
		{ID: "washer", Name: "Flat Washer M8", Category: "Washers", PartNumber: "FW-M8", Tags: []string{"m8"}},
		{ID: "nut", Name: "Hex Nut M8", Category: "Nuts", PartNumber: "HN-M8", Material: strPtr("Brass")},
		{ID: "bolt", Name: "Hex Bolt M8x40", Category: "Bolts", PartNumber: "HB-M8-40",
			Material: strPtr("Stainless Steel 316"), Tags: []string{"hex", "bolt"}},
		{ID: "spring", Name: "Compression Spring", Category: "Springs", PartNumber: "CS-10"},
	}
}

func TestSubstringDistance(t *testing.T) {
	tests := []struct {
		pattern, text string
		want          int
	}{
		{"bolt", "hex bolt m8", 0},
		{"bolt", "hex blot m8", 2},
		{"bolt", "hex bot m8", 1},
		{"bolt", "", 4},
		{"", "anything", 0},
		{"m8", "M8", 1}, // case is normalized by callers, not here
	}
	for _, tt := range tests {
		got := substringDistance([]rune(tt.pattern), []rune(tt.text))
		if got != tt.want {
			t.Errorf("substringDistance(%q, %q) = %d, want %d", tt.pattern, tt.text, got, tt.want)
		}
	}
}

func TestRank_EmptyQueryIsNoop(t *testing.T) {
	in := catalog()
	hits := Rank(in, "   ")
	if len(hits) != len(in) {
		t.Fatalf("expected %d hits, got %d", len(in), len(hits))
	}
	for i := range in {
		if hits[i].ID != in[i].ID || hits[i].Score != nil {
			t.Errorf("hit %d = %s (score %v), want %s unscored", i, hits[i].ID, hits[i].Score, in[i].ID)
		}
	}
}

func TestRank_ExactSubstringAlwaysKept(t *testing.T) {
	hits := Rank(catalog(), "Compression")
	if len(hits) != 1 || hits[0].ID != "spring" {
		t.Fatalf("hits = %+v", hits)
	}
	if *hits[0].Score <= 0 || *hits[0].Score > 1 {
		t.Errorf("score out of range: %v", *hits[0].Score)
	}
}

func TestRank_TypoTolerant(t *testing.T) {
	hits := Rank(catalog(), "hex blot")
	if len(hits) == 0 {
		t.Fatal("expected typo to match")
	}
	if hits[0].ID != "bolt" {
		t.Errorf("best hit = %s, want bolt", hits[0].ID)
	}
}

func TestRank_DropsNonMatching(t *testing.T) {
	hits := Rank(catalog(), "hex")
	for _, h := range hits {
		if h.ID == "spring" || h.ID == "washer" {
			t.Errorf("unexpected hit %s", h.ID)
		}
	}
	if len(hits) != 2 {
		t.Errorf("expected nut and bolt, got %d hits", len(hits))
	}
}

func TestRank_NoMatches(t *testing.T) {
	if hits := Rank(catalog(), "zzzzqqqq"); len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestRank_OrderedByScoreStable(t *testing.T) {
	in := []component.Component{
		{ID: "a", Name: "Washer"},
		{ID: "b", Name: "Washer"},
		{ID: "c", Name: "Washer", Category: "Washer", Tags: []string{"washer"}},
	}
	hits := Rank(in, "washer")
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ID != "c" || hits[1].ID != "a" || hits[2].ID != "b" {
		t.Errorf("order = %s %s %s, want c a b", hits[0].ID, hits[1].ID, hits[2].ID)
	}
	for i := 1; i < len(hits); i++ {
		if *hits[i].Score > *hits[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestRank_NameOutweighsDescription(t *testing.T) {
	in := []component.Component{
		{ID: "desc", Name: "Fastener", Description: "rivet for sheet metal"},
		{ID: "name", Name: "Blind Rivet"},
	}
	hits := Rank(in, "rivet")
	if len(hits) != 2 || hits[0].ID != "name" {
		t.Errorf("expected name match first, got %+v", hits)
	}
}

func TestRank_ScoreBounds(t *testing.T) {
	c := component.Component{
		Name: "bolt", Description: "bolt", PartNumber: "bolt", Category: "bolt",
		Material: strPtr("bolt"), Manufacturer: strPtr("bolt"), Tags: []string{"bolt"},
	}
	hits := Rank([]component.Component{c}, "BOLT")
	if len(hits) != 1 || hits[0].Score == nil {
		t.Fatalf("expected one scored hit, got %+v", hits)
	}
	if *hits[0].Score != 1 {
		t.Errorf("perfect match on every field should score 1, got %v", *hits[0].Score)
	}
	if hits := Rank([]component.Component{c}, ""); len(hits) != 1 || hits[0].Score != nil {
		t.Errorf("empty query should leave hits unscored: %+v", hits)
	}
}
