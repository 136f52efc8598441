package lexical

import (
	"context"
	"testing"

	"truthchain/internal/sentiment"
)

func newTestExtractor() *Extractor {
	return NewExtractor(DefaultVocabulary(), sentiment.NewAFINNAnalyzer())
}

func TestExtractTrustTerms(t *testing.T) {
	extractor := newTestExtractor()

	signals := extractor.Extract(context.Background(), "NASA confirms study shows official data")
	want := map[string]bool{"nasa": true, "confirmed": false, "study": true, "official": true, "data": true}
	got := make(map[string]bool)
	for _, term := range signals.MatchedTrustTerms {
		got[term] = true
	}
	for term, expected := range want {
		if expected && !got[term] {
			t.Errorf("expected trust term %q to match", term)
		}
	}
	// "confirms" does not contain "confirmed"; substring matching is one-way.
	if got["confirmed"] {
		t.Error("did not expect \"confirmed\" to match against \"confirms\"")
	}
	if signals.KnownHoaxMatch != nil {
		t.Error("no hoax signature should match")
	}
}

func TestExtractIsCaseInsensitive(t *testing.T) {
	extractor := newTestExtractor()

	upper := extractor.Extract(context.Background(), "SHOCKING SECRET LEAKED")
	lower := extractor.Extract(context.Background(), "shocking secret leaked")
	if len(upper.MatchedDistrustTerms) != 3 || len(lower.MatchedDistrustTerms) != 3 {
		t.Fatalf("expected 3 distrust matches regardless of case, got %d and %d",
			len(upper.MatchedDistrustTerms), len(lower.MatchedDistrustTerms))
	}
}

func TestExtractMultiWordPhrase(t *testing.T) {
	extractor := newTestExtractor()

	signals := extractor.Extract(context.Background(), "This is what they don't want you to know about!")
	found := false
	for _, term := range signals.MatchedDistrustTerms {
		if term == "they don't want you to know" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the multi-word distrust phrase to match")
	}
}

func TestExtractNumericTokens(t *testing.T) {
	extractor := newTestExtractor()

	cases := []struct {
		text string
		want int
	}{
		{"no numbers here", 0},
		{"growth of 45% this quarter", 1},
		{"45% growth and $2 billion revenue in 2025", 3},
		{"back in 2019 nothing matched", 0},
		{"2024 report and ₹5 crore", 2},
	}
	for _, tc := range cases {
		signals := extractor.Extract(context.Background(), tc.text)
		if signals.NumericTokenCount != tc.want {
			t.Errorf("%q: expected %d numeric tokens, got %d", tc.text, tc.want, signals.NumericTokenCount)
		}
	}
}

func TestExtractHoaxRequiresAllKeywords(t *testing.T) {
	extractor := newTestExtractor()

	full := extractor.Extract(context.Background(),
		"Jupiter's Great Red Spot has completely dissipated overnight")
	if full.KnownHoaxMatch == nil {
		t.Fatal("expected hoax signature to match when all keywords present")
	}
	if full.KnownHoaxMatch.Reason != "Fact Check: NASA confirms Red Spot is shrinking, not gone." {
		t.Fatalf("unexpected hoax reason: %q", full.KnownHoaxMatch.Reason)
	}

	partial := extractor.Extract(context.Background(), "Jupiter has a red spot")
	if partial.KnownHoaxMatch != nil {
		t.Fatal("a partial keyword set must not trigger the hoax signature")
	}
}

func TestExtractFirstHoaxWins(t *testing.T) {
	vocab := DefaultVocabulary()
	vocab.Hoaxes = []HoaxSignature{
		{Keywords: []string{"alpha"}, Reason: "first"},
		{Keywords: []string{"alpha", "beta"}, Reason: "second"},
	}
	extractor := NewExtractor(vocab, nil)

	signals := extractor.Extract(context.Background(), "alpha beta gamma")
	if signals.KnownHoaxMatch == nil || signals.KnownHoaxMatch.Reason != "first" {
		t.Fatalf("expected the first matching signature to win, got %+v", signals.KnownHoaxMatch)
	}
}

func TestExtractTopicBoost(t *testing.T) {
	extractor := newTestExtractor()

	if !extractor.Extract(context.Background(), "new AI benchmark results").TopicBoost {
		t.Error("expected topic boost for ai")
	}
	if !extractor.Extract(context.Background(), "Nintendo raises forecast").TopicBoost {
		t.Error("expected topic boost for nintendo")
	}
	if extractor.Extract(context.Background(), "quarterly farming almanac").TopicBoost {
		t.Error("did not expect topic boost")
	}
}

func TestExtractPolarity(t *testing.T) {
	extractor := newTestExtractor()

	negative := extractor.Extract(context.Background(), "terrible disaster and panic spread fear")
	if negative.PolarityScore >= 0 {
		t.Fatalf("expected negative polarity, got %d", negative.PolarityScore)
	}

	positive := extractor.Extract(context.Background(), "great growth and good results")
	if positive.PolarityScore <= 0 {
		t.Fatalf("expected positive polarity, got %d", positive.PolarityScore)
	}
}

func TestExtractEmptyText(t *testing.T) {
	extractor := newTestExtractor()

	signals := extractor.Extract(context.Background(), "")
	if len(signals.MatchedTrustTerms) != 0 || len(signals.MatchedDistrustTerms) != 0 {
		t.Fatal("empty text must match no terms")
	}
	if signals.NumericTokenCount != 0 || signals.TopicBoost || signals.KnownHoaxMatch != nil {
		t.Fatalf("empty text must produce a zero signal set, got %+v", signals)
	}
}

func TestExtractWithoutAnalyzer(t *testing.T) {
	extractor := NewExtractor(DefaultVocabulary(), nil)

	signals := extractor.Extract(context.Background(), "terrible disaster")
	if signals.PolarityScore != 0 {
		t.Fatalf("nil analyzer must leave polarity at zero, got %d", signals.PolarityScore)
	}
}
