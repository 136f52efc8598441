package verdict

import (
	"testing"

	"truthchain/internal/lexical"
)

func TestScoreEmptySignals(t *testing.T) {
	engine := NewEngine()

	v := engine.Score(lexical.SignalSet{})
	if v.Label != LabelReal {
		t.Fatalf("expected REAL for neutral signals, got %s", v.Label)
	}
	if v.Confidence != 80 {
		t.Fatalf("expected confidence 80 from base score, got %d", v.Confidence)
	}
	if v.Rationale == "" {
		t.Fatal("expected a rationale to be set")
	}
}

func TestScoreHoaxOverride(t *testing.T) {
	engine := NewEngine()

	signals := lexical.SignalSet{
		// Trust terms would push the score up, but the hoax signature wins.
		MatchedTrustTerms: []string{"nasa", "confirmed", "data"},
		NumericTokenCount: 3,
		KnownHoaxMatch:    &lexical.HoaxMatch{Reason: "Fact Check: NASA confirms Red Spot is shrinking, not gone."},
	}
	v := engine.Score(signals)
	if v.Label != LabelFake {
		t.Fatalf("hoax match must yield FAKE, got %s", v.Label)
	}
	if v.Confidence != 99 {
		t.Fatalf("hoax match must yield confidence 99, got %d", v.Confidence)
	}
	if v.Rationale != signals.KnownHoaxMatch.Reason {
		t.Fatalf("hoax rationale must carry the signature reason, got %q", v.Rationale)
	}
}

func TestScoreTrustTermsAndNumerics(t *testing.T) {
	engine := NewEngine()

	// 4 trust terms (+24) and two numeric tokens (+15): 50+24+15 = 89.
	signals := lexical.SignalSet{
		MatchedTrustTerms: []string{"nasa", "confirmed", "study", "official"},
		NumericTokenCount: 2,
	}
	v := engine.Score(signals)
	if v.Label != LabelReal {
		t.Fatalf("expected REAL, got %s", v.Label)
	}
	if v.Confidence != 99 {
		t.Fatalf("expected confidence clamped to 99, got %d", v.Confidence)
	}
}

func TestScoreNumericBonusIsFlat(t *testing.T) {
	engine := NewEngine()

	two := engine.Score(lexical.SignalSet{NumericTokenCount: 2})
	five := engine.Score(lexical.SignalSet{NumericTokenCount: 5})
	if two != five {
		t.Fatalf("numeric bonus must not scale with count: %+v vs %+v", two, five)
	}
	one := engine.Score(lexical.SignalSet{NumericTokenCount: 1})
	if one.Confidence != 80 {
		t.Fatalf("a single numeric token must not trigger the bonus, got %d", one.Confidence)
	}
}

func TestScoreDistrustTermsYieldFake(t *testing.T) {
	engine := NewEngine()

	// 3 distrust terms: 50-36 = 14, FAKE at (100-14)+20 = 106 -> 99.
	signals := lexical.SignalSet{
		MatchedDistrustTerms: []string{"shocking", "secret", "miracle"},
	}
	v := engine.Score(signals)
	if v.Label != LabelFake {
		t.Fatalf("expected FAKE, got %s", v.Label)
	}
	if v.Confidence != 99 {
		t.Fatalf("expected confidence 99, got %d", v.Confidence)
	}

	// One distrust term: 50-12 = 38, FAKE at (100-38)+20 = 82.
	v = engine.Score(lexical.SignalSet{MatchedDistrustTerms: []string{"viral"}})
	if v.Label != LabelFake || v.Confidence != 82 {
		t.Fatalf("expected FAKE at 82, got %s at %d", v.Label, v.Confidence)
	}
}

func TestScoreTopicBoostShadowsPolarityPenalty(t *testing.T) {
	engine := NewEngine()

	// Negative polarity alone: 50-10 = 40 -> FAKE.
	withoutTopic := engine.Score(lexical.SignalSet{PolarityScore: -6})
	if withoutTopic.Label != LabelFake {
		t.Fatalf("expected polarity penalty to flip verdict, got %s", withoutTopic.Label)
	}

	// The same polarity with a topic match: 50+5 = 55 -> REAL, penalty skipped.
	withTopic := engine.Score(lexical.SignalSet{PolarityScore: -6, TopicBoost: true})
	if withTopic.Label != LabelReal {
		t.Fatalf("topic boost must shadow the polarity penalty, got %s", withTopic.Label)
	}
	if withTopic.Confidence != 85 {
		t.Fatalf("expected confidence 85, got %d", withTopic.Confidence)
	}
}

func TestScorePolarityAtFloorIsNotPenalized(t *testing.T) {
	engine := NewEngine()

	v := engine.Score(lexical.SignalSet{PolarityScore: -4})
	if v.Confidence != 80 {
		t.Fatalf("polarity of exactly -4 must not be penalized, got confidence %d", v.Confidence)
	}
}

func TestScoreBoundaryAtBase(t *testing.T) {
	engine := NewEngine()

	// 2 distrust (-24) with 2 trust (+12) and numerics (+15): 50+3 = 53 REAL.
	real := engine.Score(lexical.SignalSet{
		MatchedTrustTerms:    []string{"report", "data"},
		MatchedDistrustTerms: []string{"leaked", "viral"},
		NumericTokenCount:    2,
	})
	if real.Label != LabelReal || real.Confidence != 83 {
		t.Fatalf("expected REAL at 83, got %s at %d", real.Label, real.Confidence)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	engine := NewEngine()
	signals := lexical.SignalSet{
		MatchedTrustTerms:    []string{"evidence"},
		MatchedDistrustTerms: []string{"allegedly"},
		NumericTokenCount:    2,
		PolarityScore:        1,
	}

	first := engine.Score(signals)
	for i := 0; i < 10; i++ {
		if got := engine.Score(signals); got != first {
			t.Fatalf("score diverged on repeat %d: %+v vs %+v", i, got, first)
		}
	}
}

func TestScoreConfidenceNeverExceeds99(t *testing.T) {
	engine := NewEngine()

	many := make([]string, 20)
	for i := range many {
		many[i] = "official"
	}
	if v := engine.Score(lexical.SignalSet{MatchedTrustTerms: many}); v.Confidence > 99 {
		t.Fatalf("confidence exceeded 99: %d", v.Confidence)
	}
	if v := engine.Score(lexical.SignalSet{MatchedDistrustTerms: many}); v.Confidence > 99 {
		t.Fatalf("confidence exceeded 99: %d", v.Confidence)
	}
}
