package lexical

import (
	"context"
	"regexp"
	"strings"

	"truthchain/internal/sentiment"
)

// numericTokenPattern matches percentage figures, currency amounts and
// 2020s-style four-digit years.
var numericTokenPattern = regexp.MustCompile(`(?i)[0-9]%|[$₹][0-9]|202[0-9]`)

// HoaxMatch records which hoax signature matched and why it is a hoax.
type HoaxMatch struct {
	Reason string `json:"reason"`
}

// SignalSet is the immutable feature bag derived from one passage of text.
type SignalSet struct {
	MatchedTrustTerms    []string   `json:"matched_trust_terms"`
	MatchedDistrustTerms []string   `json:"matched_distrust_terms"`
	NumericTokenCount    int        `json:"numeric_token_count"`
	PolarityScore        int        `json:"polarity_score"`
	TopicBoost           bool       `json:"topic_boost"`
	KnownHoaxMatch       *HoaxMatch `json:"known_hoax_match,omitempty"`
}

// Extractor turns raw text into a SignalSet. Term matching is deliberate
// substring containment, not word-boundary matching; swapping the policy
// must not touch the scoring engine.
type Extractor struct {
	vocab    Vocabulary
	analyzer sentiment.Analyzer
}

// NewExtractor builds an extractor over the given vocabulary and polarity
// collaborator. A nil analyzer yields polarity 0 for every input.
func NewExtractor(vocab Vocabulary, analyzer sentiment.Analyzer) *Extractor {
	vocab.normalize()
	return &Extractor{vocab: vocab, analyzer: analyzer}
}

// Extract derives the signal set for text. It is pure and total: any string,
// including the empty one, produces a valid SignalSet.
func (e *Extractor) Extract(ctx context.Context, text string) SignalSet {
	lowered := strings.ToLower(text)

	signals := SignalSet{
		MatchedTrustTerms:    matchTerms(lowered, e.vocab.TrustTerms),
		MatchedDistrustTerms: matchTerms(lowered, e.vocab.DistrustTerms),
		NumericTokenCount:    len(numericTokenPattern.FindAllString(text, -1)),
		TopicBoost:           containsAny(lowered, e.vocab.TopicTerms),
	}

	for _, hoax := range e.vocab.Hoaxes {
		if containsAll(lowered, hoax.Keywords) {
			signals.KnownHoaxMatch = &HoaxMatch{Reason: hoax.Reason}
			break
		}
	}

	if e.analyzer != nil {
		if result, err := e.analyzer.Analyze(ctx, text); err == nil {
			signals.PolarityScore = result.Score
		}
	}
	return signals
}

func matchTerms(lowered string, terms []string) []string {
	matched := make([]string, 0, len(terms))
	for _, term := range terms {
		if term != "" && strings.Contains(lowered, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

func containsAny(lowered string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func containsAll(lowered string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if !strings.Contains(lowered, term) {
			return false
		}
	}
	return true
}
