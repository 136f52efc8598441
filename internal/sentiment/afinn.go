package sentiment

import (
	"context"
	"strings"
	"unicode"
)

// AFINNAnalyzer scores text with a fixed word valence table in the AFINN
// style: lower-case tokens are looked up individually and their valences
// summed. It is total and deterministic.
type AFINNAnalyzer struct {
	lexicon map[string]int
}

// NewAFINNAnalyzer returns an analyzer backed by the built-in valence table.
func NewAFINNAnalyzer() *AFINNAnalyzer {
	return &AFINNAnalyzer{lexicon: defaultLexicon}
}

// NewAFINNAnalyzerWithLexicon overrides the valence table, mainly for tests.
func NewAFINNAnalyzerWithLexicon(lexicon map[string]int) *AFINNAnalyzer {
	if lexicon == nil {
		lexicon = defaultLexicon
	}
	return &AFINNAnalyzer{lexicon: lexicon}
}

// Analyze implements Analyzer. It never fails.
func (a *AFINNAnalyzer) Analyze(_ context.Context, text string) (Result, error) {
	result := Result{}
	for _, token := range tokenize(text) {
		valence, ok := a.lexicon[token]
		if !ok {
			continue
		}
		result.Score += valence
		if valence > 0 {
			result.Positive = append(result.Positive, token)
		} else if valence < 0 {
			result.Negative = append(result.Negative, token)
		}
	}
	return result, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// defaultLexicon is a compact valence table covering the vocabulary that
// shows up in news-style passages. Valences follow the AFINN convention of
// integers in [-5, 5].
var defaultLexicon = map[string]int{
	// positive
	"amazing": 4, "awesome": 4, "breakthrough": 3, "brilliant": 4,
	"celebrated": 3, "clean": 2, "confident": 2, "excellent": 3,
	"exciting": 3, "good": 3, "great": 3, "growth": 2, "happy": 3,
	"healthy": 2, "hope": 2, "improved": 2, "innovative": 2, "inspiring": 2,
	"leading": 2, "love": 3, "miracle": 4, "optimistic": 2, "outstanding": 5,
	"popular": 3, "positive": 2, "praised": 3, "profit": 2, "progress": 2,
	"promising": 2, "record": 1, "recovery": 2, "reliable": 2, "robust": 2,
	"safe": 1, "secure": 2, "stable": 2, "strong": 2, "succeeded": 3,
	"success": 2, "successful": 3, "support": 2, "thriving": 3, "trusted": 2,
	"welcome": 2, "win": 4, "winner": 4,

	// negative
	"afraid": -2, "alarm": -2, "alarming": -2, "angry": -3, "attack": -1,
	"awful": -3, "bad": -3, "banned": -2, "catastrophe": -3, "chaos": -2,
	"cheat": -3, "collapse": -2, "conspiracy": -3, "corrupt": -3,
	"crash": -2, "crisis": -3, "damage": -3, "danger": -2, "dangerous": -2,
	"dead": -3, "deadly": -3, "death": -2, "deceive": -3, "denied": -2,
	"destroy": -3, "destroyed": -3, "dire": -3, "disaster": -2,
	"disastrous": -3, "dread": -3, "evil": -3, "fail": -2, "failed": -2,
	"failure": -2, "fake": -3, "fear": -2, "fraud": -4, "fraudulent": -4,
	"hate": -3, "hoax": -3, "horrible": -3, "horrific": -3, "hysteria": -3,
	"illegal": -3, "lie": -2, "lies": -2, "lying": -2, "outbreak": -2,
	"panic": -3, "poison": -3, "poisoned": -3, "riot": -3, "ruin": -3,
	"scam": -2, "scandal": -3, "shady": -3, "shame": -2, "sick": -2,
	"terrible": -3, "terrifying": -3, "threat": -2, "threatening": -3,
	"toxic": -3, "tragedy": -2, "tragic": -2, "victim": -3, "violent": -3,
	"war": -2, "warning": -3, "worst": -3, "wreck": -2,
}

var _ Analyzer = (*AFINNAnalyzer)(nil)
