package verdict

import "truthchain/internal/lexical"

// Scoring constants. The cascade and weights are fixed; confidence never
// reaches 100.
const (
	baseScore          = 50
	trustTermWeight    = 6
	distrustTermWeight = 12
	numericBonus       = 15
	numericThreshold   = 2
	topicBonus         = 5
	polarityPenalty    = 10
	polarityFloor      = -4
	hoaxConfidence     = 99
	maxConfidence      = 99
)

// rationaleFor maps each label to its fixed rationale template. Hoax
// overrides carry the signature's own reason instead.
var rationaleFor = map[Label]string{
	LabelReal: "Source matches credible patterns with specific data points.",
	LabelFake: "Content flags: Sensationalist language / lack of verifiability.",
}

// Engine converts a signal set into a verdict. It holds no state, so a
// single engine may serve every session.
type Engine struct{}

// NewEngine returns the scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score applies the rule cascade. First applicable rule wins:
//
//  1. A known-hoax match returns FAKE at confidence 99 with the signature's
//     reason, bypassing all numeric scoring.
//  2. Weighted scoring from a base of 50: +6 per matched trust term, -12 per
//     matched distrust term, +15 once when at least two numeric tokens are
//     present, then +5 for topic boost or -10 for polarity below -4 (topic
//     boost takes precedence; the polarity penalty is only checked without it).
//  3. Final score >= 50 derives REAL, otherwise FAKE, with confidence
//     clamped to [0, 99].
//
// The function is total over any valid SignalSet and fully deterministic.
func (e *Engine) Score(signals lexical.SignalSet) Verdict {
	if signals.KnownHoaxMatch != nil {
		return Verdict{
			Label:      LabelFake,
			Confidence: hoaxConfidence,
			Rationale:  signals.KnownHoaxMatch.Reason,
		}
	}

	score := baseScore
	score += trustTermWeight * len(signals.MatchedTrustTerms)
	score -= distrustTermWeight * len(signals.MatchedDistrustTerms)
	if signals.NumericTokenCount >= numericThreshold {
		score += numericBonus
	}
	if signals.TopicBoost {
		score += topicBonus
	} else if signals.PolarityScore < polarityFloor {
		score -= polarityPenalty
	}

	if score >= baseScore {
		return Verdict{
			Label:      LabelReal,
			Confidence: clampConfidence(score + 30),
			Rationale:  rationaleFor[LabelReal],
		}
	}
	return Verdict{
		Label:      LabelFake,
		Confidence: clampConfidence((100 - score) + 20),
		Rationale:  rationaleFor[LabelFake],
	}
}

func clampConfidence(confidence int) int {
	if confidence > maxConfidence {
		return maxConfidence
	}
	if confidence < 0 {
		return 0
	}
	return confidence
}
