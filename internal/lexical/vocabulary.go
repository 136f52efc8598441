package lexical

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HoaxSignature is a conjunctive keyword rule: it matches only when every
// keyword is present in the lowered text. Signatures are checked in order
// and the first full match wins.
type HoaxSignature struct {
	Keywords []string `json:"keywords"`
	Reason   string   `json:"reason"`
}

// Vocabulary holds the fixed term lists driving signal extraction. All terms
// are matched by substring containment against lower-cased text.
type Vocabulary struct {
	TrustTerms    []string        `json:"trust_terms"`
	DistrustTerms []string        `json:"distrust_terms"`
	TopicTerms    []string        `json:"topic_terms"`
	Hoaxes        []HoaxSignature `json:"hoaxes"`
}

// DefaultVocabulary returns the built-in term lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		TrustTerms: []string{
			"official", "university", "study", "confirmed", "report",
			"evidence", "published", "data", "market", "semiconductor",
			"release", "fda", "nasa",
		},
		DistrustTerms: []string{
			"shocking", "stunning", "secret", "leaked",
			"they don't want you to know", "miracle", "scam", "cover-up",
			"allegedly", "viral",
		},
		TopicTerms: []string{"ai", "nintendo", "tech"},
		Hoaxes: []HoaxSignature{
			{
				Keywords: []string{"jupiter", "red spot", "dissipated"},
				Reason:   "Fact Check: NASA confirms Red Spot is shrinking, not gone.",
			},
			{
				Keywords: []string{"sleep", "patch", "45 minutes"},
				Reason:   "Biologically implausible claim; no FDA record.",
			},
			{
				Keywords: []string{"atlantic", "bridge", "hyperloop"},
				Reason:   "Physically impossible infrastructure project.",
			},
		},
	}
}

// LoadVocabulary reads term lists from a JSON file. Empty sections fall back
// to the built-in defaults so a file can override just one list.
func LoadVocabulary(path string) (Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return Vocabulary{}, fmt.Errorf("vocabulary path cannot be empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("resolve vocabulary path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("open vocabulary file: %w", err)
	}
	defer file.Close()

	var vocab Vocabulary
	if err := json.NewDecoder(file).Decode(&vocab); err != nil {
		return Vocabulary{}, fmt.Errorf("decode vocabulary file: %w", err)
	}

	defaults := DefaultVocabulary()
	if len(vocab.TrustTerms) == 0 {
		vocab.TrustTerms = defaults.TrustTerms
	}
	if len(vocab.DistrustTerms) == 0 {
		vocab.DistrustTerms = defaults.DistrustTerms
	}
	if len(vocab.TopicTerms) == 0 {
		vocab.TopicTerms = defaults.TopicTerms
	}
	if len(vocab.Hoaxes) == 0 {
		vocab.Hoaxes = defaults.Hoaxes
	}
	vocab.normalize()
	return vocab, nil
}

// normalize lowers every term so extraction only compares lowered strings.
func (v *Vocabulary) normalize() {
	lower := func(terms []string) {
		for i, term := range terms {
			terms[i] = strings.ToLower(strings.TrimSpace(term))
		}
	}
	lower(v.TrustTerms)
	lower(v.DistrustTerms)
	lower(v.TopicTerms)
	for i := range v.Hoaxes {
		lower(v.Hoaxes[i].Keywords)
	}
}
