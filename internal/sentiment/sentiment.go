package sentiment

import "context"

// Result is the outcome of a polarity analysis. Only Score participates in
// verdict scoring; the token breakdown is kept for diagnostics.
type Result struct {
	Score    int      `json:"score"`
	Positive []string `json:"positive,omitempty"`
	Negative []string `json:"negative,omitempty"`
}

// Analyzer is the lexical polarity collaborator. Implementations must be
// deterministic for a fixed input string.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Result, error)
}
