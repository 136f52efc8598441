package verdict

// Label is the classifier output label. There is no third state.
type Label string

const (
	LabelReal Label = "REAL"
	LabelFake Label = "FAKE"
)

// IsValidLabel checks whether a label is one of the supported enum values.
func IsValidLabel(label Label) bool {
	return label == LabelReal || label == LabelFake
}

// Verdict is the immutable result of scoring one passage of text.
// Confidence is always in [0, 99]; 100 is reserved to keep headroom for
// "never fully certain".
type Verdict struct {
	Label      Label  `json:"label"`
	Confidence int    `json:"confidence"`
	Rationale  string `json:"rationale"`
}
