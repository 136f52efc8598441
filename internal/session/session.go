package session

import (
	"sync"

	xerrors "truthchain/internal/errors"
	"truthchain/internal/identity"
	"truthchain/internal/verdict"
)

// State is the orchestrator state visible to the UI.
type State string

const (
	StateIdle             State = "idle"
	StateAnalyzing        State = "analyzing"
	StateResulted         State = "resulted"
	StateSubmitting       State = "submitting"
	StateSubmitted        State = "submitted"
	StateSubmissionFailed State = "submission_failed"
)

const (
	CodeEmptyInput         xerrors.Code = "EMPTY_INPUT"
	CodeAnalysisInProgress xerrors.Code = "ANALYSIS_IN_PROGRESS"
)

var (
	// ErrEmptyInput marks the inert verify-on-empty-text case. It is never
	// surfaced as a user-facing notice.
	ErrEmptyInput = xerrors.New(CodeEmptyInput, "no text to analyze")
	// ErrAnalysisInProgress rejects a second analysis while one is pending.
	ErrAnalysisInProgress = xerrors.New(CodeAnalysisInProgress, "analysis already in progress")
)

func init() {
	xerrors.Register(CodeEmptyInput, xerrors.Attributes{
		Message:   "no text to analyze",
		Severity:  xerrors.SeverityInfo,
		Retryable: true,
		Alert:     false,
	})
	xerrors.Register(CodeAnalysisInProgress, xerrors.Attributes{
		Message:   "analysis already in progress",
		Severity:  xerrors.SeverityInfo,
		Retryable: true,
		Alert:     false,
	})
}

// Session holds the single-writer state of one user flow: the text under
// analysis, the held verdict, the connected identity and the last
// transaction id. Sessions are never shared.
type Session struct {
	id string

	mu       sync.Mutex
	state    State
	text     string
	verdict  *verdict.Verdict
	identity *identity.Identity
	txID     string
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// View is an immutable snapshot of session state for reporting surfaces.
type View struct {
	ID            string           `json:"id"`
	State         State            `json:"state"`
	Text          string           `json:"text,omitempty"`
	Verdict       *verdict.Verdict `json:"verdict,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Identity      string           `json:"identity,omitempty"`
}

// Snapshot captures the current state under the session lock.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		ID:            s.id,
		State:         s.state,
		Text:          s.text,
		TransactionID: s.txID,
	}
	if s.verdict != nil {
		v := *s.verdict
		view.Verdict = &v
	}
	if s.identity.Connected() {
		view.Identity = s.identity.Address().Hex()
	}
	return view
}

// Identity returns the connected identity, or nil.
func (s *Session) Identity() *identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}
