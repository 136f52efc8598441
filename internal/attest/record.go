package attest

import (
	"context"
	"strings"

	xerrors "truthchain/internal/errors"
	"truthchain/internal/verdict"
)

const (
	CodeNoVerdict        xerrors.Code = "NO_VERDICT"
	CodeSubmissionFailed xerrors.Code = "SUBMISSION_FAILED"
)

var (
	// ErrNoVerdict is returned when submission is attempted before any
	// analysis has produced a verdict.
	ErrNoVerdict = xerrors.New(CodeNoVerdict, "no verdict to record")
	// ErrSubmissionFailed wraps signing cancellations, network rejections
	// and any other ledger-boundary error. The held verdict stays valid and
	// re-submission is a fresh user action.
	ErrSubmissionFailed = xerrors.New(CodeSubmissionFailed, "submission failed")
)

func init() {
	xerrors.Register(CodeNoVerdict, xerrors.Attributes{
		Message:   "no verdict to record",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
	xerrors.Register(CodeSubmissionFailed, xerrors.Attributes{
		Message:   "submission failed",
		Severity:  xerrors.SeverityWarning,
		Retryable: false,
		Alert:     true,
	})
}

// Record is a durable attestation of a verdict. It is created only after the
// ledger reports inclusion and is immutable once created.
type Record struct {
	ID               string        `json:"id"`
	ShortTitle       string        `json:"short_title"`
	FullTitleExcerpt string        `json:"full_title_excerpt"`
	Verdict          verdict.Label `json:"verdict"`
	Confidence       int           `json:"confidence"`
	TransactionID    string        `json:"transaction_id"`
	Signer           string        `json:"signer"`
	CreatedAt        int64         `json:"created_at"`
}

// Store archives attestation records. The ledger remains the source of
// truth; the store is a local index over it.
type Store interface {
	Save(ctx context.Context, record *Record) error
	ListLatest(ctx context.Context, limit int) ([]*Record, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// ShortTitle derives the feed title: the first three whitespace-delimited
// tokens followed by an ellipsis marker.
func ShortTitle(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	return strings.Join(tokens, " ") + "..."
}

// Excerpt derives the on-chain title: the first 50 characters of the source
// text, rune-safe.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}
