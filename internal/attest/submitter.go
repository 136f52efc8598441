package attest

import (
	"context"
	"log/slog"
	"time"

	xerrors "truthchain/internal/errors"
	"truthchain/internal/feed"
	"truthchain/internal/identity"
	"truthchain/internal/ledger"
	"truthchain/internal/verdict"
	"truthchain/pkg/logger"

	"github.com/google/uuid"
)

// Submitter runs the attestation workflow: derive titles, submit the ledger
// write through the identity's signer, block until inclusion, then archive
// the record and prepend exactly one feed entry. One attempt, no retry, no
// partial state on failure.
type Submitter struct {
	ledger         ledger.Client
	store          Store
	feed           feed.Store
	publisher      feed.Publisher
	confirmTimeout time.Duration
	log            *slog.Logger
}

// Option configures optional submitter behaviour.
type Option func(*Submitter)

// WithPublisher attaches a broker that broadcasts confirmed feed entries.
func WithPublisher(publisher feed.Publisher) Option {
	return func(s *Submitter) {
		s.publisher = publisher
	}
}

// WithConfirmTimeout bounds the inclusion wait. Zero waits indefinitely.
func WithConfirmTimeout(timeout time.Duration) Option {
	return func(s *Submitter) {
		if timeout > 0 {
			s.confirmTimeout = timeout
		}
	}
}

// NewSubmitter wires the submitter over its collaborators.
func NewSubmitter(ledgerClient ledger.Client, store Store, feedStore feed.Store, opts ...Option) *Submitter {
	s := &Submitter{
		ledger:    ledgerClient,
		store:     store,
		feed:      feedStore,
		publisher: feed.NopPublisher{},
		log:       logger.Named("attest"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit records the verdict on the ledger. Preconditions: a connected
// identity and an existing verdict. Titles are derived fresh at submission
// time, not cached from analysis time. The call blocks until the network
// reports inclusion; on any failure no record and no feed entry exist.
func (s *Submitter) Submit(ctx context.Context, v *verdict.Verdict, text string, id *identity.Identity) (*Record, error) {
	if !id.Connected() {
		return nil, identity.ErrNoIdentity
	}
	if v == nil {
		return nil, ErrNoVerdict
	}
	if s.ledger == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "ledger client is not configured")
	}

	shortTitle := ShortTitle(text)
	excerpt := Excerpt(text)

	submitCtx := ctx
	if s.confirmTimeout > 0 {
		var cancel context.CancelFunc
		submitCtx, cancel = context.WithTimeout(ctx, s.confirmTimeout)
		defer cancel()
	}

	txHash, err := s.ledger.RecordVerdict(submitCtx, id, excerpt, v.Label, v.Confidence)
	if err != nil {
		if e, ok := xerrors.From(err); ok && e.Code() == identity.CodeNoIdentity {
			return nil, err
		}
		return nil, xerrors.Wrap(CodeSubmissionFailed, err, "record verdict on ledger")
	}

	record := &Record{
		ID:               uuid.NewString(),
		ShortTitle:       shortTitle,
		FullTitleExcerpt: excerpt,
		Verdict:          v.Label,
		Confidence:       v.Confidence,
		TransactionID:    txHash.Hex(),
		Signer:           id.Address().Hex(),
		CreatedAt:        time.Now().Unix(),
	}

	// Inclusion is confirmed; local archiving problems must not undo it.
	if s.store != nil {
		if err := s.store.Save(ctx, record); err != nil {
			s.log.Warn("archive attestation record failed",
				slog.Any("error", err), slog.String("tx", record.TransactionID))
		}
	}

	entry := feed.NewEntry(shortTitle, v.Label)
	if s.feed != nil {
		if err := s.feed.Prepend(ctx, entry); err != nil {
			s.log.Warn("prepend feed entry failed",
				slog.Any("error", err), slog.String("tx", record.TransactionID))
		}
	}
	if err := s.publisher.Publish(ctx, entry); err != nil {
		s.log.Warn("broadcast feed entry failed",
			slog.Any("error", err), slog.String("tx", record.TransactionID))
	}

	logger.Audit().Info("verdict attested",
		slog.String("tx", record.TransactionID),
		slog.String("verdict", string(record.Verdict)),
		slog.Int("confidence", record.Confidence),
		slog.String("signer", record.Signer),
		slog.String("title", record.ShortTitle),
	)
	return record, nil
}

// RecordCount reads the contract-side record counter.
func (s *Submitter) RecordCount(ctx context.Context) (uint64, error) {
	if s.ledger == nil {
		return 0, xerrors.New(xerrors.CodeInitializationFailure, "ledger client is not configured")
	}
	return s.ledger.RecordCount(ctx)
}
