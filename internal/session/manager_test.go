package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"truthchain/internal/attest"
	xerrors "truthchain/internal/errors"
	"truthchain/internal/feed"
	"truthchain/internal/identity"
	"truthchain/internal/ledger"
	"truthchain/internal/lexical"
	"truthchain/internal/notify"
	"truthchain/internal/sentiment"
	"truthchain/internal/verdict"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

type fakeLedger struct {
	err   error
	calls int
}

func (f *fakeLedger) RecordVerdict(_ context.Context, _ *identity.Identity, _ string, _ verdict.Label, _ int) (common.Hash, error) {
	f.calls++
	if f.err != nil {
		return common.Hash{}, f.err
	}
	return common.HexToHash("0xdeadbeef"), nil
}

func (f *fakeLedger) RecordCount(context.Context) (uint64, error) {
	return uint64(f.calls), nil
}

func (f *fakeLedger) FetchChainSnapshot(context.Context) (ledger.ChainSnapshot, error) {
	return ledger.ChainSnapshot{ChainID: "fake"}, nil
}

func (f *fakeLedger) Close() {}

type fakeProvider struct {
	err error
}

func (p *fakeProvider) Connect(context.Context) (*identity.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	address := common.HexToAddress("0x2222222222222222222222222222222222222222")
	return identity.NewIdentity(address, &bind.TransactOpts{From: address}), nil
}

type recordingDispatcher struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (d *recordingDispatcher) Notify(_ context.Context, notice notify.Notice) error {
	d.mu.Lock()
	d.notices = append(d.notices, notice)
	d.mu.Unlock()
	return nil
}

func (d *recordingDispatcher) codes() []xerrors.Code {
	d.mu.Lock()
	defer d.mu.Unlock()
	codes := make([]xerrors.Code, 0, len(d.notices))
	for _, n := range d.notices {
		codes = append(codes, n.Code)
	}
	return codes
}

func newTestManager(t *testing.T, chain *fakeLedger, provider identity.Provider, dispatcher notify.Dispatcher) (*Manager, feed.Store) {
	t.Helper()
	feedStore := feed.NewMemoryStore(50, feed.SeedEntries())
	submitter := attest.NewSubmitter(chain, attest.NewMemoryStore(), feedStore)
	extractor := lexical.NewExtractor(lexical.DefaultVocabulary(), sentiment.NewAFINNAnalyzer())

	opts := []Option{WithAnalysisDelay(0)}
	if dispatcher != nil {
		opts = append(opts, WithNoticeDispatcher(dispatcher))
	}
	return NewManager(context.Background(), extractor, verdict.NewEngine(), submitter, provider, opts...), feedStore
}

func TestAnalyzeHappyPath(t *testing.T) {
	manager, _ := newTestManager(t, &fakeLedger{}, &fakeProvider{}, nil)
	session := manager.Create()

	v, err := manager.Analyze(session.ID(), "NASA confirms study shows official data with 45% accuracy and $3 billion budget")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if v.Label != verdict.LabelReal {
		t.Fatalf("expected REAL, got %s", v.Label)
	}

	view := session.Snapshot()
	if view.State != StateResulted {
		t.Fatalf("expected resulted state, got %s", view.State)
	}
	if view.Verdict == nil || view.Verdict.Label != verdict.LabelReal {
		t.Fatal("snapshot must carry the verdict")
	}
}

func TestAnalyzeEmptyTextIsInert(t *testing.T) {
	manager, _ := newTestManager(t, &fakeLedger{}, &fakeProvider{}, nil)
	session := manager.Create()

	if _, err := manager.Analyze(session.ID(), "   "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if view := session.Snapshot(); view.State != StateIdle || view.Verdict != nil {
		t.Fatalf("empty input must leave the session untouched, got %+v", view)
	}
}

func TestAnalyzeUnknownSession(t *testing.T) {
	manager, _ := newTestManager(t, &fakeLedger{}, &fakeProvider{}, nil)

	if _, err := manager.Analyze("missing", "some text"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestReanalysisDiscardsPriorResult(t *testing.T) {
	manager, _ := newTestManager(t, &fakeLedger{}, &fakeProvider{}, nil)
	session := manager.Create()
	ctx := context.Background()

	if _, err := manager.Analyze(session.ID(), "NASA confirms official study data"); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	if _, err := manager.Connect(ctx, session.ID()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := manager.Submit(ctx, session.ID()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if view := session.Snapshot(); view.TransactionID == "" {
		t.Fatal("expected a transaction id after submission")
	}

	v, err := manager.Analyze(session.ID(), "Shocking secret miracle cure leaked")
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if v.Label != verdict.LabelFake {
		t.Fatalf("expected FAKE on re-analysis, got %s", v.Label)
	}

	view := session.Snapshot()
	if view.TransactionID != "" {
		t.Fatal("re-analysis must discard the prior transaction id")
	}
	if view.State != StateResulted {
		t.Fatalf("expected resulted state, got %s", view.State)
	}
	if view.Identity == "" {
		t.Fatal("re-analysis must not disconnect the identity")
	}
}

func TestSubmitWithoutVerdict(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	manager, _ := newTestManager(t, &fakeLedger{}, &fakeProvider{}, dispatcher)
	session := manager.Create()

	_, err := manager.Submit(context.Background(), session.ID())
	if xerrors.CodeOf(err) != attest.CodeNoVerdict {
		t.Fatalf("expected NO_VERDICT, got %v", err)
	}
	codes := dispatcher.codes()
	if len(codes) != 1 || codes[0] != attest.CodeNoVerdict {
		t.Fatalf("expected one NO_VERDICT notice, got %v", codes)
	}
}

func TestSubmitWithoutIdentity(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	manager, _ := newTestManager(t, &fakeLedger{}, &fakeProvider{}, dispatcher)
	session := manager.Create()

	if _, err := manager.Analyze(session.ID(), "NASA confirms official study data"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	_, err := manager.Submit(context.Background(), session.ID())
	if !errors.Is(err, identity.ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
	if view := session.Snapshot(); view.Verdict == nil {
		t.Fatal("the held verdict must survive a rejected submission")
	}
}

func TestSubmitSuccess(t *testing.T) {
	chain := &fakeLedger{}
	manager, feedStore := newTestManager(t, chain, &fakeProvider{}, nil)
	session := manager.Create()
	ctx := context.Background()

	if _, err := manager.Analyze(session.ID(), "Nintendo reports record console sales of 25% growth in 2025"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := manager.Connect(ctx, session.ID()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	record, err := manager.Submit(ctx, session.ID())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if chain.calls != 1 {
		t.Fatalf("expected one ledger write, got %d", chain.calls)
	}

	view := session.Snapshot()
	if view.State != StateSubmitted {
		t.Fatalf("expected submitted state, got %s", view.State)
	}
	if view.TransactionID != record.TransactionID {
		t.Fatal("session must carry the transaction id")
	}

	entries, _ := feedStore.List(ctx)
	if len(entries) != 6 {
		t.Fatalf("expected one new feed entry over the seed, got %d", len(entries))
	}
	if entries[0].Title != "Nintendo reports record..." {
		t.Fatalf("unexpected feed title %q", entries[0].Title)
	}
}

func TestSubmitFailureKeepsVerdict(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	chain := &fakeLedger{err: errors.New("insufficient funds")}
	manager, feedStore := newTestManager(t, chain, &fakeProvider{}, dispatcher)
	session := manager.Create()
	ctx := context.Background()

	if _, err := manager.Analyze(session.ID(), "NASA confirms official study data"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := manager.Connect(ctx, session.ID()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	_, err := manager.Submit(ctx, session.ID())
	if xerrors.CodeOf(err) != attest.CodeSubmissionFailed {
		t.Fatalf("expected SUBMISSION_FAILED, got %v", err)
	}

	view := session.Snapshot()
	if view.State != StateSubmissionFailed {
		t.Fatalf("expected submission_failed state, got %s", view.State)
	}
	if view.Verdict == nil {
		t.Fatal("the held verdict must survive a failed submission")
	}
	if view.TransactionID != "" {
		t.Fatal("no transaction id may exist after a failed submission")
	}

	entries, _ := feedStore.List(ctx)
	if len(entries) != 5 {
		t.Fatal("no feed entry may exist after a failed submission")
	}
	if codes := dispatcher.codes(); len(codes) != 1 || codes[0] != attest.CodeSubmissionFailed {
		t.Fatalf("expected one SUBMISSION_FAILED notice, got %v", codes)
	}

	// The verdict is still valid, so a manual resubmission can succeed.
	chain.err = nil
	if _, err := manager.Submit(ctx, session.ID()); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if view := session.Snapshot(); view.State != StateSubmitted {
		t.Fatalf("expected submitted state after resubmit, got %s", view.State)
	}
}

func TestConnectFailureDispatchesNotice(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	manager, _ := newTestManager(t, &fakeLedger{}, &fakeProvider{err: identity.ErrNoIdentity}, dispatcher)
	session := manager.Create()

	if _, err := manager.Connect(context.Background(), session.ID()); err == nil {
		t.Fatal("expected connect failure")
	}
	if codes := dispatcher.codes(); len(codes) != 1 {
		t.Fatalf("expected one notice, got %v", codes)
	}
	if view := session.Snapshot(); view.Identity != "" {
		t.Fatal("no identity may be bound after a failed handshake")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	manager, _ := newTestManager(t, &fakeLedger{}, &fakeProvider{}, nil)
	first := manager.Create()
	second := manager.Create()

	if _, err := manager.Analyze(first.ID(), "NASA confirms official study data"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if view := second.Snapshot(); view.State != StateIdle || view.Verdict != nil {
		t.Fatalf("sessions must not share state, got %+v", view)
	}
}
