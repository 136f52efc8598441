package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"truthchain/internal/attest"
	xerrors "truthchain/internal/errors"
	"truthchain/internal/identity"
	"truthchain/internal/lexical"
	"truthchain/internal/notify"
	"truthchain/internal/verdict"
	"truthchain/pkg/logger"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = xerrors.New(xerrors.CodeNotFound, "session not found")

// Manager orchestrates the verify/attest flow for isolated sessions. Each
// session has exactly one logical flow of control; the manager only guards
// its own session map.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	extractor  *lexical.Extractor
	engine     *verdict.Engine
	submitter  *attest.Submitter
	idProvider identity.Provider
	notices    notify.Dispatcher
	delay      time.Duration
	rootCtx    context.Context
	log        *slog.Logger
}

// Option configures optional manager behaviour.
type Option func(*Manager)

// WithAnalysisDelay sets the simulated scoring latency.
func WithAnalysisDelay(delay time.Duration) Option {
	return func(m *Manager) {
		if delay >= 0 {
			m.delay = delay
		}
	}
}

// WithNoticeDispatcher sets the surface that receives boundary-failure
// notices.
func WithNoticeDispatcher(dispatcher notify.Dispatcher) Option {
	return func(m *Manager) {
		if dispatcher != nil {
			m.notices = dispatcher
		}
	}
}

// NewManager wires the orchestrator. rootCtx bounds the simulated analysis
// delay: it is cancellable only by process teardown, never by user action.
func NewManager(rootCtx context.Context, extractor *lexical.Extractor, engine *verdict.Engine, submitter *attest.Submitter, idProvider identity.Provider, opts ...Option) *Manager {
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	m := &Manager{
		sessions:   make(map[string]*Session),
		extractor:  extractor,
		engine:     engine,
		submitter:  submitter,
		idProvider: idProvider,
		notices:    notify.NewFanout(notify.NewLogNotifier(nil)),
		delay:      1500 * time.Millisecond,
		rootCtx:    rootCtx,
		log:        logger.Named("session"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Create opens a fresh idle session.
func (m *Manager) Create() *Session {
	session := &Session{id: uuid.NewString(), state: StateIdle}
	m.mu.Lock()
	m.sessions[session.id] = session
	m.mu.Unlock()
	return session
}

// Get resolves a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Analyze scores the text and stores the verdict on the session. Empty text
// is inert: the call is a no-op that leaves state untouched. A session that
// is already analyzing rejects the request. Re-analysis discards the prior
// verdict and transaction id.
func (m *Manager) Analyze(sessionID, text string) (*verdict.Verdict, error) {
	session, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	session.mu.Lock()
	if session.state == StateAnalyzing {
		session.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	session.state = StateAnalyzing
	session.text = text
	session.verdict = nil
	session.txID = ""
	session.mu.Unlock()

	// Simulated processing latency. Only process teardown interrupts it;
	// feed reads and other sessions are unaffected while this flow sleeps.
	if m.delay > 0 {
		select {
		case <-m.rootCtx.Done():
			session.mu.Lock()
			session.state = StateIdle
			session.mu.Unlock()
			return nil, m.rootCtx.Err()
		case <-time.After(m.delay):
		}
	}

	signals := m.extractor.Extract(m.rootCtx, text)
	result := m.engine.Score(signals)

	session.mu.Lock()
	session.verdict = &result
	session.state = StateResulted
	session.mu.Unlock()

	m.log.Info("analysis completed",
		slog.String("session_id", sessionID),
		slog.String("verdict", string(result.Label)),
		slog.Int("confidence", result.Confidence),
	)
	return &result, nil
}

// Connect performs the identity handshake for the session. Failure surfaces
// as a notice; there is no automatic retry.
func (m *Manager) Connect(ctx context.Context, sessionID string) (*identity.Identity, error) {
	session, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if m.idProvider == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "identity provider is not configured")
	}

	id, err := m.idProvider.Connect(ctx)
	if err != nil {
		m.dispatch(ctx, sessionID, err)
		return nil, err
	}

	session.mu.Lock()
	session.identity = id
	session.mu.Unlock()

	m.log.Info("identity connected",
		slog.String("session_id", sessionID),
		slog.String("address", id.Address().Hex()),
	)
	return id, nil
}

// Submit commits the held verdict to the ledger. Entered only with a verdict
// present and a connected identity; on failure the verdict remains valid and
// the state moves to SubmissionFailed so the user may resubmit manually.
func (m *Manager) Submit(ctx context.Context, sessionID string) (*attest.Record, error) {
	session, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.verdict == nil {
		session.mu.Unlock()
		m.dispatch(ctx, sessionID, attest.ErrNoVerdict)
		return nil, attest.ErrNoVerdict
	}
	if !session.identity.Connected() {
		session.mu.Unlock()
		m.dispatch(ctx, sessionID, identity.ErrNoIdentity)
		return nil, identity.ErrNoIdentity
	}
	if session.state == StateSubmitting {
		session.mu.Unlock()
		return nil, xerrors.New(xerrors.CodeConflict, "submission already in progress")
	}
	held := *session.verdict
	text := session.text
	id := session.identity
	session.state = StateSubmitting
	session.mu.Unlock()

	record, err := m.submitter.Submit(ctx, &held, text, id)

	session.mu.Lock()
	defer session.mu.Unlock()
	if err != nil {
		session.state = StateSubmissionFailed
		m.dispatch(ctx, sessionID, err)
		return nil, err
	}
	session.txID = record.TransactionID
	session.state = StateSubmitted
	return record, nil
}

func (m *Manager) dispatch(ctx context.Context, sessionID string, cause error) {
	if m.notices == nil {
		return
	}
	if err := m.notices.Notify(ctx, notify.FromError(sessionID, cause)); err != nil {
		m.log.Warn("notice dispatch failed", slog.Any("error", err))
	}
}
