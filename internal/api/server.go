package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"truthchain/internal/attest"
	xerrors "truthchain/internal/errors"
	"truthchain/internal/feed"
	"truthchain/internal/observability/metrics"
	"truthchain/internal/session"
)

// Server exposes the REST surface that drives analysis sessions,
// chain attestations and the public activity feed.
type Server struct {
	addr      string
	sessions  *session.Manager
	feed      feed.Store
	records   attest.Store
	submitter *attest.Submitter
}

// NewServer builds the API service instance.
func NewServer(addr string, sessions *session.Manager, feedStore feed.Store, records attest.Store, submitter *attest.Submitter) *Server {
	return &Server{
		addr:      addr,
		sessions:  sessions,
		feed:      feedStore,
		records:   records,
		submitter: submitter,
	}
}

// Start runs the HTTP service until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sessions", s.instrument("sessions", s.handleSessions))
	mux.HandleFunc("/api/v1/sessions/", s.instrument("session", s.handleSession))
	mux.HandleFunc("/api/v1/feed", s.instrument("feed", s.handleFeed))
	mux.HandleFunc("/api/v1/records", s.instrument("records", s.handleRecords))
	mux.HandleFunc("/api/v1/records/count", s.instrument("records_count", s.handleRecordCount))
	mux.HandleFunc("/healthz", s.handleHealth)

	server := &http.Server{
		Addr:              s.addr,
		Handler:           withContext(ctx, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST is supported", http.StatusMethodNotAllowed)
		return
	}
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// handleSession routes /api/v1/sessions/{id}[/{action}] requests.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}
	sessionID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET is supported", http.StatusMethodNotAllowed)
			return
		}
		sess, err := s.sessions.Get(sessionID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "only POST is supported", http.StatusMethodNotAllowed)
		return
	}

	switch parts[1] {
	case "analyze":
		s.handleAnalyze(w, r, sessionID)
	case "identity":
		s.handleConnect(w, r, sessionID)
	case "attest":
		s.handleAttest(w, r, sessionID)
	default:
		http.Error(w, "unknown session action", http.StatusNotFound)
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "failed to decode request body", http.StatusBadRequest)
		return
	}

	v, err := s.sessions.Analyze(sessionID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.ObserveAnalysis(string(v.Label))

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request, sessionID string) {
	id, err := s.sessions.Connect(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"identity": id.Address().Hex()})
}

func (s *Server) handleAttest(w http.ResponseWriter, r *http.Request, sessionID string) {
	record, err := s.sessions.Submit(r.Context(), sessionID)
	if err != nil {
		metrics.ObserveAttestation("failure")
		writeError(w, err)
		return
	}
	metrics.ObserveAttestation("success")
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "only GET is supported", http.StatusMethodNotAllowed)
		return
	}
	entries, err := s.feed.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "only GET is supported", http.StatusMethodNotAllowed)
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	records, err := s.records.ListLatest(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRecordCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "only GET is supported", http.StatusMethodNotAllowed)
		return
	}
	count, err := s.submitter.RecordCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// instrument wraps a handler to record request metrics.
func (s *Server) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)
		metrics.ObserveHTTPRequest(name, r.Method, recorder.status, time.Since(start))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps domain error codes onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	code := xerrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case "INVALID_ARGUMENT", "EMPTY_INPUT":
		status = http.StatusBadRequest
	case "NOT_FOUND":
		status = http.StatusNotFound
	case "CONFLICT", "ANALYSIS_IN_PROGRESS":
		status = http.StatusConflict
	case "NO_IDENTITY", "NO_VERDICT":
		status = http.StatusPreconditionFailed
	case "TIMEOUT":
		status = http.StatusGatewayTimeout
	case "LEDGER_FAILURE", "SUBMISSION_FAILED", "IDENTITY_CONNECT_FAILED":
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// withContext makes request handling aware of root context cancellation.
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			http.Error(w, "service is shutting down", http.StatusServiceUnavailable)
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
