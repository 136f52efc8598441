package truthchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultHTTPTimeout defines the timeout used by clients created without a
// custom http.Client. It is intentionally short to avoid hanging network calls.
const DefaultHTTPTimeout = 15 * time.Second

// Client wraps the HTTP interactions with the TruthChain REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Verdict mirrors the classifier output attached to a session.
type Verdict struct {
	Label      string `json:"label"`
	Confidence int    `json:"confidence"`
	Rationale  string `json:"rationale"`
}

// Session is the server side view of an analysis session.
type Session struct {
	ID            string   `json:"id"`
	State         string   `json:"state"`
	Text          string   `json:"text,omitempty"`
	Verdict       *Verdict `json:"verdict,omitempty"`
	TransactionID string   `json:"transaction_id,omitempty"`
	Identity      string   `json:"identity,omitempty"`
}

// FeedEntry is a single row of the public activity feed.
type FeedEntry struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Verdict      string `json:"verdict"`
	RelativeTime string `json:"relative_time"`
	CreatedAt    int64  `json:"created_at"`
}

// Record is a persisted on-chain attestation.
type Record struct {
	ID               string `json:"id"`
	ShortTitle       string `json:"short_title"`
	FullTitleExcerpt string `json:"full_title_excerpt"`
	Verdict          string `json:"verdict"`
	Confidence       int    `json:"confidence"`
	TransactionID    string `json:"transaction_id"`
	Signer           string `json:"signer"`
	CreatedAt        int64  `json:"created_at"`
}

// APIError represents server side validation or internal errors.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("truthchain api error (%d): %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("truthchain api error (%d): %s", e.StatusCode, e.Message)
}

// NewClient instantiates a client for the TruthChain API. When httpClient is
// nil, a default client with a sensible timeout is used.
func NewClient(rawURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// CreateSession opens a fresh analysis session.
func (c *Client) CreateSession(ctx context.Context) (Session, error) {
	var sess Session
	if err := c.post(ctx, "/api/v1/sessions", nil, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// GetSession fetches a session snapshot by identifier.
func (c *Client) GetSession(ctx context.Context, sessionID string) (Session, error) {
	var sess Session
	if err := c.get(ctx, "/api/v1/sessions/"+url.PathEscape(sessionID), &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Analyze submits text for classification and returns the updated session.
func (c *Client) Analyze(ctx context.Context, sessionID, text string) (Session, error) {
	var sess Session
	payload := struct {
		Text string `json:"text"`
	}{Text: text}
	endpoint := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/analyze"
	if err := c.post(ctx, endpoint, payload, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// ConnectIdentity binds the server configured signing identity to the session.
func (c *Client) ConnectIdentity(ctx context.Context, sessionID string) (string, error) {
	var out struct {
		Identity string `json:"identity"`
	}
	endpoint := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/identity"
	if err := c.post(ctx, endpoint, nil, &out); err != nil {
		return "", err
	}
	return out.Identity, nil
}

// Attest writes the session verdict to the chain and returns the stored record.
func (c *Client) Attest(ctx context.Context, sessionID string) (Record, error) {
	var record Record
	endpoint := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/attest"
	if err := c.post(ctx, endpoint, nil, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// Feed returns the newest-first activity feed.
func (c *Client) Feed(ctx context.Context) ([]FeedEntry, error) {
	var entries []FeedEntry
	if err := c.get(ctx, "/api/v1/feed", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Records lists the latest persisted attestations.
func (c *Client) Records(ctx context.Context, limit int) ([]Record, error) {
	endpoint := "/api/v1/records"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var records []Record
	if err := c.get(ctx, endpoint, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// RecordCount reads the on-chain attestation counter.
func (c *Client) RecordCount(ctx context.Context) (uint64, error) {
	var out struct {
		Count uint64 `json:"count"`
	}
	if err := c.get(ctx, "/api/v1/records/count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	rel := &url.URL{Path: path.Join(c.baseURL.Path, parsed.Path), RawQuery: parsed.RawQuery}
	u := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := APIError{StatusCode: resp.StatusCode}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		if len(data) > 0 {
			_ = json.Unmarshal(data, &apiErr)
		}
		if apiErr.Message == "" {
			apiErr.Message = string(bytes.TrimSpace(data))
		}
		return &apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
