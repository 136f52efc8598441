package feed

import (
	"context"
	"time"

	"truthchain/internal/verdict"

	"github.com/google/uuid"
)

// Entry is one row of the activity feed. RelativeTime is a display label
// carried as-is; it is never used as a sort key.
type Entry struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Verdict      verdict.Label `json:"verdict"`
	RelativeTime string        `json:"relative_time"`
	CreatedAt    int64         `json:"created_at"`
}

// NewEntry builds a feed entry for a just-confirmed attestation.
func NewEntry(title string, label verdict.Label) Entry {
	return Entry{
		ID:           uuid.NewString(),
		Title:        title,
		Verdict:      label,
		RelativeTime: "Just now",
		CreatedAt:    time.Now().Unix(),
	}
}

// Store is the append-only, newest-first activity feed. Prepend inserts at
// the head; the order of existing entries is preserved. Stores cap growth at
// a most-recent-K capacity, evicting from the tail.
type Store interface {
	Prepend(ctx context.Context, entry Entry) error
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// SeedEntries returns the fixed illustrative entries loaded at process
// start. They are demo data, not derived from any analysis.
func SeedEntries() []Entry {
	return []Entry{
		{ID: "1", Title: "DeepSeek AI Benchmarks", Verdict: verdict.LabelReal, RelativeTime: "2m ago"},
		{ID: "2", Title: "Atlantic Bridge Proposal", Verdict: verdict.LabelFake, RelativeTime: "5m ago"},
		{ID: "3", Title: "Nintendo Sales Report", Verdict: verdict.LabelReal, RelativeTime: "12m ago"},
		{ID: "4", Title: "SomnaFix FDA Approval", Verdict: verdict.LabelFake, RelativeTime: "18m ago"},
		{ID: "5", Title: "Goldene Material Science", Verdict: verdict.LabelReal, RelativeTime: "25m ago"},
	}
}
