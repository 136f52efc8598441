package feed

import "context"

// Publisher broadcasts confirmed feed entries to external consumers. Publish
// failures must not fail the attestation that produced the entry.
type Publisher interface {
	Publish(ctx context.Context, entry Entry) error
	Close() error
}

// NopPublisher discards every entry. Used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Entry) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

var _ Publisher = NopPublisher{}
