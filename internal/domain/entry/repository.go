package entry

import "context"

// Repository persists envelopes keyed by title. Titles are case-sensitive.
type Repository interface {
	// Get returns ErrTitleNotFound when title is absent and ErrMalformedEntry
	// when the stored value lacks a field.
	Get(ctx context.Context, title string) (Envelope, error)
	// Put inserts or fully replaces the envelope stored under title.
	Put(ctx context.Context, title string, env Envelope) error
	// Delete returns ErrTitleNotFound when title is absent.
	Delete(ctx context.Context, title string) error
	// Titles returns every stored title in ascending order.
	Titles(ctx context.Context) ([]string, error)
	Close() error
}
