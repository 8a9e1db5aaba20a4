package service

import "context"

// Loader is implemented by every state store; Load hydrates in-memory
// state from the persisted snapshot and never fails.
type Loader interface {
	Load(ctx context.Context)
}

// Degrader exposes the typed durability signal. Degraded returns the most
// recent persistence failure, or nil once a later write succeeded.
type Degrader interface {
	Degraded() error
}

// StateStore is what the composition root needs from each store.
type StateStore interface {
	Loader
	Degrader
}

var (
	_ StateStore = (*Session)(nil)
	_ StateStore = (*Wallet)(nil)
	_ StateStore = (*Cart)(nil)
	_ StateStore = (*Wishlist)(nil)
	_ StateStore = (*Subscriptions)(nil)
)
