package store

import "context"

// Logical keys, one per state store. No two stores share a key.
const (
	KeySession      = "user"
	KeyCart         = "cart"
	KeyWishlist     = "wishlist"
	KeyWallet       = "wallet_balance"
	KeySubscription = "user_subscription"
)

// Store is durable string key-value storage that survives restarts.
// Every method is idempotent. A missing key is reported by ok == false,
// never by an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error

	Close() error
}
