// Package store provides the ephemeral keyed store that holds transaction
// artifacts between orchestration steps. Every value is scoped by a TTL;
// absence (expired or never set) is a normal outcome callers must check via
// ErrNotFound, never a zero value. Reads do not refresh TTLs.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent. Whether the key expired or
// was never set is indistinguishable by contract, and deliberately so.
var ErrNotFound = errors.New("store: key not found")

// KV is the keyed-store contract. All writes are last-write-wins; no
// multi-key atomicity is assumed beyond each key's own TTL semantics.
type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Transaction-scoped key namespace. Each prefix is suffixed with the
// transaction id, except the orders namespace which is keyed by
// <eventDay><paymentNo> so orders can be located later for returns.
const (
	placeOrderPrefix = "txn:placeOrder:"

	AgentKeyPrefix           = placeOrderPrefix + "agent:"
	AmountKeyPrefix          = placeOrderPrefix + "amount:"
	AuthorizeResultKeyPrefix = placeOrderPrefix + "authorizeSeatReservationResult:"
	CustomerProfileKeyPrefix = placeOrderPrefix + "customerProfile:"

	OrdersKeyPrefix = "orders:"
)

const (
	// TransactionTTL bounds the lifetime of every transaction-scoped entry.
	TransactionTTL = time.Hour
	// OrdersTTL keeps finalized order snapshots long enough for next-day
	// return lookups.
	OrdersTTL = 24 * time.Hour
)
