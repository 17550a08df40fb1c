package notification

import (
	"context"
	"time"
)

// DeliveryStore defines the contract for persisting delivery history.
// Implementations live in infra/store/ (Supabase, in-memory).
type DeliveryStore interface {
	// Record inserts a delivery log and fills in its ID and CreatedAt.
	Record(ctx context.Context, log *DeliveryLog) error

	// List retrieves delivery logs newest first, with pagination and filtering.
	List(ctx context.Context, filter ListFilter) ([]*DeliveryLog, int, error)
}

// DispatchRecord is what an idempotency key is bound to.
type DispatchRecord struct {
	DispatchID string `json:"dispatch_id"`
	Stage      string `json:"stage"`
}

// IdempotencyGuard remembers which dispatch a client-supplied key produced.
// Implementations live in infra/idempotency/.
type IdempotencyGuard interface {
	// Claim binds key to rec if the key is unused.
	// When the key was taken it returns the stored record and false.
	Claim(ctx context.Context, key string, rec DispatchRecord, ttl time.Duration) (existing DispatchRecord, claimed bool, err error)

	// Release forgets key so a failed dispatch can be retried by the client.
	Release(ctx context.Context, key string) error
}
