package store

import (
	"context"
	"time"

	"cryptocheckout/internal/models"
)

// OrderRepository persists the locally captured order data between the
// creation flow and the detail flow. Load reports absence through the bool
// rather than an error; a reconciliation over a missing record is legal.
type OrderRepository interface {
	Save(ctx context.Context, record models.OrderRecord) error
	Load(ctx context.Context, identifier string) (models.OrderRecord, bool, error)
}

// DeadlineStore keeps the absolute countdown expiry per order identifier so a
// reload resumes the same deadline instead of restarting it.
type DeadlineStore interface {
	Get(ctx context.Context, identifier string) (time.Time, bool, error)
	Put(ctx context.Context, identifier string, deadline time.Time) error
}
