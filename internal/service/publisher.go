package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
)

// Publisher is told about every successful write so that connected clients
// can be pushed the latest state. Implementations must not block the caller
// for long and report their own failures; a failed push never fails a write.
type Publisher interface {
	TripChanged(ctx context.Context, trip domain.Trip)
	ExpensesChanged(ctx context.Context, tripID uuid.UUID)
}

// nopPublisher is used when no Publisher is configured.
type nopPublisher struct{}

func (nopPublisher) TripChanged(context.Context, domain.Trip)     {}
func (nopPublisher) ExpensesChanged(context.Context, uuid.UUID) {}

func orNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
