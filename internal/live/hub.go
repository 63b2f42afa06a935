// Package live pushes trip and expense snapshots to WebSocket subscribers.
// Every session watches exactly one trip; writes anywhere in the service
// layer are fanned out to the sessions watching the affected trip.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/olahol/melody"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// Event types sent to subscribers.
const (
	EventSnapshot = "snapshot"
	EventTrip     = "trip"
	EventExpenses = "expenses"
)

// Session keys.
const (
	keyTripID   = "trip_id"
	keySnapshot = "snapshot"
)

// Event is one message on the wire. Trip is set for snapshot and trip
// events, Expenses for snapshot and expenses events.
type Event struct {
	Type     string           `json:"type"`
	TripID   uuid.UUID        `json:"trip_id"`
	Trip     *domain.Trip     `json:"trip"`
	Expenses []domain.Expense `json:"expenses"`
}

// Source loads the state a subscriber is sent.
type Source interface {
	// Trip returns the trip if ownerID owns it, or domain.ErrNotFound.
	Trip(ctx context.Context, ownerID string, tripID uuid.UUID) (domain.Trip, error)
	Expenses(ctx context.Context, tripID uuid.UUID) ([]domain.Expense, error)
}

type repoSource struct {
	trips    repo.TripRepo
	expenses repo.ExpenseRepo
}

// NewRepoSource reads subscriber state straight from the repos.
func NewRepoSource(trips repo.TripRepo, expenses repo.ExpenseRepo) Source {
	return &repoSource{trips: trips, expenses: expenses}
}

func (s *repoSource) Trip(ctx context.Context, ownerID string, tripID uuid.UUID) (domain.Trip, error) {
	return s.trips.GetByID(ctx, ownerID, tripID)
}

func (s *repoSource) Expenses(ctx context.Context, tripID uuid.UUID) ([]domain.Expense, error) {
	return s.expenses.ListByTripID(ctx, tripID)
}

// Hub owns the melody instance and implements service.Publisher.
type Hub struct {
	m      *melody.Melody
	source Source
	log    *slog.Logger
}

// NewHub constructs a Hub. Call Close on shutdown to disconnect every session.
func NewHub(source Source, log *slog.Logger) *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 4096 // subscribers only send pongs
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	h := &Hub{m: m, source: source, log: log}

	m.HandleConnect(func(s *melody.Session) {
		if snap, ok := s.Get(keySnapshot); ok {
			if err := s.Write(snap.([]byte)); err != nil {
				h.log.Warn("live: snapshot write failed", "error", err)
			}
		}
	})
	m.HandleDisconnect(func(s *melody.Session) {
		tripID, _ := s.Get(keyTripID)
		h.log.Debug("live: subscriber disconnected", "trip_id", tripID)
	})
	m.HandleError(func(s *melody.Session, err error) {
		h.log.Warn("live: session error", "error", err)
	})
	return h
}

// Serve checks that ownerID owns the trip, then upgrades the request and
// blocks until the subscriber disconnects. The first message is a snapshot
// of the trip and its expenses. Errors returned before the upgrade leave
// the response untouched so the caller can write an error body.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, ownerID string, tripID uuid.UUID) error {
	trip, err := h.source.Trip(r.Context(), ownerID, tripID)
	if err != nil {
		return fmt.Errorf("live.Hub.Serve: %w", err)
	}
	expenses, err := h.source.Expenses(r.Context(), tripID)
	if err != nil {
		return fmt.Errorf("live.Hub.Serve: %w", err)
	}
	snap, err := encode(Event{Type: EventSnapshot, TripID: tripID, Trip: &trip, Expenses: nonNil(expenses)})
	if err != nil {
		return fmt.Errorf("live.Hub.Serve: %w", err)
	}

	// The upgrade has already answered the request when this fails, so it
	// is only logged.
	if err := h.m.HandleRequestWithKeys(w, r, map[string]any{
		keyTripID:   tripID.String(),
		keySnapshot: snap,
	}); err != nil {
		h.log.WarnContext(r.Context(), "live: upgrade failed", "trip_id", tripID, "error", err)
	}
	return nil
}

// TripChanged sends the saved trip document to its subscribers.
func (h *Hub) TripChanged(ctx context.Context, trip domain.Trip) {
	if h.m.Len() == 0 {
		return
	}
	h.broadcast(ctx, Event{Type: EventTrip, TripID: trip.ID, Trip: &trip})
}

// ExpensesChanged reloads the trip's expenses and sends the full list to its
// subscribers.
func (h *Hub) ExpensesChanged(ctx context.Context, tripID uuid.UUID) {
	if h.m.Len() == 0 {
		return
	}
	expenses, err := h.source.Expenses(ctx, tripID)
	if err != nil {
		h.log.ErrorContext(ctx, "live: load expenses", "trip_id", tripID, "error", err)
		return
	}
	h.broadcast(ctx, Event{Type: EventExpenses, TripID: tripID, Expenses: nonNil(expenses)})
}

// Len returns the number of connected sessions.
func (h *Hub) Len() int {
	return h.m.Len()
}

// Close disconnects every session.
func (h *Hub) Close() error {
	return h.m.Close()
}

func (h *Hub) broadcast(ctx context.Context, ev Event) {
	msg, err := encode(ev)
	if err != nil {
		h.log.ErrorContext(ctx, "live: encode event", "type", ev.Type, "error", err)
		return
	}
	want := ev.TripID.String()
	err = h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, ok := s.Get(keyTripID)
		return ok && id == want
	})
	if err != nil {
		h.log.WarnContext(ctx, "live: broadcast", "type", ev.Type, "trip_id", ev.TripID, "error", err)
	}
}

func encode(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

func nonNil(expenses []domain.Expense) []domain.Expense {
	if expenses == nil {
		return []domain.Expense{}
	}
	return expenses
}
