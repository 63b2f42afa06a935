// Package service contains the business logic for the trip planner API.
// Services validate inputs, load the current document, apply the pure
// itinerary and ledger functions, and save the result. No SQL lives here;
// services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/ledger"
	"github.com/pkordes/trip-planner/internal/repo"
)

// TripDefaults fills in fields a new trip was created without.
type TripDefaults struct {
	Timezone     string
	BaseCurrency string
}

// TripSummary is the spending overview shown next to the budget.
type TripSummary struct {
	Total      int64
	Budget     *float64
	Progress   float64 // percent of budget spent, capped at 100
	Categories []ledger.CategoryTotal
}

// TripService implements business logic for trip documents.
type TripService struct {
	trips     repo.TripRepo
	expenses  repo.ExpenseRepo
	publisher Publisher
	defaults  TripDefaults
}

// NewTripService constructs a TripService. publisher may be nil.
func NewTripService(trips repo.TripRepo, expenses repo.ExpenseRepo, publisher Publisher, defaults TripDefaults) *TripService {
	return &TripService{trips: trips, expenses: expenses, publisher: orNop(publisher), defaults: defaults}
}

// Create validates and persists a new trip for ownerID.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, ownerID string, trip domain.Trip) (domain.Trip, error) {
	trip.OwnerID = ownerID
	if trip.Timezone == "" {
		trip.Timezone = s.defaults.Timezone
	}
	if trip.BaseCurrency == "" {
		trip.BaseCurrency = s.defaults.BaseCurrency
	}
	trip, err := normalizeTrip(trip)
	if err != nil {
		return domain.Trip{}, err
	}
	trip.Days = nil

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single trip owned by ownerID.
// Returns domain.ErrNotFound if it does not exist for that owner.
func (s *TripService) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns one page of the owner's trips.
// Items is never nil so callers can safely range over it.
func (s *TripService) List(ctx context.Context, ownerID string, p domain.PaginationParams) (domain.Page[domain.Trip], error) {
	trips, total, err := s.trips.ListByOwner(ctx, ownerID, p)
	if err != nil {
		return domain.Page[domain.Trip]{}, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return domain.Page[domain.Trip]{Items: trips, Total: total, PaginationParams: p}, nil
}

// Update replaces the trip's metadata and roster. Days are kept from the
// stored document; they change only through the ItineraryService.
// Returns domain.ErrValidation for invalid input, domain.ErrNotFound if the
// trip does not exist for ownerID.
func (s *TripService) Update(ctx context.Context, ownerID string, trip domain.Trip) (domain.Trip, error) {
	trip, err := normalizeTrip(trip)
	if err != nil {
		return domain.Trip{}, err
	}
	current, err := s.trips.GetByID(ctx, ownerID, trip.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	trip.OwnerID = ownerID
	trip.Days = current.Days
	trip.CreatedAt = current.CreatedAt

	saved, err := s.trips.Save(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	s.publisher.TripChanged(ctx, saved)
	return saved, nil
}

// Delete removes a trip and its expenses.
// Returns domain.ErrNotFound if it does not exist for ownerID.
func (s *TripService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// Summary totals the trip's expenses against its budget.
func (s *TripService) Summary(ctx context.Context, ownerID string, id uuid.UUID) (TripSummary, error) {
	trip, err := s.trips.GetByID(ctx, ownerID, id)
	if err != nil {
		return TripSummary{}, fmt.Errorf("service.TripService.Summary: %w", err)
	}
	expenses, err := s.expenses.ListByTripID(ctx, id)
	if err != nil {
		return TripSummary{}, fmt.Errorf("service.TripService.Summary: %w", err)
	}
	total := ledger.TotalBaseAmount(expenses)
	return TripSummary{
		Total:      total,
		Budget:     trip.Budget,
		Progress:   ledger.BudgetProgress(total, trip.Budget),
		Categories: ledger.CategoryTotals(expenses),
	}, nil
}

// normalizeTrip trims the roster and enforces the business rules common to
// Create and Update:
//   - Title must be non-empty.
//   - Timezone must be a known IANA zone and BaseCurrency an ISO 4217 code.
//   - Budget, if set, must not be negative.
//   - Members must be unique and non-blank, with at least one ordinary
//     participant; every shared fund must be on the roster.
func normalizeTrip(trip domain.Trip) (domain.Trip, error) {
	trip.Title = strings.TrimSpace(trip.Title)
	if trip.Title == "" {
		return trip, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if _, err := time.LoadLocation(trip.Timezone); err != nil || trip.Timezone == "" {
		return trip, fmt.Errorf("%w: unknown timezone %q", domain.ErrValidation, trip.Timezone)
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(trip.BaseCurrency)))
	if err != nil {
		return trip, fmt.Errorf("%w: unknown base currency %q", domain.ErrValidation, trip.BaseCurrency)
	}
	trip.BaseCurrency = unit.String()
	if trip.Budget != nil && *trip.Budget < 0 {
		return trip, fmt.Errorf("%w: budget must not be negative", domain.ErrValidation)
	}

	members := make([]domain.Member, 0, len(trip.Members))
	for _, m := range trip.Members {
		m = domain.Member(strings.TrimSpace(string(m)))
		if m == "" {
			return trip, fmt.Errorf("%w: member names must not be blank", domain.ErrValidation)
		}
		if slices.Contains(members, m) {
			return trip, fmt.Errorf("%w: duplicate member %q", domain.ErrValidation, m)
		}
		members = append(members, m)
	}
	trip.Members = members

	funds := make([]domain.Member, 0, len(trip.SharedFunds))
	for _, f := range trip.SharedFunds {
		f = domain.Member(strings.TrimSpace(string(f)))
		if !slices.Contains(members, f) {
			return trip, fmt.Errorf("%w: shared fund %q is not a member", domain.ErrValidation, f)
		}
		if !slices.Contains(funds, f) {
			funds = append(funds, f)
		}
	}
	trip.SharedFunds = funds

	if len(members)-len(funds) < 1 {
		return trip, fmt.Errorf("%w: at least one member must not be a shared fund", domain.ErrValidation)
	}
	return trip, nil
}
