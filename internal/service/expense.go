package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/ledger"
	"github.com/pkordes/trip-planner/internal/repo"
)

// Settlement is the derived who-owes-whom view of a trip's ledger.
// It is recomputed on every read and never stored.
type Settlement struct {
	Total     int64
	Balances  ledger.Balances
	Transfers []ledger.Transfer
}

// ExpenseService implements business logic for expense records.
// It holds the trips repo because every expense operation first verifies the
// caller owns the parent trip.
type ExpenseService struct {
	trips      repo.TripRepo
	expenses   repo.ExpenseRepo
	categories *CategoryService
	publisher  Publisher
}

// NewExpenseService constructs an ExpenseService. publisher may be nil.
func NewExpenseService(trips repo.TripRepo, expenses repo.ExpenseRepo, categories *CategoryService, publisher Publisher) *ExpenseService {
	return &ExpenseService{trips: trips, expenses: expenses, categories: categories, publisher: orNop(publisher)}
}

// Add records a new expense. Amount and rate are parsed leniently: an
// unparseable amount counts as 0 and an unparseable rate as 1.
// Returns domain.ErrValidation if the payer is missing or a number is out of
// range. Once the expense is saved the call succeeds; remembering its
// category is best effort.
func (s *ExpenseService) Add(ctx context.Context, ownerID string, tripID uuid.UUID, in ledger.ExpenseInput) (domain.Expense, error) {
	if _, err := s.trips.GetByID(ctx, ownerID, tripID); err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Add: %w", err)
	}
	in, err := normalizeExpenseInput(in)
	if err != nil {
		return domain.Expense{}, err
	}
	saved, err := s.expenses.Save(ctx, ledger.NewExpense(tripID, in))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Add: %w", err)
	}
	s.categories.rememberAfterWrite(ctx, ownerID, saved.Category)
	s.publisher.ExpensesChanged(ctx, tripID)
	return saved, nil
}

// Update replaces an expense's fields and recomputes its base amount.
// Returns domain.ErrNotFound if the trip or expense does not exist.
func (s *ExpenseService) Update(ctx context.Context, ownerID string, tripID, id uuid.UUID, in ledger.ExpenseInput) (domain.Expense, error) {
	if _, err := s.trips.GetByID(ctx, ownerID, tripID); err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Update: %w", err)
	}
	in, err := normalizeExpenseInput(in)
	if err != nil {
		return domain.Expense{}, err
	}
	existing, err := s.expenses.GetByID(ctx, tripID, id)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Update: %w", err)
	}
	saved, err := s.expenses.Save(ctx, ledger.UpdateExpense(existing, in))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Update: %w", err)
	}
	s.categories.rememberAfterWrite(ctx, ownerID, saved.Category)
	s.publisher.ExpensesChanged(ctx, tripID)
	return saved, nil
}

// Delete removes an expense. Nothing else references it.
func (s *ExpenseService) Delete(ctx context.Context, ownerID string, tripID, id uuid.UUID) error {
	if _, err := s.trips.GetByID(ctx, ownerID, tripID); err != nil {
		return fmt.Errorf("service.ExpenseService.Delete: %w", err)
	}
	if err := s.expenses.Delete(ctx, tripID, id); err != nil {
		return fmt.Errorf("service.ExpenseService.Delete: %w", err)
	}
	s.publisher.ExpensesChanged(ctx, tripID)
	return nil
}

// List returns every expense of the trip.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ExpenseService) List(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.Expense, error) {
	if _, err := s.trips.GetByID(ctx, ownerID, tripID); err != nil {
		return nil, fmt.Errorf("service.ExpenseService.List: %w", err)
	}
	expenses, err := s.expenses.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExpenseService.List: %w", err)
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return expenses, nil
}

// Settlement computes every member's net balance and a set of transfers
// that would settle them.
func (s *ExpenseService) Settlement(ctx context.Context, ownerID string, tripID uuid.UUID) (Settlement, error) {
	trip, err := s.trips.GetByID(ctx, ownerID, tripID)
	if err != nil {
		return Settlement{}, fmt.Errorf("service.ExpenseService.Settlement: %w", err)
	}
	expenses, err := s.expenses.ListByTripID(ctx, tripID)
	if err != nil {
		return Settlement{}, fmt.Errorf("service.ExpenseService.Settlement: %w", err)
	}
	balances := ledger.ComputeBalances(expenses, trip.Members, trip.SharedFunds)
	return Settlement{
		Total:     ledger.TotalBaseAmount(expenses),
		Balances:  balances,
		Transfers: ledger.SuggestTransfers(balances),
	}, nil
}

// normalizeExpenseInput trims the text fields, requires a payer and rejects
// amounts and rates outside the ledger's range. Payers and beneficiaries are
// not checked against the roster; the settlement ignores names it does not
// know.
func normalizeExpenseInput(in ledger.ExpenseInput) (ledger.ExpenseInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Payer = domain.Member(strings.TrimSpace(string(in.Payer)))
	if in.Payer == "" {
		return in, fmt.Errorf("%w: payer is required", domain.ErrValidation)
	}
	if m, ok := in.Beneficiary.Member(); ok {
		m = domain.Member(strings.TrimSpace(string(m)))
		if m == "" {
			return in, fmt.Errorf("%w: beneficiary member is required", domain.ErrValidation)
		}
		in.Beneficiary = domain.Specific(m)
	}
	if err := ledger.CheckInput(in); err != nil {
		return in, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return in, nil
}
