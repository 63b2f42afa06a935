package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/ledger"
	"github.com/pkordes/trip-planner/internal/repo"
)

// interchangeDateLayouts are accepted on import; the first is used on export.
var interchangeDateLayouts = []string{"2006-01-02", "2006/01/02"}

// ExportService converts a trip's ledger to and from the interchange rows
// used for CSV and JSON files.
type ExportService struct {
	trips      repo.TripRepo
	expenses   repo.ExpenseRepo
	categories *CategoryService
	publisher  Publisher
}

// NewExportService constructs an ExportService. publisher may be nil.
func NewExportService(trips repo.TripRepo, expenses repo.ExpenseRepo, categories *CategoryService, publisher Publisher) *ExportService {
	return &ExportService{trips: trips, expenses: expenses, categories: categories, publisher: orNop(publisher)}
}

// Export returns one row per expense of the trip, in ledger order.
func (s *ExportService) Export(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.InterchangeRow, error) {
	if _, err := s.trips.GetByID(ctx, ownerID, tripID); err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	expenses, err := s.expenses.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.InterchangeRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, rowOf(e))
	}
	return rows, nil
}

// Import appends every row to the trip's ledger with the same defaulting as
// a manually entered expense. Rows are all checked before any is saved; a bad
// row fails the whole import with domain.ErrValidation naming its 1-based
// position. The rows are then saved in one transaction, so a storage failure
// also leaves the ledger unchanged.
func (s *ExportService) Import(ctx context.Context, ownerID string, tripID uuid.UUID, rows []domain.InterchangeRow) ([]domain.Expense, error) {
	if _, err := s.trips.GetByID(ctx, ownerID, tripID); err != nil {
		return nil, fmt.Errorf("service.ExportService.Import: %w", err)
	}

	inputs := make([]ledger.ExpenseInput, 0, len(rows))
	for i, row := range rows {
		in, err := inputOf(row)
		if err == nil {
			in, err = normalizeExpenseInput(in)
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		inputs = append(inputs, in)
	}

	pending := make([]domain.Expense, len(inputs))
	for i, in := range inputs {
		pending[i] = ledger.NewExpense(tripID, in)
	}
	imported, err := s.expenses.SaveAll(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Import: %w", err)
	}
	for _, e := range imported {
		s.categories.rememberAfterWrite(ctx, ownerID, e.Category)
	}
	if len(imported) > 0 {
		s.publisher.ExpensesChanged(ctx, tripID)
	}
	return imported, nil
}

func rowOf(e domain.Expense) domain.InterchangeRow {
	row := domain.InterchangeRow{
		Title:       e.Title,
		Category:    e.Category,
		Amount:      decimal.NewFromFloat(e.Amount).String(),
		Currency:    e.Currency,
		Rate:        decimal.NewFromFloat(e.Rate).String(),
		Payer:       string(e.Payer),
		Beneficiary: e.Beneficiary.String(),
		Note:        e.Notes,
	}
	if !e.Date.IsZero() {
		row.Date = e.Date.Format(interchangeDateLayouts[0])
	}
	return row
}

func inputOf(row domain.InterchangeRow) (ledger.ExpenseInput, error) {
	date, err := parseInterchangeDate(row.Date)
	if err != nil {
		return ledger.ExpenseInput{}, err
	}
	return ledger.ExpenseInput{
		Title:       row.Title,
		Amount:      row.Amount,
		Currency:    row.Currency,
		Rate:        row.Rate,
		Category:    row.Category,
		Payer:       domain.Member(row.Payer),
		Beneficiary: domain.ParseBeneficiary(row.Beneficiary),
		Date:        date,
		Notes:       row.Note,
	}, nil
}

// parseInterchangeDate accepts an empty string as "no date".
func parseInterchangeDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var errs []error
	for _, layout := range interchangeDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		errs = append(errs, err)
	}
	return time.Time{}, fmt.Errorf("%w: date %q: %w", domain.ErrValidation, s, errors.Join(errs...))
}
