package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/internal/domain"
)

// ExpenseRepo defines the persistence operations for expense records.
// Reads, writes, and deletes are scoped by tripID.
type ExpenseRepo interface {
	// Save inserts the expense or, when its id already exists, replaces every
	// field except created_at. The last writer wins.
	Save(ctx context.Context, e domain.Expense) (domain.Expense, error)

	// SaveAll saves every expense in one transaction: either all of them are
	// stored or none is. The results are in input order.
	SaveAll(ctx context.Context, expenses []domain.Expense) ([]domain.Expense, error)

	// GetByID retrieves a single expense scoped to the given tripID.
	// Returns domain.ErrNotFound if no expense with that ID exists under that trip.
	GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Expense, error)

	// ListByTripID returns all expenses of a trip ordered by date, then creation.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Expense, error)

	// Delete removes an expense scoped to the given tripID.
	// Returns domain.ErrNotFound if no expense with that ID exists under that trip.
	Delete(ctx context.Context, tripID, id uuid.UUID) error
}

// pgExpenseRepo is the Postgres implementation of ExpenseRepo.
type pgExpenseRepo struct {
	db db
}

// NewExpenseRepo constructs an ExpenseRepo backed by the provided db connection.
func NewExpenseRepo(db db) ExpenseRepo {
	return &pgExpenseRepo{db: db}
}

const expenseColumns = `id, trip_id, title, amount, currency, rate, base_amount, category,
	payment_method, payer, beneficiary_member, spent_on, location, notes, image_url,
	created_at, updated_at`

// Save upserts on the primary key. The trip_id is part of the conflict
// condition so a record can never be moved to another trip.
func (r *pgExpenseRepo) Save(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	const q = `
		INSERT INTO expenses (id, trip_id, title, amount, currency, rate, base_amount, category,
		                      payment_method, payer, beneficiary_member, spent_on, location,
		                      notes, image_url)
		VALUES (@id, @trip_id, @title, @amount, @currency, @rate, @base_amount, @category,
		        @payment_method, @payer, @beneficiary_member, @spent_on, @location,
		        @notes, @image_url)
		ON CONFLICT (id) DO UPDATE
		SET title              = EXCLUDED.title,
		    amount             = EXCLUDED.amount,
		    currency           = EXCLUDED.currency,
		    rate               = EXCLUDED.rate,
		    base_amount        = EXCLUDED.base_amount,
		    category           = EXCLUDED.category,
		    payment_method     = EXCLUDED.payment_method,
		    payer              = EXCLUDED.payer,
		    beneficiary_member = EXCLUDED.beneficiary_member,
		    spent_on           = EXCLUDED.spent_on,
		    location           = EXCLUDED.location,
		    notes              = EXCLUDED.notes,
		    image_url          = EXCLUDED.image_url,
		    updated_at         = now()
		WHERE expenses.trip_id = EXCLUDED.trip_id
		RETURNING ` + expenseColumns

	var beneficiary *string
	if m, single := e.Beneficiary.Member(); single {
		s := string(m)
		beneficiary = &s
	}
	var spentOn *time.Time
	if !e.Date.IsZero() {
		spentOn = &e.Date
	}

	args := pgx.NamedArgs{
		"id":                 e.ID,
		"trip_id":            e.TripID,
		"title":              e.Title,
		"amount":             e.Amount,
		"currency":           e.Currency,
		"rate":               e.Rate,
		"base_amount":        e.BaseAmount,
		"category":           e.Category,
		"payment_method":     e.PaymentMethod,
		"payer":              string(e.Payer),
		"beneficiary_member": beneficiary, // nil becomes NULL (everyone)
		"spent_on":           spentOn,
		"location":           e.Location,
		"notes":              e.Notes,
		"image_url":          e.ImageURL,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanExpense(row)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.Save: %w", err)
	}
	return result, nil
}

// SaveAll runs Save for each expense inside a single transaction.
func (r *pgExpenseRepo) SaveAll(ctx context.Context, expenses []domain.Expense) ([]domain.Expense, error) {
	saved := make([]domain.Expense, 0, len(expenses))
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		inTx := &pgExpenseRepo{db: tx}
		for _, e := range expenses {
			result, err := inTx.Save(ctx, e)
			if err != nil {
				return err
			}
			saved = append(saved, result)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.SaveAll: %w", err)
	}
	return saved, nil
}

// GetByID retrieves an expense by primary key within a trip.
func (r *pgExpenseRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Expense, error) {
	const q = `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE id = @id AND trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "trip_id": tripID})
	result, err := scanExpense(row)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns every expense of a trip.
func (r *pgExpenseRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Expense, error) {
	const q = `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE trip_id = @trip_id
		ORDER BY spent_on NULLS LAST, created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ExpenseRepo.ListByTripID: scan: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListByTripID: rows: %w", err)
	}
	return expenses, nil
}

// Delete removes an expense by primary key within a trip.
func (r *pgExpenseRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	const q = `DELETE FROM expenses WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.ExpenseRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ExpenseRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanExpense maps a single database row into a domain.Expense.
// It handles the UUIDs, the nullable beneficiary, and the nullable date.
func scanExpense(s scanner) (domain.Expense, error) {
	var (
		e           domain.Expense
		id, tripID  pgtype.UUID
		payer       string
		beneficiary pgtype.Text
		spentOn     pgtype.Date
	)

	err := s.Scan(&id, &tripID, &e.Title, &e.Amount, &e.Currency, &e.Rate, &e.BaseAmount,
		&e.Category, &e.PaymentMethod, &payer, &beneficiary, &spentOn, &e.Location,
		&e.Notes, &e.ImageURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Expense{}, domain.ErrNotFound
		}
		return domain.Expense{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.TripID = uuid.UUID(tripID.Bytes)
	e.Payer = domain.Member(payer)
	if beneficiary.Valid {
		e.Beneficiary = domain.Specific(domain.Member(beneficiary.String))
	}
	if spentOn.Valid {
		e.Date = spentOn.Time
	}
	return e, nil
}
