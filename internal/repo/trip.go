// Package repo contains all database access logic for the trip planner.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test;
// Begin on a pgx.Tx opens a savepoint, so batch writes nest inside it.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for trip documents.
// Every read and write is scoped by owner so one user never sees another's trips.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with DB-generated
	// id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip owned by ownerID.
	// Returns domain.ErrNotFound if no such trip exists.
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)

	// ListByOwner returns one page of the owner's trips, newest first, and the
	// total number of trips the owner has.
	ListByOwner(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Save replaces the whole stored document with trip. The last writer wins.
	// Returns domain.ErrNotFound if the trip does not exist for trip.OwnerID.
	Save(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip and, through the foreign key, its expenses.
	// Returns domain.ErrNotFound if it does not exist for ownerID.
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, owner_id, title, date_range, timezone, base_currency, budget,
	members, shared_funds, days, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (owner_id, title, date_range, timezone, base_currency, budget,
		                   members, shared_funds, days)
		VALUES (@owner_id, @title, @date_range, @timezone, @base_currency, @budget,
		        @members, @shared_funds, @days)
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, tripArgs(trip))
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key and owner.
func (r *pgTripRepo) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + `
		FROM trips
		WHERE id = @id AND owner_id = @owner_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "owner_id": ownerID})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByOwner returns one page of trips ordered by created_at descending.
// The window count gives the total without a second round trip.
func (r *pgTripRepo) ListByOwner(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const q = `SELECT ` + tripColumns + `, count(*) OVER ()
		FROM trips
		WHERE owner_id = @owner_id
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"owner_id": ownerID,
		"limit":    p.Limit,
		"offset":   p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	var total int64
	for rows.Next() {
		t, err := scanTrip(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: rows: %w", err)
	}
	return trips, total, nil
}

// Save overwrites every mutable column of the trip document.
func (r *pgTripRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET title         = @title,
		    date_range    = @date_range,
		    timezone      = @timezone,
		    base_currency = @base_currency,
		    budget        = @budget,
		    members       = @members,
		    shared_funds  = @shared_funds,
		    days          = @days,
		    updated_at    = now()
		WHERE id = @id AND owner_id = @owner_id
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Save: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key and owner.
func (r *pgTripRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// tripArgs maps the document columns. Nil slices are stored as empty JSON
// arrays rather than JSON null.
func tripArgs(trip domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"owner_id":      trip.OwnerID,
		"title":         trip.Title,
		"date_range":    trip.DateRange,
		"timezone":      trip.Timezone,
		"base_currency": trip.BaseCurrency,
		"budget":        trip.Budget, // nil becomes NULL
		"members":       nonNil(trip.Members),
		"shared_funds":  nonNil(trip.SharedFunds),
		"days":          nonNil(trip.Days),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip. Extra destinations
// are appended after the trip columns.
func scanTrip(s scanner, extra ...any) (domain.Trip, error) {
	var (
		t  domain.Trip
		id pgtype.UUID
	)

	dest := []any{
		&id, &t.OwnerID, &t.Title, &t.DateRange, &t.Timezone, &t.BaseCurrency, &t.Budget,
		&t.Members, &t.SharedFunds, &t.Days, &t.CreatedAt, &t.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Members = nonNil(t.Members)
	t.SharedFunds = nonNil(t.SharedFunds)
	t.Days = nonNil(t.Days)
	return t, nil
}
