package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/trip-planner/internal/domain"
)

// CategoryRepo remembers the expense categories a user has typed so they can
// be offered back to that user later. Every operation is scoped by ownerID.
type CategoryRepo interface {
	// Upsert inserts a category by slug, or returns the existing one if the slug
	// already exists for ownerID. The name of the first use is preserved on conflict.
	Upsert(ctx context.Context, ownerID, name, slug string) (domain.Category, error)

	// List returns ownerID's categories whose slug starts with prefix, ordered
	// by slug. If prefix is empty, all of them are returned.
	List(ctx context.Context, ownerID, prefix string) ([]domain.Category, error)
}

// pgCategoryRepo is the Postgres implementation of CategoryRepo.
type pgCategoryRepo struct {
	db db
}

// NewCategoryRepo constructs a CategoryRepo backed by the provided db connection.
func NewCategoryRepo(db db) CategoryRepo {
	return &pgCategoryRepo{db: db}
}

// Upsert inserts a category or returns the existing row on slug conflict.
// DO UPDATE SET is needed for RETURNING to yield the existing row; with
// DO NOTHING it returns nothing on conflict.
func (r *pgCategoryRepo) Upsert(ctx context.Context, ownerID, name, slug string) (domain.Category, error) {
	const q = `
		INSERT INTO expense_categories (owner_id, name, slug)
		VALUES (@owner_id, @name, @slug)
		ON CONFLICT (owner_id, slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING name, slug`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "name": name, "slug": slug})
	result, err := scanCategory(row)
	if err != nil {
		return domain.Category{}, fmt.Errorf("repo.CategoryRepo.Upsert: %w", err)
	}
	return result, nil
}

// List returns ownerID's categories whose slug starts with prefix, ordered by slug.
func (r *pgCategoryRepo) List(ctx context.Context, ownerID, prefix string) ([]domain.Category, error) {
	const q = `
		SELECT name, slug
		FROM expense_categories
		WHERE owner_id = @owner_id
		  AND slug LIKE @prefix || '%'
		ORDER BY slug`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "prefix": prefix})
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CategoryRepo.List: scan: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: rows: %w", err)
	}
	return categories, nil
}

func scanCategory(s scanner) (domain.Category, error) {
	var c domain.Category
	if err := s.Scan(&c.Name, &c.Slug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, err
	}
	return c, nil
}
