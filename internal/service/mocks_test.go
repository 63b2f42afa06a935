package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	create      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID     func(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)
	listByOwner func(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	save        func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete      func(ctx context.Context, ownerID string, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, ownerID, id)
}
func (m *mockTripRepo) ListByOwner(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByOwner(ctx, ownerID, p)
}
func (m *mockTripRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.save(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return m.delete(ctx, ownerID, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockExpenseRepo struct {
	save         func(ctx context.Context, e domain.Expense) (domain.Expense, error)
	saveAll      func(ctx context.Context, expenses []domain.Expense) ([]domain.Expense, error)
	getByID      func(ctx context.Context, tripID, id uuid.UUID) (domain.Expense, error)
	listByTripID func(ctx context.Context, tripID uuid.UUID) ([]domain.Expense, error)
	delete       func(ctx context.Context, tripID, id uuid.UUID) error
}

func (m *mockExpenseRepo) Save(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	return m.save(ctx, e)
}
func (m *mockExpenseRepo) SaveAll(ctx context.Context, expenses []domain.Expense) ([]domain.Expense, error) {
	return m.saveAll(ctx, expenses)
}
func (m *mockExpenseRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Expense, error) {
	return m.getByID(ctx, tripID, id)
}
func (m *mockExpenseRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Expense, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockExpenseRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	return m.delete(ctx, tripID, id)
}

var _ repo.ExpenseRepo = (*mockExpenseRepo)(nil)

type mockCategoryRepo struct {
	upsert func(ctx context.Context, ownerID, name, slug string) (domain.Category, error)
	list   func(ctx context.Context, ownerID, prefix string) ([]domain.Category, error)
}

func (m *mockCategoryRepo) Upsert(ctx context.Context, ownerID, name, slug string) (domain.Category, error) {
	return m.upsert(ctx, ownerID, name, slug)
}
func (m *mockCategoryRepo) List(ctx context.Context, ownerID, prefix string) ([]domain.Category, error) {
	return m.list(ctx, ownerID, prefix)
}

var _ repo.CategoryRepo = (*mockCategoryRepo)(nil)

// recordingPublisher remembers every notification it receives.
type recordingPublisher struct {
	mu       sync.Mutex
	trips    []domain.Trip
	expenses []uuid.UUID
}

func (p *recordingPublisher) TripChanged(_ context.Context, trip domain.Trip) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trips = append(p.trips, trip)
}

func (p *recordingPublisher) ExpensesChanged(_ context.Context, tripID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expenses = append(p.expenses, tripID)
}

var _ service.Publisher = (*recordingPublisher)(nil)

// ---- helpers ---------------------------------------------------------------

const owner = "user-1"

func validTrip() domain.Trip {
	return domain.Trip{
		ID:           uuid.New(),
		OwnerID:      owner,
		Title:        "Kyoto in autumn",
		Timezone:     "Asia/Tokyo",
		BaseCurrency: "TWD",
		Members:      []domain.Member{"Amy", "Ben", "Kitty"},
	}
}

// memTripRepo returns a repo holding exactly one trip in memory. Save
// replaces it, so tests can inspect what a service wrote.
func memTripRepo(trip *domain.Trip) *mockTripRepo {
	return &mockTripRepo{
		getByID: func(_ context.Context, ownerID string, id uuid.UUID) (domain.Trip, error) {
			if ownerID != trip.OwnerID || id != trip.ID {
				return domain.Trip{}, domain.ErrNotFound
			}
			return *trip, nil
		},
		save: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			*trip = t
			return t, nil
		},
	}
}

// memExpenseRepo is an in-memory repo.ExpenseRepo keyed by id.
func memExpenseRepo(expenses *[]domain.Expense) *mockExpenseRepo {
	find := func(tripID, id uuid.UUID) int {
		for i, e := range *expenses {
			if e.TripID == tripID && e.ID == id {
				return i
			}
		}
		return -1
	}
	save := func(_ context.Context, e domain.Expense) (domain.Expense, error) {
		if i := find(e.TripID, e.ID); i >= 0 {
			(*expenses)[i] = e
		} else {
			*expenses = append(*expenses, e)
		}
		return e, nil
	}
	return &mockExpenseRepo{
		save: save,
		saveAll: func(ctx context.Context, batch []domain.Expense) ([]domain.Expense, error) {
			out := make([]domain.Expense, 0, len(batch))
			for _, e := range batch {
				saved, _ := save(ctx, e)
				out = append(out, saved)
			}
			return out, nil
		},
		getByID: func(_ context.Context, tripID, id uuid.UUID) (domain.Expense, error) {
			if i := find(tripID, id); i >= 0 {
				return (*expenses)[i], nil
			}
			return domain.Expense{}, domain.ErrNotFound
		},
		listByTripID: func(_ context.Context, tripID uuid.UUID) ([]domain.Expense, error) {
			var out []domain.Expense
			for _, e := range *expenses {
				if e.TripID == tripID {
					out = append(out, e)
				}
			}
			return out, nil
		},
		delete: func(_ context.Context, tripID, id uuid.UUID) error {
			i := find(tripID, id)
			if i < 0 {
				return domain.ErrNotFound
			}
			*expenses = append((*expenses)[:i], (*expenses)[i+1:]...)
			return nil
		},
	}
}

// memCategoryRepo records upserted categories under "owner/slug".
func memCategoryRepo(stored map[string]domain.Category) *mockCategoryRepo {
	return &mockCategoryRepo{
		upsert: func(_ context.Context, ownerID, name, slug string) (domain.Category, error) {
			key := ownerID + "/" + slug
			if c, ok := stored[key]; ok {
				return c, nil
			}
			stored[key] = domain.Category{Name: name, Slug: slug}
			return stored[key], nil
		},
		list: func(_ context.Context, ownerID, prefix string) ([]domain.Category, error) {
			var out []domain.Category
			for key, c := range stored {
				if strings.HasPrefix(key, ownerID+"/") && strings.HasPrefix(c.Slug, prefix) {
					out = append(out, c)
				}
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
			return out, nil
		},
	}
}
