// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, expense.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/ledger"
	"github.com/pkordes/trip-planner/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, ownerID string, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, ownerID string, p domain.PaginationParams) (domain.Page[domain.Trip], error)
	Update(ctx context.Context, ownerID string, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	Summary(ctx context.Context, ownerID string, id uuid.UUID) (service.TripSummary, error)
}

// ItineraryServicer defines the day and schedule item operations.
type ItineraryServicer interface {
	AddDay(ctx context.Context, ownerID string, tripID uuid.UUID, day domain.Day) (domain.Day, error)
	RemoveDay(ctx context.Context, ownerID string, tripID, dayID uuid.UUID) error
	GetDay(ctx context.Context, ownerID string, tripID, dayID uuid.UUID) (service.DayView, error)
	AddItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, item domain.ScheduleItem) (service.DayView, error)
	ReplaceItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, index int, item domain.ScheduleItem) (service.DayView, error)
	RemoveItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, index int) (service.DayView, error)
	ReorderItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, from, to int) (service.DayView, error)
}

// ExpenseServicer defines the ledger operations.
type ExpenseServicer interface {
	Add(ctx context.Context, ownerID string, tripID uuid.UUID, in ledger.ExpenseInput) (domain.Expense, error)
	Update(ctx context.Context, ownerID string, tripID, id uuid.UUID, in ledger.ExpenseInput) (domain.Expense, error)
	Delete(ctx context.Context, ownerID string, tripID, id uuid.UUID) error
	List(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.Expense, error)
	Settlement(ctx context.Context, ownerID string, tripID uuid.UUID) (service.Settlement, error)
}

// CategoryServicer suggests a user's expense categories.
type CategoryServicer interface {
	Suggest(ctx context.Context, ownerID, prefix string) ([]domain.Category, error)
}

// ExportServicer converts a ledger to and from interchange rows.
type ExportServicer interface {
	Export(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.InterchangeRow, error)
	Import(ctx context.Context, ownerID string, tripID uuid.UUID, rows []domain.InterchangeRow) ([]domain.Expense, error)
}

// LiveServer upgrades a request to a trip subscription.
type LiveServer interface {
	Serve(w http.ResponseWriter, r *http.Request, ownerID string, tripID uuid.UUID) error
}

// Services bundles the Server's dependencies. A nil field disables nothing
// at routing time; tests set only what they exercise.
type Services struct {
	Trips      TripServicer
	Itinerary  ItineraryServicer
	Expenses   ExpenseServicer
	Categories CategoryServicer
	Export     ExportServicer
	Live       LiveServer
}

// Server holds the handler dependencies.
type Server struct {
	Services
	log *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{Services: svc, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, nil)
}

// Routes returns the API router. Everything except the health check and the
// OpenAPI document is wrapped in auth, which must place the user id on the
// request context (see middleware.NewAuthHandler).
func (s *Server) Routes(auth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Get("/categories", s.ListCategories)

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)

			r.Route("/{tripId}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Get("/summary", s.GetTripSummary)

				r.Post("/days", s.AddDay)
				r.Route("/days/{dayId}", func(r chi.Router) {
					r.Get("/", s.GetDay)
					r.Delete("/", s.RemoveDay)
					r.Post("/items", s.AddItem)
					r.Put("/items/{index}", s.ReplaceItem)
					r.Delete("/items/{index}", s.RemoveItem)
					r.Post("/reorder", s.ReorderItems)
				})

				r.Get("/expenses", s.ListExpenses)
				r.Post("/expenses", s.AddExpense)
				r.Put("/expenses/{expenseId}", s.UpdateExpense)
				r.Delete("/expenses/{expenseId}", s.DeleteExpense)
				r.Get("/settlement", s.GetSettlement)

				r.Get("/export", s.GetExport)
				r.Post("/import", s.PostImport)
				r.Get("/live", s.GetLive)
			})
		})
	})
	return r
}
