package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
)

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	owner, ok := userID(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.Trips.Create(r.Context(), owner, requestToTrip(uuid.Nil, body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	owner, ok := userID(w, r)
	if !ok {
		return
	}
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	params := domain.NewPaginationParams(page, limit)

	result, err := s.Trips.List(r.Context(), owner, params)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	data := make([]Trip, len(result.Items))
	for i, t := range result.Items {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(result.Total),
		},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	trip, err := s.Trips.GetByID(r.Context(), owner, tripID)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripId}. Days are not part of the body;
// they are edited through the day routes.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := s.Trips.Update(r.Context(), owner, requestToTrip(tripID, body))
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	if err := s.Trips.Delete(r.Context(), owner, tripID); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTripSummary handles GET /trips/{tripId}/summary.
func (s *Server) GetTripSummary(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	sum, err := s.Trips.Summary(r.Context(), owner, tripID)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, TripSummary{
		Total:      sum.Total,
		Budget:     sum.Budget,
		Progress:   sum.Progress,
		Categories: sum.Categories,
	})
}
