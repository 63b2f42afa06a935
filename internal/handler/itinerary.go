package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/itinerary"
	"github.com/pkordes/trip-planner/internal/service"
)

// dayScope resolves the caller, {tripId} and {dayId}.
func dayScope(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, uuid.UUID, bool) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return "", uuid.Nil, uuid.Nil, false
	}
	dayID, ok := pathUUID(w, r, "dayId")
	return owner, tripID, dayID, ok
}

// AddDay handles POST /trips/{tripId}/days.
func (s *Server) AddDay(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	var body DayRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	day, err := s.Itinerary.AddDay(r.Context(), owner, tripID, domain.Day{
		Date:  dateOrZero(body.Date),
		Label: derefString(body.Label),
	})
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, dayToResponse(day))
}

// GetDay handles GET /trips/{tripId}/days/{dayId}.
func (s *Server) GetDay(w http.ResponseWriter, r *http.Request) {
	owner, tripID, dayID, ok := dayScope(w, r)
	if !ok {
		return
	}
	view, err := s.Itinerary.GetDay(r.Context(), owner, tripID, dayID)
	if err != nil {
		s.writeServiceError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusOK, dayViewToResponse(view))
}

// RemoveDay handles DELETE /trips/{tripId}/days/{dayId}.
func (s *Server) RemoveDay(w http.ResponseWriter, r *http.Request) {
	owner, tripID, dayID, ok := dayScope(w, r)
	if !ok {
		return
	}
	if err := s.Itinerary.RemoveDay(r.Context(), owner, tripID, dayID); err != nil {
		s.writeServiceError(w, r, err, "day not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /trips/{tripId}/days/{dayId}/items. The item is
// placed by start time.
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, tripID, dayID, ok := dayScope(w, r)
	if !ok {
		return
	}
	var item domain.ScheduleItem
	if !decodeJSON(w, r, &item) {
		return
	}
	view, err := s.Itinerary.AddItem(r.Context(), owner, tripID, dayID, item)
	if err != nil {
		s.writeServiceError(w, r, err, "day not found")
		return
	}
	writeJSON(w, http.StatusCreated, dayViewToResponse(view))
}

// ReplaceItem handles PUT /trips/{tripId}/days/{dayId}/items/{index}.
func (s *Server) ReplaceItem(w http.ResponseWriter, r *http.Request) {
	owner, tripID, dayID, ok := dayScope(w, r)
	if !ok {
		return
	}
	index, ok := pathInt(w, r, "index")
	if !ok {
		return
	}
	var item domain.ScheduleItem
	if !decodeJSON(w, r, &item) {
		return
	}
	view, err := s.Itinerary.ReplaceItem(r.Context(), owner, tripID, dayID, index, item)
	if err != nil {
		s.writeServiceError(w, r, err, itemNotFound(err))
		return
	}
	writeJSON(w, http.StatusOK, dayViewToResponse(view))
}

// RemoveItem handles DELETE /trips/{tripId}/days/{dayId}/items/{index}.
func (s *Server) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, tripID, dayID, ok := dayScope(w, r)
	if !ok {
		return
	}
	index, ok := pathInt(w, r, "index")
	if !ok {
		return
	}
	view, err := s.Itinerary.RemoveItem(r.Context(), owner, tripID, dayID, index)
	if err != nil {
		s.writeServiceError(w, r, err, itemNotFound(err))
		return
	}
	writeJSON(w, http.StatusOK, dayViewToResponse(view))
}

// ReorderItems handles POST /trips/{tripId}/days/{dayId}/reorder.
// Times are left as they are, so the day may stop being chronological.
func (s *Server) ReorderItems(w http.ResponseWriter, r *http.Request) {
	owner, tripID, dayID, ok := dayScope(w, r)
	if !ok {
		return
	}
	var body ReorderRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.From == nil || body.To == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("from and to are required"))
		return
	}
	view, err := s.Itinerary.ReorderItem(r.Context(), owner, tripID, dayID, *body.From, *body.To)
	if err != nil {
		s.writeServiceError(w, r, err, itemNotFound(err))
		return
	}
	writeJSON(w, http.StatusOK, dayViewToResponse(view))
}

func itemNotFound(err error) string {
	if errors.Is(err, itinerary.ErrIndexOutOfRange) {
		return "item not found"
	}
	return "day not found"
}

func dayViewToResponse(v service.DayView) DayView {
	gaps := v.Gaps
	if gaps == nil {
		gaps = []itinerary.Gap{}
	}
	return DayView{Day: dayToResponse(v.Day), Gaps: gaps, NextStart: v.NextStart}
}
