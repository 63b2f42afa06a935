package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/handler"
	"github.com/pkordes/trip-planner/internal/itinerary"
	"github.com/pkordes/trip-planner/internal/service"
)

type mockItineraryServicer struct {
	addDay      func(ctx context.Context, ownerID string, tripID uuid.UUID, day domain.Day) (domain.Day, error)
	removeDay   func(ctx context.Context, ownerID string, tripID, dayID uuid.UUID) error
	getDay      func(ctx context.Context, ownerID string, tripID, dayID uuid.UUID) (service.DayView, error)
	addItem     func(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, item domain.ScheduleItem) (service.DayView, error)
	replaceItem func(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, index int, item domain.ScheduleItem) (service.DayView, error)
	removeItem  func(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, index int) (service.DayView, error)
	reorderItem func(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, from, to int) (service.DayView, error)
}

func (m *mockItineraryServicer) AddDay(ctx context.Context, ownerID string, tripID uuid.UUID, day domain.Day) (domain.Day, error) {
	return m.addDay(ctx, ownerID, tripID, day)
}
func (m *mockItineraryServicer) RemoveDay(ctx context.Context, ownerID string, tripID, dayID uuid.UUID) error {
	return m.removeDay(ctx, ownerID, tripID, dayID)
}
func (m *mockItineraryServicer) GetDay(ctx context.Context, ownerID string, tripID, dayID uuid.UUID) (service.DayView, error) {
	return m.getDay(ctx, ownerID, tripID, dayID)
}
func (m *mockItineraryServicer) AddItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, item domain.ScheduleItem) (service.DayView, error) {
	return m.addItem(ctx, ownerID, tripID, dayID, item)
}
func (m *mockItineraryServicer) ReplaceItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, index int, item domain.ScheduleItem) (service.DayView, error) {
	return m.replaceItem(ctx, ownerID, tripID, dayID, index, item)
}
func (m *mockItineraryServicer) RemoveItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, index int) (service.DayView, error) {
	return m.removeItem(ctx, ownerID, tripID, dayID, index)
}
func (m *mockItineraryServicer) ReorderItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, from, to int) (service.DayView, error) {
	return m.reorderItem(ctx, ownerID, tripID, dayID, from, to)
}

var _ handler.ItineraryServicer = (*mockItineraryServicer)(nil)

func itineraryServices(svc handler.ItineraryServicer) http.Handler {
	return newHTTPHandler(handler.Services{Itinerary: svc})
}

func dayPath(tripID, dayID uuid.UUID) string {
	return fmt.Sprintf("/trips/%s/days/%s", tripID, dayID)
}

func viewFixture() service.DayView {
	return service.DayView{
		Day: domain.Day{ID: uuid.New(), Label: "Day 1", Items: []domain.ScheduleItem{
			{ID: uuid.New(), Time: "09:00", Title: "Breakfast"},
			{ID: uuid.New(), Time: "13:00", Title: "Temple"},
		}},
		Gaps:      []itinerary.Gap{{BeforeIndex: 1, Minutes: 180}},
		NextStart: "14:00",
	}
}

func TestAddDay_201(t *testing.T) {
	tripID := uuid.New()
	svc := &mockItineraryServicer{
		addDay: func(_ context.Context, _ string, id uuid.UUID, day domain.Day) (domain.Day, error) {
			assert.Equal(t, tripID, id)
			assert.Equal(t, time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), day.Date)
			day.ID = uuid.New()
			day.Label = "Day 2"
			return day, nil
		},
	}

	rec := do(itineraryServices(svc), http.MethodPost, "/trips/"+tripID.String()+"/days",
		jsonBody(t, map[string]any{"date": "2025-11-02"}))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[handler.Day](t, rec)
	assert.Equal(t, "Day 2", resp.Label)
	assert.NotNil(t, resp.Items, "items is an empty array, not null")
}

func TestAddDay_422_BadDate(t *testing.T) {
	rec := do(itineraryServices(&mockItineraryServicer{}), http.MethodPost, "/trips/"+uuid.New().String()+"/days",
		jsonBody(t, map[string]any{"date": "2nd November"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetDay_200(t *testing.T) {
	view := viewFixture()
	svc := &mockItineraryServicer{
		getDay: func(context.Context, string, uuid.UUID, uuid.UUID) (service.DayView, error) { return view, nil },
	}

	rec := do(itineraryServices(svc), http.MethodGet, dayPath(uuid.New(), view.Day.ID), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.DayView](t, rec)
	assert.Equal(t, "14:00", resp.NextStart)
	assert.Equal(t, []itinerary.Gap{{BeforeIndex: 1, Minutes: 180}}, resp.Gaps)
	assert.Len(t, resp.Day.Items, 2)
}

func TestGetDay_404(t *testing.T) {
	svc := &mockItineraryServicer{
		getDay: func(context.Context, string, uuid.UUID, uuid.UUID) (service.DayView, error) {
			return service.DayView{}, domain.ErrNotFound
		},
	}

	rec := do(itineraryServices(svc), http.MethodGet, dayPath(uuid.New(), uuid.New()), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "day not found", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestRemoveDay_204(t *testing.T) {
	svc := &mockItineraryServicer{
		removeDay: func(context.Context, string, uuid.UUID, uuid.UUID) error { return nil },
	}

	rec := do(itineraryServices(svc), http.MethodDelete, dayPath(uuid.New(), uuid.New()), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAddItem_201(t *testing.T) {
	var got domain.ScheduleItem
	svc := &mockItineraryServicer{
		addItem: func(_ context.Context, _ string, _, _ uuid.UUID, item domain.ScheduleItem) (service.DayView, error) {
			got = item
			return viewFixture(), nil
		},
	}

	rec := do(itineraryServices(svc), http.MethodPost, dayPath(uuid.New(), uuid.New())+"/items", jsonBody(t, map[string]any{
		"time":     "10:30",
		"duration": 1.5,
		"title":    "Fushimi Inari",
		"category": map[string]any{"tag": "spot", "label": "Shrine"},
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "10:30", got.Time)
	require.NotNil(t, got.Duration)
	assert.InDelta(t, 1.5, *got.Duration, 1e-9)
	assert.Equal(t, domain.ItemCategory{Tag: domain.CategorySpot, Label: "Shrine"}, got.Category)
}

func TestAddItem_422(t *testing.T) {
	svc := &mockItineraryServicer{
		addItem: func(context.Context, string, uuid.UUID, uuid.UUID, domain.ScheduleItem) (service.DayView, error) {
			return service.DayView{}, fmt.Errorf("%w: time must be HH:MM", domain.ErrValidation)
		},
	}

	rec := do(itineraryServices(svc), http.MethodPost, dayPath(uuid.New(), uuid.New())+"/items",
		jsonBody(t, map[string]any{"time": "25:00", "title": "x"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "time must be HH:MM", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestReplaceItem_200(t *testing.T) {
	svc := &mockItineraryServicer{
		replaceItem: func(_ context.Context, _ string, _, _ uuid.UUID, index int, _ domain.ScheduleItem) (service.DayView, error) {
			assert.Equal(t, 1, index)
			return viewFixture(), nil
		},
	}

	rec := do(itineraryServices(svc), http.MethodPut, dayPath(uuid.New(), uuid.New())+"/items/1",
		jsonBody(t, map[string]any{"time": "15:00", "title": "Tea"}))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReplaceItem_404_OutOfRange(t *testing.T) {
	svc := &mockItineraryServicer{
		replaceItem: func(context.Context, string, uuid.UUID, uuid.UUID, int, domain.ScheduleItem) (service.DayView, error) {
			return service.DayView{}, fmt.Errorf("%w: %w", domain.ErrNotFound, itinerary.ErrIndexOutOfRange)
		},
	}

	rec := do(itineraryServices(svc), http.MethodPut, dayPath(uuid.New(), uuid.New())+"/items/9",
		jsonBody(t, map[string]any{"time": "15:00", "title": "Tea"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "item not found", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestRemoveItem_400_BadIndex(t *testing.T) {
	rec := do(itineraryServices(&mockItineraryServicer{}), http.MethodDelete, dayPath(uuid.New(), uuid.New())+"/items/first", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveItem_200(t *testing.T) {
	svc := &mockItineraryServicer{
		removeItem: func(_ context.Context, _ string, _, _ uuid.UUID, index int) (service.DayView, error) {
			assert.Equal(t, 0, index)
			return viewFixture(), nil
		},
	}

	rec := do(itineraryServices(svc), http.MethodDelete, dayPath(uuid.New(), uuid.New())+"/items/0", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReorderItems_200(t *testing.T) {
	svc := &mockItineraryServicer{
		reorderItem: func(_ context.Context, _ string, _, _ uuid.UUID, from, to int) (service.DayView, error) {
			assert.Equal(t, 2, from)
			assert.Equal(t, 0, to)
			return viewFixture(), nil
		},
	}

	rec := do(itineraryServices(svc), http.MethodPost, dayPath(uuid.New(), uuid.New())+"/reorder",
		jsonBody(t, map[string]any{"from": 2, "to": 0}))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReorderItems_422_MissingField(t *testing.T) {
	rec := do(itineraryServices(&mockItineraryServicer{}), http.MethodPost, dayPath(uuid.New(), uuid.New())+"/reorder",
		jsonBody(t, map[string]any{"from": 2}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
