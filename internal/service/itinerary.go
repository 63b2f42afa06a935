package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/itinerary"
	"github.com/pkordes/trip-planner/internal/repo"
)

// MaxItemHours is the longest duration a schedule item may have.
const MaxItemHours = 24 * 14

// DayView is a day together with the values derived from it for display.
type DayView struct {
	Day       domain.Day
	Gaps      []itinerary.Gap
	NextStart string
}

// ItineraryService edits the days and schedule items of a trip. Every write
// loads the trip document, applies one itinerary function, and saves the
// whole document back.
type ItineraryService struct {
	trips     repo.TripRepo
	publisher Publisher
}

// NewItineraryService constructs an ItineraryService. publisher may be nil.
func NewItineraryService(trips repo.TripRepo, publisher Publisher) *ItineraryService {
	return &ItineraryService{trips: trips, publisher: orNop(publisher)}
}

// AddDay appends a day to the trip.
func (s *ItineraryService) AddDay(ctx context.Context, ownerID string, tripID uuid.UUID, day domain.Day) (domain.Day, error) {
	trip, err := s.trips.GetByID(ctx, ownerID, tripID)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.AddDay: %w", err)
	}
	day.ID = uuid.New()
	day.Label = strings.TrimSpace(day.Label)
	day.Items = nil
	trip = itinerary.AddDay(trip, day)

	saved, err := s.save(ctx, trip)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.ItineraryService.AddDay: %w", err)
	}
	return saved.Days[len(saved.Days)-1], nil
}

// RemoveDay deletes a day and all of its items.
// Returns domain.ErrNotFound if the trip or the day does not exist.
func (s *ItineraryService) RemoveDay(ctx context.Context, ownerID string, tripID, dayID uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, ownerID, tripID)
	if err != nil {
		return fmt.Errorf("service.ItineraryService.RemoveDay: %w", err)
	}
	trip, ok := itinerary.RemoveDay(trip, dayID)
	if !ok {
		return fmt.Errorf("service.ItineraryService.RemoveDay: day: %w", domain.ErrNotFound)
	}
	if _, err := s.save(ctx, trip); err != nil {
		return fmt.Errorf("service.ItineraryService.RemoveDay: %w", err)
	}
	return nil
}

// GetDay returns a day with its idle gaps and a suggested next start time.
func (s *ItineraryService) GetDay(ctx context.Context, ownerID string, tripID, dayID uuid.UUID) (DayView, error) {
	trip, err := s.trips.GetByID(ctx, ownerID, tripID)
	if err != nil {
		return DayView{}, fmt.Errorf("service.ItineraryService.GetDay: %w", err)
	}
	day, ok := itinerary.FindDay(trip, dayID)
	if !ok {
		return DayView{}, fmt.Errorf("service.ItineraryService.GetDay: day: %w", domain.ErrNotFound)
	}
	return viewOf(day), nil
}

// AddItem inserts an item and re-sorts the day chronologically.
// Returns domain.ErrValidation for an invalid item.
func (s *ItineraryService) AddItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, item domain.ScheduleItem) (DayView, error) {
	item, err := normalizeItem(item)
	if err != nil {
		return DayView{}, err
	}
	item.ID = uuid.New()
	return s.mutateDay(ctx, "AddItem", ownerID, tripID, dayID, func(d domain.Day) (domain.Day, error) {
		return itinerary.Insert(d, item), nil
	})
}

// ReplaceItem overwrites the item at index in place, keeping its id and its
// position even if the new time is out of order.
func (s *ItineraryService) ReplaceItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, index int, item domain.ScheduleItem) (DayView, error) {
	item, err := normalizeItem(item)
	if err != nil {
		return DayView{}, err
	}
	return s.mutateDay(ctx, "ReplaceItem", ownerID, tripID, dayID, func(d domain.Day) (domain.Day, error) {
		if index >= 0 && index < len(d.Items) {
			item.ID = d.Items[index].ID
		}
		return itinerary.Replace(d, index, item)
	})
}

// RemoveItem deletes the item at index.
func (s *ItineraryService) RemoveItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, index int) (DayView, error) {
	return s.mutateDay(ctx, "RemoveItem", ownerID, tripID, dayID, func(d domain.Day) (domain.Day, error) {
		return itinerary.Remove(d, index)
	})
}

// ReorderItem moves the item at from to position to without touching any
// item's time.
func (s *ItineraryService) ReorderItem(ctx context.Context, ownerID string, tripID, dayID uuid.UUID, from, to int) (DayView, error) {
	return s.mutateDay(ctx, "ReorderItem", ownerID, tripID, dayID, func(d domain.Day) (domain.Day, error) {
		return itinerary.Reorder(d, from, to)
	})
}

// mutateDay is the load → apply → save cycle shared by the item operations.
// An out-of-range index is reported as domain.ErrNotFound.
func (s *ItineraryService) mutateDay(ctx context.Context, op, ownerID string, tripID, dayID uuid.UUID, fn func(domain.Day) (domain.Day, error)) (DayView, error) {
	trip, err := s.trips.GetByID(ctx, ownerID, tripID)
	if err != nil {
		return DayView{}, fmt.Errorf("service.ItineraryService.%s: %w", op, err)
	}
	day, ok := itinerary.FindDay(trip, dayID)
	if !ok {
		return DayView{}, fmt.Errorf("service.ItineraryService.%s: day: %w", op, domain.ErrNotFound)
	}

	day, err = fn(day)
	if errors.Is(err, itinerary.ErrIndexOutOfRange) {
		return DayView{}, fmt.Errorf("service.ItineraryService.%s: %w: %w", op, domain.ErrNotFound, err)
	}
	if err != nil {
		return DayView{}, fmt.Errorf("service.ItineraryService.%s: %w", op, err)
	}

	trip, _ = itinerary.WithDay(trip, day)
	saved, err := s.save(ctx, trip)
	if err != nil {
		return DayView{}, fmt.Errorf("service.ItineraryService.%s: %w", op, err)
	}
	day, _ = itinerary.FindDay(saved, dayID)
	return viewOf(day), nil
}

func (s *ItineraryService) save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	saved, err := s.trips.Save(ctx, trip)
	if err != nil {
		return domain.Trip{}, err
	}
	s.publisher.TripChanged(ctx, saved)
	return saved, nil
}

func viewOf(day domain.Day) DayView {
	if day.Items == nil {
		day.Items = []domain.ScheduleItem{}
	}
	return DayView{
		Day:       day,
		Gaps:      itinerary.ComputeGaps(day.Items),
		NextStart: itinerary.SuggestNextStart(day),
	}
}

// normalizeItem enforces the rules for a schedule item:
//   - Title must be non-empty.
//   - Time must be a valid clock time; it is stored zero-padded so that
//     string order is clock order.
//   - Duration, if set, must be between zero and MaxItemHours.
//   - A timezone override must be a known IANA zone.
//
// Unknown category tags become "other".
func normalizeItem(item domain.ScheduleItem) (domain.ScheduleItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return item, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	clock, ok := itinerary.NormalizeClock(item.Time)
	if !ok {
		return item, fmt.Errorf("%w: time must be HH:MM", domain.ErrValidation)
	}
	item.Time = clock
	if d := item.Duration; d != nil && (math.IsNaN(*d) || *d < 0 || *d > MaxItemHours) {
		return item, fmt.Errorf("%w: duration must be between 0 and %g hours", domain.ErrValidation, float64(MaxItemHours))
	}
	if item.Timezone != "" {
		if _, err := time.LoadLocation(item.Timezone); err != nil {
			return item, fmt.Errorf("%w: unknown timezone %q", domain.ErrValidation, item.Timezone)
		}
	}
	item.Category.Tag = domain.ParseCategoryTag(string(item.Category.Tag))
	return item, nil
}
