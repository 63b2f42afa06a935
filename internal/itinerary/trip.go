package itinerary

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
)

// AddDay appends day to the trip. An empty label becomes "Day N" where N is
// the day's 1-based position.
func AddDay(trip domain.Trip, day domain.Day) domain.Trip {
	if day.Label == "" {
		day.Label = fmt.Sprintf("Day %d", len(trip.Days)+1)
	}
	if day.Items == nil {
		day.Items = []domain.ScheduleItem{}
	}
	days := make([]domain.Day, 0, len(trip.Days)+1)
	days = append(days, trip.Days...)
	trip.Days = append(days, day)
	return trip
}

// RemoveDay drops the day with the given id. It reports false when the trip
// has no such day.
func RemoveDay(trip domain.Trip, dayID uuid.UUID) (domain.Trip, bool) {
	i := dayIndex(trip, dayID)
	if i < 0 {
		return trip, false
	}
	trip.Days = slices.Delete(slices.Clone(trip.Days), i, i+1)
	return trip, true
}

// FindDay returns the day with the given id.
func FindDay(trip domain.Trip, dayID uuid.UUID) (domain.Day, bool) {
	i := dayIndex(trip, dayID)
	if i < 0 {
		return domain.Day{}, false
	}
	return trip.Days[i], true
}

// WithDay replaces the day that has day.ID. It reports false when the trip
// has no such day.
func WithDay(trip domain.Trip, day domain.Day) (domain.Trip, bool) {
	i := dayIndex(trip, day.ID)
	if i < 0 {
		return trip, false
	}
	days := slices.Clone(trip.Days)
	days[i] = day
	trip.Days = days
	return trip, true
}

func dayIndex(trip domain.Trip, dayID uuid.UUID) int {
	return slices.IndexFunc(trip.Days, func(d domain.Day) bool { return d.ID == dayID })
}
