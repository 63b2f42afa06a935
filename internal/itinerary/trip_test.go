package itinerary_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/itinerary"
)

func TestAddDay_DefaultsLabel(t *testing.T) {
	trip := domain.Trip{}

	trip = itinerary.AddDay(trip, domain.Day{ID: uuid.New()})
	trip = itinerary.AddDay(trip, domain.Day{ID: uuid.New(), Label: "Arrival"})
	trip = itinerary.AddDay(trip, domain.Day{ID: uuid.New()})

	require.Len(t, trip.Days, 3)
	assert.Equal(t, "Day 1", trip.Days[0].Label)
	assert.Equal(t, "Arrival", trip.Days[1].Label)
	assert.Equal(t, "Day 3", trip.Days[2].Label)
	assert.NotNil(t, trip.Days[0].Items)
}

func TestRemoveDay(t *testing.T) {
	keep, drop := domain.Day{ID: uuid.New()}, domain.Day{ID: uuid.New()}
	trip := domain.Trip{Days: []domain.Day{keep, drop}}

	got, ok := itinerary.RemoveDay(trip, drop.ID)

	require.True(t, ok)
	assert.Equal(t, []domain.Day{keep}, got.Days)
	assert.Len(t, trip.Days, 2)

	_, ok = itinerary.RemoveDay(trip, uuid.New())
	assert.False(t, ok)
}

func TestFindDayAndWithDay(t *testing.T) {
	day := domain.Day{ID: uuid.New(), Label: "Day 1"}
	trip := domain.Trip{Days: []domain.Day{day}}

	found, ok := itinerary.FindDay(trip, day.ID)
	require.True(t, ok)
	assert.Equal(t, day, found)

	found.Label = "Renamed"
	updated, ok := itinerary.WithDay(trip, found)
	require.True(t, ok)
	assert.Equal(t, "Renamed", updated.Days[0].Label)
	assert.Equal(t, "Day 1", trip.Days[0].Label)

	_, ok = itinerary.WithDay(trip, domain.Day{ID: uuid.New()})
	assert.False(t, ok)
}
