package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDuration is the length in hours of a schedule item with no duration.
const DefaultDuration = 1.0

// Day is one calendar day of a trip. Items are kept in display order, which
// is not necessarily chronological once the user has reordered them.
type Day struct {
	ID    uuid.UUID      `json:"id"`
	Date  time.Time      `json:"date"`
	Label string         `json:"label"`
	Items []ScheduleItem `json:"items"`
}

// ScheduleItem is a single timed activity within a day.
type ScheduleItem struct {
	ID   uuid.UUID `json:"id"`
	Time string    `json:"time"` // "HH:MM", 24h clock
	// Duration is in hours and may be fractional. nil means DefaultDuration.
	Duration  *float64     `json:"duration,omitempty"`
	Title     string       `json:"title"`
	Category  ItemCategory `json:"category"`
	Location  string       `json:"location,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	Highlight bool         `json:"highlight,omitempty"`
	// Timezone overrides the trip timezone for this item when non-empty.
	Timezone string `json:"timezone,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Hours returns the item duration, falling back to DefaultDuration.
func (it ScheduleItem) Hours() float64 {
	if it.Duration == nil {
		return DefaultDuration
	}
	return *it.Duration
}

// EffectiveTimezone returns the item's timezone override or tripTZ.
func (it ScheduleItem) EffectiveTimezone(tripTZ string) string {
	if it.Timezone != "" {
		return it.Timezone
	}
	return tripTZ
}

// CategoryTag is the fixed set of schedule item kinds used for styling.
type CategoryTag string

const (
	CategoryTransport CategoryTag = "transport"
	CategoryFood      CategoryTag = "food"
	CategorySpot      CategoryTag = "spot"
	CategoryRelax     CategoryTag = "relax"
	CategoryStay      CategoryTag = "stay"
	CategoryWork      CategoryTag = "work"
	CategoryOther     CategoryTag = "other"
)

// ParseCategoryTag maps s onto a known tag. Unknown values become CategoryOther.
func ParseCategoryTag(s string) CategoryTag {
	switch t := CategoryTag(s); t {
	case CategoryTransport, CategoryFood, CategorySpot, CategoryRelax,
		CategoryStay, CategoryWork, CategoryOther:
		return t
	}
	return CategoryOther
}

// ItemCategory pairs the fixed tag with an optional free-text label shown
// instead of the tag's default name. The label is never interpreted.
type ItemCategory struct {
	Tag   CategoryTag `json:"tag"`
	Label string      `json:"label,omitempty"`
}
