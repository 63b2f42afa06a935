package itinerary

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// ErrIndexOutOfRange is returned when an item index does not address an
// existing position in the day.
var ErrIndexOutOfRange = errors.New("item index out of range")

// Insert appends item and re-sorts the day by start time. Items with equal
// times keep their relative order.
func Insert(day domain.Day, item domain.ScheduleItem) domain.Day {
	items := make([]domain.ScheduleItem, 0, len(day.Items)+1)
	items = append(items, day.Items...)
	items = append(items, item)
	// "HH:MM" strings compare in clock order.
	slices.SortStableFunc(items, func(a, b domain.ScheduleItem) int {
		return strings.Compare(a.Time, b.Time)
	})
	day.Items = items
	return day
}

// Replace overwrites the item at index without re-sorting.
func Replace(day domain.Day, index int, item domain.ScheduleItem) (domain.Day, error) {
	if err := checkIndex(day, index); err != nil {
		return day, err
	}
	items := slices.Clone(day.Items)
	items[index] = item
	day.Items = items
	return day, nil
}

// Remove deletes the item at index. The remaining items keep their order
// and times.
func Remove(day domain.Day, index int) (domain.Day, error) {
	if err := checkIndex(day, index); err != nil {
		return day, err
	}
	day.Items = slices.Delete(slices.Clone(day.Items), index, index+1)
	return day, nil
}

// Reorder moves the item at from so that it ends up at position to. It is a
// pure permutation: no item's time or duration changes, so the result may
// no longer be chronological.
func Reorder(day domain.Day, from, to int) (domain.Day, error) {
	if err := checkIndex(day, from); err != nil {
		return day, err
	}
	if err := checkIndex(day, to); err != nil {
		return day, err
	}
	moved := day.Items[from]
	items := slices.Delete(slices.Clone(day.Items), from, from+1)
	day.Items = slices.Insert(items, to, moved)
	return day, nil
}

// SuggestNextStart proposes a start time for a new item: the end of the last
// item in list order, or DefaultStart for an empty day.
func SuggestNextStart(day domain.Day) string {
	if len(day.Items) == 0 {
		return DefaultStart
	}
	last := day.Items[len(day.Items)-1]
	return AddTime(last.Time, last.Hours())
}

func checkIndex(day domain.Day, index int) error {
	if index < 0 || index >= len(day.Items) {
		return fmt.Errorf("%w: %d (day has %d items)", ErrIndexOutOfRange, index, len(day.Items))
	}
	return nil
}
