package itinerary

import "github.com/pkordes/trip-planner/internal/domain"

// Gap is idle time before the item at BeforeIndex, measured from the end of
// the previous item in list order.
type Gap struct {
	BeforeIndex int `json:"before_index"`
	Minutes     int `json:"minutes"`
}

// Split returns the gap as whole hours and remaining minutes.
func (g Gap) Split() (hours, minutes int) {
	return g.Minutes / 60, g.Minutes % 60
}

// ComputeGaps reports the positive idle intervals between consecutive items.
// Zero and negative gaps are omitted, as is any gap next to an item whose
// time does not parse. Clock times are compared on a single day, so an item
// running past midnight produces a misleading or negative gap.
func ComputeGaps(items []domain.ScheduleItem) []Gap {
	var gaps []Gap
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		if !ValidClock(prev.Time) || !ValidClock(cur.Time) {
			continue
		}
		end := AddTime(prev.Time, prev.Hours())
		if gap := TimeDiffMinutes(end, cur.Time); gap > 0 {
			gaps = append(gaps, Gap{BeforeIndex: i, Minutes: gap})
		}
	}
	return gaps
}
