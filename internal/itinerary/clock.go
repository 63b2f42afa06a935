// Package itinerary holds the scheduling model: clock arithmetic on "HH:MM"
// strings, the ordered day item list and idle-gap analysis.
//
// Every function is pure. Mutators take a Day (or Trip) by value and return a
// new one; nothing here touches storage.
package itinerary

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// DefaultStart is suggested for the first item of an empty day.
const DefaultStart = "09:00"

// AddTime returns start plus durationHours as a zero-padded "HH:MM",
// wrapping at midnight. The duration is rounded to whole minutes, half up.
// An empty or unparseable start yields "00:00".
func AddTime(start string, durationHours float64) string {
	m, ok := parseClock(start)
	if !ok {
		return "00:00"
	}
	m += durationMinutes(durationHours)
	m = ((m % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// TimeDiffMinutes returns the minutes from earlier to later, both taken to
// fall on the same calendar day. The result is negative when later precedes
// earlier on the clock face. Unparseable input yields 0.
func TimeDiffMinutes(earlier, later string) int {
	a, ok := parseClock(earlier)
	if !ok {
		return 0
	}
	b, ok := parseClock(later)
	if !ok {
		return 0
	}
	return b - a
}

// ValidClock reports whether s parses as a clock time.
func ValidClock(s string) bool {
	_, ok := parseClock(s)
	return ok
}

// NormalizeClock rewrites a parseable time as zero-padded "HH:MM" so that
// string ordering matches clock ordering.
func NormalizeClock(s string) (string, bool) {
	m, ok := parseClock(s)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60), true
}

// parseClock converts "H:MM" or "HH:MM" to minutes since midnight. Only
// ASCII digits are accepted: no signs, and minutes always have two digits.
func parseClock(s string) (int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !allDigits(hh) || !allDigits(mm) {
		return 0, false
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// durationMinutes converts hours to whole minutes modulo one day, rounding
// half up. Non-finite durations count as zero.
func durationMinutes(hours float64) int {
	x := math.Mod(hours*60, minutesPerDay)
	if math.IsNaN(x) {
		return 0
	}
	return roundHalfUp(x)
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
