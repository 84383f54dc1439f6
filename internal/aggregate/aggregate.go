// Package aggregate holds the pure filters and groupings behind the driver
// and admin log views. Nothing here touches storage or the clock.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/Shaanrahman123/driver-tracker/internal/attendance"
)

// TypeAll disables type filtering.
const TypeAll = "all"

// Entry is satisfied by attendance.Event and attendance.OwnedEvent.
type Entry interface {
	Base() attendance.Event
}

// MonthBounds returns the first and last millisecond of the month in loc.
func MonthBounds(year int, month time.Month, loc *time.Location) (first, last int64) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	next := start.AddDate(0, 1, 0)
	return start.UnixMilli(), next.UnixMilli() - 1
}

// FilterByMonth keeps events whose timestamp lies within the month, inclusive
// at both ends.
func FilterByMonth[E Entry](events []E, year int, month time.Month, loc *time.Location) []E {
	first, last := MonthBounds(year, month, loc)
	return filter(events, func(e attendance.Event) bool {
		return e.Timestamp >= first && e.Timestamp <= last
	})
}

// FilterByType keeps events of typ. TypeAll and the empty string keep everything.
func FilterByType[E Entry](events []E, typ string) []E {
	if typ == "" || typ == TypeAll {
		return events
	}
	return filter(events, func(e attendance.Event) bool {
		return string(e.Type) == typ
	})
}

// FilterByDate keeps events recorded on date (YYYY-MM-DD).
func FilterByDate[E Entry](events []E, date string) []E {
	return filter(events, func(e attendance.Event) bool {
		return e.Date == date
	})
}

// SearchOwned keeps events whose owner name, email or phone contains query,
// ignoring case. An empty query keeps everything.
func SearchOwned(events []attendance.OwnedEvent, query string) []attendance.OwnedEvent {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return events
	}
	out := make([]attendance.OwnedEvent, 0, len(events))
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.OwnerName), q) ||
			strings.Contains(strings.ToLower(e.OwnerEmail), q) ||
			strings.Contains(e.OwnerPhone, q) {
			out = append(out, e)
		}
	}
	return out
}

// DayAttendance pairs the clock-in and clock-out chosen for one date.
type DayAttendance[E Entry] struct {
	Date     string
	ClockIn  *E
	ClockOut *E
}

// Verified is true when either side of the day has been verified.
func (d DayAttendance[E]) Verified() bool {
	return (d.ClockIn != nil && (*d.ClockIn).Base().Verified) ||
		(d.ClockOut != nil && (*d.ClockOut).Base().Verified)
}

// GroupAttendanceByDate picks one clock-in and one clock-out per date. When a
// date has several of the same type the latest timestamp wins, and equal
// timestamps go to the higher id. Days are returned newest first.
func GroupAttendanceByDate[E Entry](events []E) []DayAttendance[E] {
	days := make(map[string]*DayAttendance[E])
	for i := range events {
		e := events[i]
		base := e.Base()

		var slot **E
		day := days[base.Date]
		if day == nil {
			day = &DayAttendance[E]{Date: base.Date}
		}
		switch base.Type {
		case attendance.ClockIn:
			slot = &day.ClockIn
		case attendance.ClockOut:
			slot = &day.ClockOut
		case attendance.Pickup, attendance.Dropping, attendance.Breakdown:
			continue
		default:
			continue
		}
		days[base.Date] = day
		if *slot == nil || newer(base, (**slot).Base()) {
			*slot = &e
		}
	}

	out := make([]DayAttendance[E], 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func newer(a, b attendance.Event) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	return a.ID > b.ID
}

// Stats are the admin's daily counters.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
}

// ComputeDailyStats counts the events recorded on today (YYYY-MM-DD).
func ComputeDailyStats[E Entry](events []E, today string) Stats {
	var s Stats
	for _, e := range events {
		base := e.Base()
		if base.Date != today {
			continue
		}
		s.Total++
		if base.Verified {
			s.Verified++
		} else {
			s.Pending++
		}
	}
	return s
}

func filter[E Entry](events []E, keep func(attendance.Event) bool) []E {
	out := make([]E, 0, len(events))
	for _, e := range events {
		if keep(e.Base()) {
			out = append(out, e)
		}
	}
	return out
}
