package lease

import "time"

// HoursPerDay is the length of a full calendar day.
const HoursPerDay = 24

// Segment is the part of a lease request confined to one calendar day.
type Segment struct {
	Start    time.Time // first hour, truncated
	Hours    int
	DateFrom string // query window, inclusive
	DateTo   string
}

// Full reports whether the segment spans the whole day.
func (s Segment) Full() bool {
	return s.Hours >= HoursPerDay
}

// HourAt returns the start of the i-th hour of the segment.
func (s Segment) HourAt(i int) time.Time {
	return s.Start.Add(time.Duration(i) * time.Hour)
}

// SplitDays cuts [from, to] into per-day segments. from must not be after to,
// and both must carry wall-clock readings in a zone without DST (see wallClock).
//
// A same-day range yields one segment queried as [date, date]. A multi-day
// range yields the first day from floor(from), every day in between and the
// last day up to floor(to). Whole days are queried as [date, date+1].
func SplitDays(from, to time.Time) []Segment {
	first := startOfDay(from)
	last := startOfDay(to)

	if first.Equal(last) {
		return []Segment{{
			Start:    startOfHour(from),
			Hours:    to.Hour() - from.Hour() + 1,
			DateFrom: first.Format(DateLayout),
			DateTo:   first.Format(DateLayout),
		}}
	}

	segments := []Segment{daySegment(startOfHour(from), HoursPerDay-from.Hour())}
	for day := first.AddDate(0, 0, 1); day.Before(last); day = day.AddDate(0, 0, 1) {
		segments = append(segments, daySegment(day, HoursPerDay))
	}
	return append(segments, daySegment(last, to.Hour()+1))
}

func daySegment(start time.Time, hours int) Segment {
	s := Segment{
		Start:    start,
		Hours:    hours,
		DateFrom: start.Format(DateLayout),
		DateTo:   start.Format(DateLayout),
	}
	if s.Full() {
		s.DateTo = start.AddDate(0, 0, 1).Format(DateLayout)
	}
	return s
}

// wallClock reinterprets t's local date and clock reading in UTC. Lease hours
// are calendar labels, so every day has exactly 24 of them even across DST
// transitions in the configured zone.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func startOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
