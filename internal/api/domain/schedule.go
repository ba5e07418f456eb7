package domain

import (
	"strconv"
	"strings"
)

// Schedule is the denormalized time window copied from a job posting.
// Fields are stored the way the postings carry them: a YYYY-MM-DD date
// and HH:MM or HH:MM:SS wall-clock times.
type Schedule struct {
	Date      string
	StartTime string
	EndTime   string
}

// Complete reports whether the schedule has all three components parsed
// cleanly. Conflict detection requires two concrete time windows, so an
// incomplete schedule never participates in a conflict.
func (s Schedule) Complete() bool {
	if s.Date == "" {
		return false
	}
	_, okStart := parseClock(s.StartTime)
	_, okEnd := parseClock(s.EndTime)
	return okStart && okEnd
}

// OverlapsSameDay reports whether two schedules collide. Ranges on
// different calendar days never collide; cross-midnight ranges are not
// supported by the posting format.
func (s Schedule) OverlapsSameDay(other Schedule) bool {
	if s.Date == "" || other.Date == "" || s.Date != other.Date {
		return false
	}
	return TimesOverlap(s.StartTime, s.EndTime, other.StartTime, other.EndTime)
}

// TimesOverlap decides whether two same-day wall-clock ranges overlap,
// using half-open interval semantics: a job ending at 17:00 does not
// conflict with one starting at 17:00.
//
// Any component that is empty or unparseable makes the function report
// no overlap. Unscheduled work is conservatively treated as never
// colliding with anything.
func TimesOverlap(startA, endA, startB, endB string) bool {
	sa, ok := parseClock(startA)
	if !ok {
		return false
	}
	ea, ok := parseClock(endA)
	if !ok {
		return false
	}
	sb, ok := parseClock(startB)
	if !ok {
		return false
	}
	eb, ok := parseClock(endB)
	if !ok {
		return false
	}
	return sa < eb && ea > sb
}

// parseClock converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are ignored; they never change overlap at minute granularity.
func parseClock(t string) (int, bool) {
	parts := strings.Split(t, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
