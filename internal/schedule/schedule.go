// Package schedule computes the next absolute run time for a workflow's
// cadence. All time-of-day reasoning happens in the fixed KST offset; results
// are returned in UTC for storage. KST has no daylight-saving transitions, so
// the arithmetic below is plain fixed-offset math; a port to a DST zone would
// need time.LoadLocation and wall-clock-aware addition instead.
package schedule

import (
	"time"

	"stockflow/internal/domain"
)

// KST is the reference timezone (UTC+9) all schedule times are defined in.
var KST = time.FixedZone("KST", 9*60*60)

// NextRunAt returns the next occurrence of the cadence strictly after now.
// It is pure: no I/O, deterministic for a given (spec, now).
func NextRunAt(spec domain.ScheduleSpec, now time.Time) time.Time {
	local := now.In(KST)
	today := time.Date(local.Year(), local.Month(), local.Day(), spec.Hour, spec.Minute, 0, 0, KST)

	var next time.Time
	switch {
	case spec.Type == domain.ScheduleDaily:
		next = today
		if !next.After(local) {
			next = next.AddDate(0, 0, 1)
		}

	case spec.Type == domain.ScheduleWeekly && len(spec.Days) > 0:
		next = today.AddDate(0, 0, daysUntilNext(spec.Days, local.Weekday(), today.After(local)))

	default:
		// Degenerate cadence (weekly with no days, unknown type). Validation
		// rejects these at the API boundary; if a bad row reaches us anyway,
		// degrade to "this time tomorrow" rather than stall the workflow.
		next = today.AddDate(0, 0, 1)
	}

	return next.UTC()
}

// daysUntilNext finds the smallest offset 0..7 landing on a scheduled
// weekday. Offset 0 is only valid when today's occurrence is still ahead.
func daysUntilNext(days []time.Weekday, today time.Weekday, todayStillAhead bool) int {
	if todayStillAhead && containsDay(days, today) {
		return 0
	}
	for d := 1; d <= 7; d++ {
		if containsDay(days, (today+time.Weekday(d))%7) {
			return d
		}
	}
	// Unreachable with a non-empty day set; bounded fallback, never a loop.
	return 1
}

func containsDay(days []time.Weekday, day time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
