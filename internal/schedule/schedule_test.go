package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockflow/internal/domain"
	"stockflow/internal/schedule"
)

func kst(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, schedule.KST)
}

func daily(hour, min int) domain.ScheduleSpec {
	return domain.ScheduleSpec{Type: domain.ScheduleDaily, Hour: hour, Minute: min}
}

func weekly(hour, min int, days ...time.Weekday) domain.ScheduleSpec {
	return domain.ScheduleSpec{Type: domain.ScheduleWeekly, Hour: hour, Minute: min, Days: days}
}

func TestDaily_BeforeTimeRunsToday(t *testing.T) {
	now := kst(2026, 3, 2, 8, 0, 0)

	next := schedule.NextRunAt(daily(9, 0), now)

	assert.Equal(t, kst(2026, 3, 2, 9, 0, 0).UTC(), next)
}

func TestDaily_AfterTimeRunsTomorrow(t *testing.T) {
	now := kst(2026, 3, 2, 9, 30, 0)

	next := schedule.NextRunAt(daily(9, 0), now)

	assert.Equal(t, kst(2026, 3, 3, 9, 0, 0).UTC(), next)
}

func TestDaily_ExactlyAtTimeRunsTomorrow(t *testing.T) {
	now := kst(2026, 3, 2, 9, 0, 0)

	next := schedule.NextRunAt(daily(9, 0), now)

	// Strictly-in-the-future invariant: equal is not after.
	assert.Equal(t, kst(2026, 3, 3, 9, 0, 0).UTC(), next)
}

func TestDaily_NowInUTCIsNormalizedToKST(t *testing.T) {
	// 23:30 UTC on March 1st is already 08:30 KST on March 2nd.
	now := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	next := schedule.NextRunAt(daily(9, 0), now)

	assert.Equal(t, kst(2026, 3, 2, 9, 0, 0).UTC(), next)
}

func TestWeekly_PicksNextScheduledDay(t *testing.T) {
	// 2026-03-03 is a Tuesday; Monday has passed, Thursday is next.
	now := kst(2026, 3, 3, 10, 0, 0)

	next := schedule.NextRunAt(weekly(10, 0, time.Monday, time.Thursday), now)

	assert.Equal(t, kst(2026, 3, 5, 10, 0, 0).UTC(), next)
}

func TestWeekly_TodayBeforeTimeRunsToday(t *testing.T) {
	// Thursday 09:59 with Thursday scheduled at 10:00.
	now := kst(2026, 3, 5, 9, 59, 0)

	next := schedule.NextRunAt(weekly(10, 0, time.Monday, time.Thursday), now)

	assert.Equal(t, kst(2026, 3, 5, 10, 0, 0).UTC(), next)
}

func TestWeekly_JustPastTimeSkipsToNextWeek(t *testing.T) {
	// Thursday 10:00:01; the Thursday slot is gone, next is Monday.
	now := kst(2026, 3, 5, 10, 0, 1)

	next := schedule.NextRunAt(weekly(10, 0, time.Monday, time.Thursday), now)

	assert.Equal(t, kst(2026, 3, 9, 10, 0, 0).UTC(), next)
}

func TestWeekly_ExactlyAtTimeSkipsToday(t *testing.T) {
	now := kst(2026, 3, 5, 10, 0, 0)

	next := schedule.NextRunAt(weekly(10, 0, time.Thursday), now)

	assert.Equal(t, kst(2026, 3, 12, 10, 0, 0).UTC(), next)
}

func TestWeekly_SingleDayWrapsFullWeek(t *testing.T) {
	// Monday just past the slot; the only scheduled day is Monday.
	now := kst(2026, 3, 2, 10, 0, 1)

	next := schedule.NextRunAt(weekly(10, 0, time.Monday), now)

	assert.Equal(t, kst(2026, 3, 9, 10, 0, 0).UTC(), next)
}

func TestWeekly_EmptyDaysFallsBackToTomorrow(t *testing.T) {
	now := kst(2026, 3, 2, 8, 0, 0)

	next := schedule.NextRunAt(weekly(9, 0), now)

	assert.Equal(t, kst(2026, 3, 3, 9, 0, 0).UTC(), next)
}

func TestUnknownTypeFallsBackToTomorrow(t *testing.T) {
	now := kst(2026, 3, 2, 8, 0, 0)
	spec := domain.ScheduleSpec{Type: "hourly", Hour: 9}

	next := schedule.NextRunAt(spec, now)

	assert.Equal(t, kst(2026, 3, 3, 9, 0, 0).UTC(), next)
}

func TestNextRunAt_IsAlwaysStrictlyInTheFutureAndUTC(t *testing.T) {
	specs := []domain.ScheduleSpec{
		daily(0, 0),
		daily(23, 59),
		weekly(10, 30, time.Sunday),
		weekly(0, 0, time.Monday, time.Wednesday, time.Friday),
		weekly(12, 0),
	}
	now := kst(2026, 3, 2, 10, 0, 0)

	for _, spec := range specs {
		next := schedule.NextRunAt(spec, now)

		assert.True(t, next.After(now), "spec %+v produced %v not after %v", spec, next, now)
		assert.Equal(t, time.UTC, next.Location())
	}
}
