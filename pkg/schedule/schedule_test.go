package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pardaaf/backoffice/pkg/schedule"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestDailyAt(t *testing.T) {
	t.Parallel()

	s := schedule.DailyAt(19, 0)

	t.Run("before today's slot", func(t *testing.T) {
		next := s.Next(at(2026, time.March, 10, 8, 30))
		assert.Equal(t, at(2026, time.March, 10, 19, 0), next)
	})

	t.Run("after today's slot rolls to tomorrow", func(t *testing.T) {
		next := s.Next(at(2026, time.March, 10, 19, 0))
		assert.Equal(t, at(2026, time.March, 11, 19, 0), next)
	})
}

func TestWeeklyOn(t *testing.T) {
	t.Parallel()

	s := schedule.WeeklyOn(time.Friday, 0, 10)

	// 2026-03-10 is a Tuesday.
	next := s.Next(at(2026, time.March, 10, 12, 0))
	assert.Equal(t, at(2026, time.March, 13, 0, 10), next)
	assert.Equal(t, time.Friday, next.Weekday())

	t.Run("same weekday past the slot waits a week", func(t *testing.T) {
		next := s.Next(at(2026, time.March, 13, 1, 0))
		assert.Equal(t, at(2026, time.March, 20, 0, 10), next)
	})
}

func TestMonthlyOn(t *testing.T) {
	t.Parallel()

	s := schedule.MonthlyOn(1, 0, 20)

	t.Run("mid-month rolls to next month", func(t *testing.T) {
		next := s.Next(at(2026, time.March, 10, 12, 0))
		assert.Equal(t, at(2026, time.April, 1, 0, 20), next)
	})

	t.Run("december rolls into january", func(t *testing.T) {
		next := s.Next(at(2026, time.December, 15, 0, 0))
		assert.Equal(t, at(2027, time.January, 1, 0, 20), next)
	})

	t.Run("short month clamps day", func(t *testing.T) {
		next := schedule.MonthlyOn(31, 0, 0).Next(at(2026, time.February, 1, 0, 0))
		assert.Equal(t, at(2026, time.February, 28, 0, 0), next)
	})
}

func TestYearlyOn(t *testing.T) {
	t.Parallel()

	s := schedule.YearlyOn(time.January, 1, 0, 30)

	t.Run("mid-year rolls to next january", func(t *testing.T) {
		next := s.Next(at(2026, time.June, 10, 12, 0))
		assert.Equal(t, at(2027, time.January, 1, 0, 30), next)
	})

	t.Run("before the slot stays in the same year", func(t *testing.T) {
		next := s.Next(at(2026, time.January, 1, 0, 0))
		assert.Equal(t, at(2026, time.January, 1, 0, 30), next)
	})
}

func TestHourlyAt(t *testing.T) {
	t.Parallel()

	s := schedule.HourlyAt(48)

	t.Run("before the minute", func(t *testing.T) {
		next := s.Next(at(2026, time.March, 10, 9, 30))
		assert.Equal(t, at(2026, time.March, 10, 9, 48), next)
	})

	t.Run("after the minute rolls to next hour", func(t *testing.T) {
		next := s.Next(at(2026, time.March, 10, 9, 48))
		assert.Equal(t, at(2026, time.March, 10, 10, 48), next)
	})
}

// Schedules computed in a named zone must stay in that zone, since the job
// calendar is defined in gallery-local time.
func TestLocationPreserved(t *testing.T) {
	t.Parallel()

	kabul, err := time.LoadLocation("Asia/Kabul")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	from := time.Date(2026, time.March, 10, 8, 0, 0, 0, kabul)
	next := schedule.DailyAt(19, 0).Next(from)
	assert.Equal(t, kabul, next.Location())
	assert.Equal(t, 19, next.Hour())
}
