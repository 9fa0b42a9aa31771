package schedule

import (
	"fmt"
	"time"
)

// Schedule determines when a periodic job should next run.
type Schedule interface {
	Next(from time.Time) time.Time
	String() string
}

type dailySchedule struct {
	hour   int
	minute int
}

func (s dailySchedule) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), s.hour, s.minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s dailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", s.hour, s.minute)
}

type weeklySchedule struct {
	weekday time.Weekday
	hour    int
	minute  int
}

func (s weeklySchedule) Next(from time.Time) time.Time {
	daysUntil := (int(s.weekday) - int(from.Weekday()) + 7) % 7
	next := from.AddDate(0, 0, daysUntil)
	next = time.Date(next.Year(), next.Month(), next.Day(), s.hour, s.minute, 0, 0, next.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (s weeklySchedule) String() string {
	return fmt.Sprintf("weekly on %s at %02d:%02d", s.weekday, s.hour, s.minute)
}

type monthlySchedule struct {
	day    int
	hour   int
	minute int
}

func (s monthlySchedule) Next(from time.Time) time.Time {
	year, month := from.Year(), from.Month()

	// Clamp so a day-31 schedule still fires in short months.
	day := min(s.day, daysInMonth(year, month))
	next := time.Date(year, month, day, s.hour, s.minute, 0, 0, from.Location())

	if !next.After(from) {
		if month == time.December {
			year++
			month = time.January
		} else {
			month++
		}
		day = min(s.day, daysInMonth(year, month))
		next = time.Date(year, month, day, s.hour, s.minute, 0, 0, from.Location())
	}
	return next
}

func (s monthlySchedule) String() string {
	return fmt.Sprintf("monthly on day %d at %02d:%02d", s.day, s.hour, s.minute)
}

type yearlySchedule struct {
	month  time.Month
	day    int
	hour   int
	minute int
}

func (s yearlySchedule) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), s.month, s.day, s.hour, s.minute, 0, 0, from.Location())
	if !next.After(from) {
		next = time.Date(from.Year()+1, s.month, s.day, s.hour, s.minute, 0, 0, from.Location())
	}
	return next
}

func (s yearlySchedule) String() string {
	return fmt.Sprintf("yearly on %s %d at %02d:%02d", s.month, s.day, s.hour, s.minute)
}

type hourlySchedule struct {
	minute int
}

func (s hourlySchedule) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), s.minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.Add(time.Hour)
	}
	return next
}

func (s hourlySchedule) String() string {
	return fmt.Sprintf("hourly at :%02d", s.minute)
}

// DailyAt creates a schedule that runs daily at the given time.
func DailyAt(hour, minute int) Schedule {
	return dailySchedule{hour: hour, minute: minute}
}

// WeeklyOn creates a schedule that runs weekly on the given day and time.
func WeeklyOn(weekday time.Weekday, hour, minute int) Schedule {
	return weeklySchedule{weekday: weekday, hour: hour, minute: minute}
}

// MonthlyOn creates a schedule that runs monthly on the given day and time.
func MonthlyOn(day, hour, minute int) Schedule {
	return monthlySchedule{day: day, hour: hour, minute: minute}
}

// YearlyOn creates a schedule that runs once a year on the given date.
func YearlyOn(month time.Month, day, hour, minute int) Schedule {
	return yearlySchedule{month: month, day: day, hour: hour, minute: minute}
}

// HourlyAt creates a schedule that runs every hour at the given minute.
func HourlyAt(minute int) Schedule {
	return hourlySchedule{minute: minute}
}

func daysInMonth(year int, month time.Month) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
