// Package schedule provides the fixed-calendar schedules the job runner
// ticks against: daily, weekly, monthly, yearly and hourly-at-minute.
package schedule
