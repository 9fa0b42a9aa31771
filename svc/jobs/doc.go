// Package jobs runs the scheduled back-office work: salary mails, staff
// notification sweeps, database backups and the hourly FX fetch. All
// calendars are evaluated in Asia/Kabul.
package jobs
