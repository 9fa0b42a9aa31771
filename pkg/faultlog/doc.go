// Package faultlog is the sink for internal errors: each report is written
// to the `log` table of the current tenant database and mailed to the
// admin address. Reporting is best-effort and never propagates failures.
package faultlog
