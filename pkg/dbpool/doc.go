// Package dbpool maintains one bounded PostgreSQL connection pool per tenant
// database, created lazily on first use and shared process-wide.
//
// Pool keys are database names resolved through the master catalog (or the
// fixed main database); callers never feed user input into the registry
// directly. Connections are checked out against the database bound to the
// request context, so handlers stay tenant-agnostic.
package dbpool
