// Package catalog reads the master "main" database: the gallery table that
// maps login codenames to tenant databases, and the FX rate cache.
//
// The catalog is the only source of pool keys. Login resolves a codename
// here before any tenant pool is created, and scheduled fan-out jobs
// enumerate tenants from here.
package catalog
