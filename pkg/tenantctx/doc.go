// Package tenantctx binds the active tenant database name to the current
// request or job context so data-access code picks the correct pool without
// threading the name through every call signature.
package tenantctx
