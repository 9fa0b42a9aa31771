// Package gateway is the HTTP surface of the back office. It routes,
// authenticates, binds the tenant database to the request context and
// dispatches to thin stored-procedure handlers.
package gateway
