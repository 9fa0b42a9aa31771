// Package printqueue is a per-tenant ordered queue of small print payloads
// in Redis. Job IDs come from an atomic per-tenant counter, so they are
// strictly increasing even under concurrent submissions; delivery is
// at-least-once and the printer is expected to skip IDs it has seen.
package printqueue
