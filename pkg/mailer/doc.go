// Package mailer sends transactional email through the configured SMTP
// relay: salary reports, newsletter confirmations and admin fault alerts.
package mailer
