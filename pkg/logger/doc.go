// Package logger builds slog loggers with process-wide attributes and
// context extractors, so request- and job-scoped values such as the bound
// tenant database are attached to every record automatically.
package logger
