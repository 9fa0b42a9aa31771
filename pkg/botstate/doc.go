// Package botstate keeps the chat bot's per-chat conversational state in
// Redis. Each entry expires after an hour of inactivity, which resets the
// conversation back to idle.
package botstate
