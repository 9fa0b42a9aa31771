// Package bot runs the Telegram side of the back office: account linking,
// bill status checks and notify-me subscriptions, driven by a per-chat
// dialogue state stored in Redis.
package bot
