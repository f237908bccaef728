// Package storage persists the bot's audit trail (delivered alerts, channel
// changes, commands) and the notifier's dedup window.
//
// Drivers: "file" (JSON Lines next to a dedup snapshot) and "sqlite".
// Detector baselines are deliberately not stored here; they reset on restart.
package storage
