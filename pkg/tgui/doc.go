// Package tgui holds small helpers for building Telegram HTML messages:
// escaping, inline tags and rune-safe truncation.
package tgui
