package tgui

import "unicode/utf8"

// TruncRunes cuts s to at most n runes, appending "…" when it cut anything.
func TruncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	cut := 0
	for i, r := range s {
		count++
		if count == n {
			cut = i + utf8.RuneLen(r)
			continue
		}
		if count > n {
			return s[:cut] + "…"
		}
	}
	return s
}
