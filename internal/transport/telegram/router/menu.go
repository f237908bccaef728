package router

import (
	"sort"
	"strings"
	"unicode"

	"ffbot/internal/transport"
)

// sanitizeCommand converts a name or alias into a Telegram-safe bot command.
// Telegram command names are restricted to [a-z0-9_]{1,32}.
func sanitizeCommand(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if r == '_' || r == '-' || r == '/' || unicode.IsSpace(r) {
			if b.Len() > 0 && !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
			continue
		}
	}

	out := strings.Trim(b.String(), "_")
	if len(out) > 32 {
		out = strings.TrimRight(out[:32], "_")
	}
	if out == "" {
		return ""
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "cmd_" + out
		if len(out) > 32 {
			out = strings.TrimRight(out[:32], "_")
		}
	}
	return out
}

// menuCommands builds the Telegram command menu: canonical names only, sorted,
// owner-only entries marked with a lock.
func menuCommands(cmds []Command) []transport.BotCommand {
	seen := map[string]bool{}
	out := make([]transport.BotCommand, 0, len(cmds))
	for _, c := range cmds {
		name := sanitizeCommand(c.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		desc := strings.ReplaceAll(strings.TrimSpace(c.Description), "\n", " ")
		if desc == "" {
			desc = name
		}
		if c.Access == AccessOwnerOnly {
			desc = "🔒 " + desc
		}
		if len(desc) > 256 {
			desc = desc[:256]
		}
		out = append(out, transport.BotCommand{Command: name, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Command < out[j].Command })
	if len(out) > 100 {
		out = out[:100]
	}
	return out
}
