package router

import (
	"sort"
	"strings"

	"ffbot/pkg/tgui"
)

// helpText renders help in HTML parse mode. With a name it shows one command.
func (r *Router) helpText(args []string) string {
	r.mu.RLock()
	cmds := r.cmds
	alias := r.alias
	r.mu.RUnlock()

	if len(args) > 0 {
		name, _ := commandWord(args[0])
		if c, ok := alias[name]; ok {
			return helpOne(c)
		}
		return unknownText
	}

	names := make([]string, 0, len(cmds))
	for n := range cmds {
		names = append(names, n)
	}
	sort.Strings(names)

	lines := []string{tgui.B("Commands").String()}
	for _, n := range names {
		c := cmds[n]
		line := tgui.Code("/" + n).String()
		if c.Description != "" {
			line += " " + tgui.Esc(c.Description).String()
		}
		if c.Access == AccessOwnerOnly {
			line += " 🔒"
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", tgui.I("/help <command> for usage").String())
	return strings.Join(lines, "\n")
}

func helpOne(c Command) string {
	lines := []string{tgui.B("/" + c.Name).String()}
	if c.Description != "" {
		lines = append(lines, tgui.Esc(c.Description).String())
	}
	if c.Usage != "" {
		lines = append(lines, "Usage: "+tgui.Code(c.Usage).String())
	}
	if len(c.Aliases) > 0 {
		lines = append(lines, "Aliases: "+tgui.Esc(strings.Join(c.Aliases, ", ")).String())
	}
	if c.Access == AccessOwnerOnly {
		lines = append(lines, tgui.I("owner only").String())
	}
	return strings.Join(lines, "\n")
}
