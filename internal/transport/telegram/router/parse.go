package router

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

func newReqID() string {
	id := uuid.NewString()
	// first group is enough to correlate log lines of one request
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// commandWord extracts the command name from the first token of a message.
// "/Team@ffbot" yields ("team", "ffbot").
func commandWord(tok string) (word, mention string) {
	word = strings.TrimPrefix(tok, "/")
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word, mention = word[:i], word[i+1:]
	}
	return strings.ToLower(word), mention
}

// tokenizeCommandLine splits command text into tokens while supporting quotes.
// Examples:
//
//	/team "Taco Corp" --full
func tokenizeCommandLine(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var (
		out   []string
		buf   strings.Builder
		inQ   bool
		qChar byte
		esc   bool
	)
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, buf.String())
			buf.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if esc {
			buf.WriteByte(ch)
			esc = false
			continue
		}
		if ch == '\\' {
			esc = true
			continue
		}
		if inQ {
			if ch == qChar {
				inQ = false
				continue
			}
			buf.WriteByte(ch)
			continue
		}
		switch ch {
		case '"', '\'':
			inQ = true
			qChar = ch
		case ' ', '\t', '\n', '\r':
			flush()
		default:
			buf.WriteByte(ch)
		}
	}
	flush()
	return out
}

// looksNumeric reports whether a token is a negative number or a chat target
// such as "-100123:4". Telegram group ids are negative, so these are
// positionals, not flags.
func looksNumeric(a string) bool {
	chat, thread, _ := strings.Cut(a, ":")
	if _, err := strconv.ParseInt(chat, 10, 64); err != nil {
		return false
	}
	if thread != "" {
		if _, err := strconv.Atoi(thread); err != nil {
			return false
		}
	}
	return true
}

func isFlag(a string) bool {
	return strings.HasPrefix(a, "-") && len(a) > 1 && !looksNumeric(a)
}

// parseFlags splits raw args into positionals and flags.
//
// Supported:
//
//	--k=v, --k v, --flag (bool)
//	-k=v, -k v, -abc (bool flags a,b,c)
func parseFlags(args []string) (pos []string, flags map[string]string, bools map[string]bool) {
	flags = map[string]string{}
	bools = map[string]bool{}
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !isFlag(a) {
			pos = append(pos, a)
			continue
		}
		if strings.HasPrefix(a, "--") {
			key := strings.TrimPrefix(a, "--")
			if key == "" {
				continue
			}
			if eq := strings.IndexByte(key, '='); eq >= 0 {
				flags[key[:eq]] = key[eq+1:]
				continue
			}
			if i+1 < len(args) && !isFlag(args[i+1]) {
				flags[key] = args[i+1]
				i++
				continue
			}
			bools[key] = true
			continue
		}
		key := strings.TrimPrefix(a, "-")
		if eq := strings.IndexByte(key, '='); eq >= 0 {
			flags[key[:eq]] = key[eq+1:]
			continue
		}
		if len(key) == 1 {
			if i+1 < len(args) && !isFlag(args[i+1]) {
				flags[key] = args[i+1]
				i++
				continue
			}
			bools[key] = true
			continue
		}
		for j := 0; j < len(key); j++ {
			bools[string(key[j])] = true
		}
	}
	return pos, flags, bools
}
