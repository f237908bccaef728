package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitTextShortIsUntouched(t *testing.T) {
	t.Parallel()
	got := SplitText("hello", 10, "HTML")
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("SplitText = %q", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	line := strings.Repeat("x", 30)
	s := strings.Join([]string{line, line, line, line}, "\n")
	got := SplitText(s, 70, "")
	for _, c := range got {
		if utf8.RuneCountInString(c) > 70 {
			t.Fatalf("chunk over limit: %d", utf8.RuneCountInString(c))
		}
		if strings.HasPrefix(c, "\n") || strings.HasSuffix(c, "\n") {
			t.Fatalf("chunk has edge newline: %q", c)
		}
	}
	if len(got) != 2 || got[0] != line+"\n"+line {
		t.Fatalf("chunks = %q", got)
	}
}

func TestSplitTextKeepsTagsWhole(t *testing.T) {
	t.Parallel()
	s := strings.Repeat("a", 18) + "<b>x</b>"
	got := SplitText(s, 20, "HTML")
	if got[0] != strings.Repeat("a", 18) {
		t.Fatalf("first chunk = %q, want cut before the tag", got[0])
	}
	if strings.Join(got, "") != s {
		t.Fatalf("chunks lost text: %q", got)
	}
}

func TestSplitTextCountsRunes(t *testing.T) {
	t.Parallel()
	s := strings.Repeat("é", 25)
	got := SplitText(s, 10, "")
	if len(got) != 3 || utf8.RuneCountInString(got[2]) != 5 {
		t.Fatalf("chunks = %q", got)
	}
}
