package tgui

import "testing"

func TestTruncRunes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "touchdown", n: 20, want: "touchdown"},
		{in: "touchdown", n: 5, want: "touch…"},
		{in: "héllo", n: 2, want: "hé…"},
		{in: "abc", n: 0, want: ""},
	}
	for _, tt := range tests {
		if got := TruncRunes(tt.in, tt.n); got != tt.want {
			t.Fatalf("TruncRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestEscAndJoin(t *testing.T) {
	t.Parallel()
	got := JoinH(" ", B("A&B"), "", Code("<x>"))
	want := H("<b>A&amp;B</b> <code>&lt;x&gt;</code>")
	if got != want {
		t.Fatalf("JoinH = %q, want %q", got, want)
	}
}
