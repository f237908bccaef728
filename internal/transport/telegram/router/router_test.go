package router

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ffbot/internal/storage"
	"ffbot/internal/transport"
	"ffbot/pkg/logx"
)

type sent struct {
	To   transport.ChatTarget
	Text string
}

type fakeAdapter struct {
	out chan sent

	mu   sync.Mutex
	menu []transport.BotCommand
}

func newFakeAdapter() *fakeAdapter { return &fakeAdapter{out: make(chan sent, 16)} }

func (f *fakeAdapter) Start(context.Context, chan<- transport.Update) error { return nil }
func (f *fakeAdapter) Stop(context.Context) error                          { return nil }

func (f *fakeAdapter) SendText(_ context.Context, to transport.ChatTarget, text string, _ *transport.SendOptions) (transport.MessageRef, error) {
	f.out <- sent{To: to, Text: text}
	return transport.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID}, nil
}

func (f *fakeAdapter) UpdateMenuCommands(_ context.Context, cmds []transport.BotCommand) error {
	f.mu.Lock()
	f.menu = cmds
	f.mu.Unlock()
	return nil
}

func (f *fakeAdapter) next(t *testing.T) sent {
	t.Helper()
	select {
	case s := <-f.out:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no reply")
		return sent{}
	}
}

func (f *fakeAdapter) quiet(t *testing.T) {
	t.Helper()
	select {
	case s := <-f.out:
		t.Fatalf("unexpected reply %q", s.Text)
	case <-time.After(50 * time.Millisecond):
	}
}

func msg(text string) transport.Update {
	return transport.Update{Kind: transport.UpdateMessage, Message: &transport.Message{
		ChatID: -100, ThreadID: 4, FromID: 42, FromUsername: "coach", Text: text, IsGroup: true,
	}}
}

func echo() Command {
	return Command{
		Name:        "team",
		Aliases:     []string{"team_info"},
		Description: "show a team",
		Usage:       "/team <name>",
		Handle: func(ctx context.Context, req *Request) error {
			return req.Reply(ctx, req.Command+":"+strings.Join(req.Args, "|"))
		},
	}
}

// start runs the dispatcher and returns the update channel plus a stop func.
func start(t *testing.T, r *Router) (chan<- transport.Update, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan transport.Update, 8)
	done := make(chan struct{})
	go func() {
		_ = r.DispatchLoop(ctx, updates)
		close(done)
	}()
	return updates, func() {
		cancel()
		<-done
	}
}

func TestRoutesAliasAndArgs(t *testing.T) {
	t.Parallel()
	ad := newFakeAdapter()
	r := New(Config{BotUsername: "@ffbot", Workers: 1}, Deps{Adapter: ad})
	r.SetCommands([]Command{echo()})
	updates, stop := start(t, r)
	defer stop()

	updates <- msg(`/team_info@FFBot "Taco Corp" --full`)
	got := ad.next(t)
	if got.Text != "team:Taco Corp" {
		t.Fatalf("reply = %q", got.Text)
	}
	if got.To != (transport.ChatTarget{ChatID: -100, ThreadID: 4}) {
		t.Fatalf("reply target = %+v", got.To)
	}
}

func TestIgnoresOtherBotsAndPlainText(t *testing.T) {
	t.Parallel()
	ad := newFakeAdapter()
	r := New(Config{BotUsername: "ffbot", Workers: 1}, Deps{Adapter: ad})
	r.SetCommands([]Command{echo()})
	updates, stop := start(t, r)
	defer stop()

	updates <- msg("/team@otherbot x")
	updates <- msg("hello team")
	updates <- msg("/nope")
	ad.quiet(t)

	updates <- msg("/nope@ffbot")
	if got := ad.next(t); got.Text != unknownText {
		t.Fatalf("reply = %q", got.Text)
	}
}

func TestOwnerOnly(t *testing.T) {
	t.Parallel()
	cmd := echo()
	cmd.Name = "set_channel"
	cmd.Access = AccessOwnerOnly

	cases := []struct {
		name   string
		owners []int64
		want   string
	}{
		{"no owners configured", nil, "set_channel:"},
		{"caller is owner", []int64{7, 42}, "set_channel:"},
		{"caller is not owner", []int64{7}, unauthorizedText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ad := newFakeAdapter()
			r := New(Config{Owners: tc.owners, Workers: 1}, Deps{Adapter: ad})
			r.SetCommands([]Command{cmd})
			updates, stop := start(t, r)
			defer stop()

			updates <- msg("/set_channel")
			if got := ad.next(t); got.Text != tc.want {
				t.Fatalf("reply = %q, want %q", got.Text, tc.want)
			}
		})
	}
}

func TestPanicAndTimeoutAreContained(t *testing.T) {
	t.Parallel()
	ad := newFakeAdapter()
	r := New(Config{Workers: 1}, Deps{Adapter: ad})
	r.SetCommands([]Command{
		{Name: "boom", Handle: func(context.Context, *Request) error { panic("kaboom") }},
		{Name: "slow", Timeout: 10 * time.Millisecond, Handle: func(ctx context.Context, req *Request) error {
			<-ctx.Done()
			return req.Reply(context.Background(), ctx.Err().Error())
		}},
		echo(),
	})
	updates, stop := start(t, r)
	defer stop()

	updates <- msg("/boom")
	updates <- msg("/slow")
	if got := ad.next(t); got.Text != context.DeadlineExceeded.Error() {
		t.Fatalf("slow reply = %q", got.Text)
	}
	updates <- msg("/team a b")
	if got := ad.next(t); got.Text != "team:a|b" {
		t.Fatalf("worker did not survive panic, reply = %q", got.Text)
	}
}

func TestAuditsCommands(t *testing.T) {
	t.Parallel()
	st, err := storage.Open(storage.Config{Driver: "file", Path: filepath.Join(t.TempDir(), "audit")}, logx.Nop())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer st.Close()

	ad := newFakeAdapter()
	r := New(Config{Workers: 1}, Deps{Adapter: ad, Store: st})
	r.SetCommands([]Command{{Name: "fail", Handle: func(ctx context.Context, req *Request) error {
		_ = req.Reply(ctx, "x")
		return errors.New("espn down")
	}}})
	updates, stop := start(t, r)
	updates <- msg("/fail")
	ad.next(t)
	stop()

	rows, err := st.RecentAudit(context.Background(), storage.KindCommand, 5)
	if err != nil {
		t.Fatalf("RecentAudit: %v", err)
	}
	if len(rows) != 1 || rows[0].Action != "fail" || rows[0].OK || rows[0].Error != "espn down" || rows[0].ActorUsername != "coach" {
		t.Fatalf("audit = %+v", rows)
	}
}

func TestHelpAndMenu(t *testing.T) {
	t.Parallel()
	ad := newFakeAdapter()
	r := New(Config{}, Deps{Adapter: ad})
	own := echo()
	own.Name = "set_channel"
	own.Aliases = nil
	own.Access = AccessOwnerOnly
	r.SetCommands([]Command{echo(), own})

	top := r.helpText(nil)
	for _, want := range []string{"/help", "/set_channel", "/team", "🔒"} {
		if !strings.Contains(top, want) {
			t.Fatalf("help missing %q:\n%s", want, top)
		}
	}
	one := r.helpText([]string{"team_info"})
	if !strings.Contains(one, "/team &lt;name&gt;") || !strings.Contains(one, "team_info") {
		t.Fatalf("help for alias:\n%s", one)
	}
	if r.helpText([]string{"zzz"}) != unknownText {
		t.Fatal("unknown help topic")
	}

	if err := r.UpdateMenu(context.Background()); err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}
	var names []string
	for _, c := range ad.menu {
		names = append(names, c.Command)
	}
	if diff := cmp.Diff([]string{"help", "set_channel", "team"}, names); diff != "" {
		t.Fatalf("menu (-want +got):\n%s", diff)
	}
}

func TestParseFlags(t *testing.T) {
	t.Parallel()
	pos, flags, bools := parseFlags([]string{"-100123:7", "--limit", "5", "x", "-5", "-v", "--raw"})
	if diff := cmp.Diff([]string{"-100123:7", "x", "-5"}, pos); diff != "" {
		t.Fatalf("pos (-want +got):\n%s", diff)
	}
	if flags["limit"] != "5" || !bools["v"] || !bools["raw"] {
		t.Fatalf("flags=%v bools=%v", flags, bools)
	}
}

func TestTokenizeAndCommandWord(t *testing.T) {
	t.Parallel()
	got := tokenizeCommandLine(`/Team@Bot 'Big  Dogs' a\ b`)
	if diff := cmp.Diff([]string{"/Team@Bot", "Big  Dogs", "a b"}, got); diff != "" {
		t.Fatalf("tokens (-want +got):\n%s", diff)
	}
	if w, m := commandWord(got[0]); w != "team" || m != "Bot" {
		t.Fatalf("commandWord = %q %q", w, m)
	}
	if id := newReqID(); len(id) != 8 {
		t.Fatalf("req id %q", id)
	}
}
