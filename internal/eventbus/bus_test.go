package eventbus

import "testing"

func TestPublishFansOut(t *testing.T) {
	t.Parallel()
	b := New()
	a, unsubA := b.Subscribe(1)
	c, unsubC := b.Subscribe(1)
	defer unsubA()
	defer unsubC()

	Publish(b, TypeAlertSent, "x")
	for _, ch := range []<-chan Event{a, c} {
		e := <-ch
		if e.Type != TypeAlertSent || e.Data != "x" || e.Time.IsZero() {
			t.Fatalf("event = %+v", e)
		}
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	b.Publish(Event{Type: "one"})
	b.Publish(Event{Type: "two"})
	if e := <-ch; e.Type != "one" {
		t.Fatalf("first event = %q", e.Type)
	}
	select {
	case e := <-ch:
		t.Fatalf("unexpected buffered event %q", e.Type)
	default:
	}
}

func TestUnsubscribeClosesAndIsIdempotent(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(0)
	unsub()
	unsub()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
	b.Publish(Event{Type: "after"})
	Publish(nil, "nil bus", nil)
}
