// bus/bus_test.go
package bus

import (
	"sort"
	"testing"
	"time"
)

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("camera", "frame"))
	conn.Publish(b.NewMessage(T("camera", "frame"), "hello", false))

	select {
	case got := <-sub.Channel():
		if got.Payload.(string) != "hello" {
			t.Errorf("expected payload 'hello', got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(b.NewMessage(T("camera", "state"), "ready", true))
	sub := conn.Subscribe(T("camera", "state"))

	m, ok := sub.TryRecv()
	if !ok || m.Payload.(string) != "ready" {
		t.Fatalf("retained not delivered: %v %v", m, ok)
	}
}

func TestTryRecvDropsOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	s := c.Subscribe(T("camera", "frame"))

	for _, p := range []string{"f1", "f2", "f3"} {
		c.Publish(b.NewMessage(T("camera", "frame"), p, false))
	}
	var got []string
	for {
		m, ok := s.TryRecv()
		if !ok {
			break
		}
		got = append(got, m.Payload.(string))
	}
	if len(got) != 2 || got[0] != "f2" || got[1] != "f3" {
		t.Fatalf("got %v want [f2 f3]", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	s := c.Subscribe(T("a"))
	s.Unsubscribe()
	if _, ok := <-s.Channel(); ok {
		t.Fatal("channel still open")
	}
	c.Publish(b.NewMessage(T("a"), "x", false)) // must not panic
}

func TestWildcard_SingleLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	s1 := c.Subscribe(T("a", "+", "c"))
	s2 := c.Subscribe(T("a", "+", "+"))
	s3 := c.Subscribe(T("a", "b", "+"))
	sNo := c.Subscribe(T("a", "+", "d"))

	c.Publish(b.NewMessage(T("a", "b", "c"), "m1", false))
	expectOneOf(t, s1, "m1")
	expectOneOf(t, s2, "m1")
	expectOneOf(t, s3, "m1")
	expectNoMessage(t, sNo)

	c.Publish(b.NewMessage(T("a", "c"), "m3", false))
	expectNoMessage(t, s1)
	expectNoMessage(t, s2)
	expectNoMessage(t, s3)
}

func TestWildcard_MultiLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	sAHash := c.Subscribe(T("a", "#"))
	sHash := c.Subscribe(T("#"))
	sABHash := c.Subscribe(T("a", "b", "#"))
	sAExact := c.Subscribe(T("a"))

	c.Publish(b.NewMessage(T("a"), "p1", false))
	expectOneOf(t, sAHash, "p1")
	expectOneOf(t, sHash, "p1")
	expectOneOf(t, sAExact, "p1")
	expectNoMessage(t, sABHash)

	c.Publish(b.NewMessage(T("a", "b", "c"), "p3", false))
	expectOneOf(t, sAHash, "p3")
	expectOneOf(t, sHash, "p3")
	expectOneOf(t, sABHash, "p3")
	expectNoMessage(t, sAExact)
}

func TestWildcard_RetainedDelivery(t *testing.T) {
	b := NewBus(32)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(T("a"), "r0", true))
	c.Publish(b.NewMessage(T("a", "b"), "r1", true))
	c.Publish(b.NewMessage(T("a", "b", "c"), "r2", true))
	c.Publish(b.NewMessage(T("a", "x"), "r3", true))

	assertUnorderedEqual(t, drain(c.Subscribe(T("a", "#"))), []string{"r0", "r1", "r2", "r3"})
	assertUnorderedEqual(t, drain(c.Subscribe(T("a", "+", "#"))), []string{"r1", "r2", "r3"})
	assertUnorderedEqual(t, drain(c.Subscribe(T("a", "+"))), []string{"r1", "r3"})
}

func TestWildcard_RetainedClear(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(T("a", "b"), "keep", true))
	c.Publish(b.NewMessage(T("a", "y"), "other", true))
	c.Publish(b.NewMessage(T("a", "b"), nil, true))

	got := drain(c.Subscribe(T("a", "#")))
	if len(got) != 1 || got[0] != "other" {
		t.Fatalf("expected only 'other' after clear, got %v", got)
	}
}

func TestTopicString(t *testing.T) {
	if s := T("camera", "frame").String(); s != "camera/frame" {
		t.Fatalf("String=%q", s)
	}
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func expectOneOf(t *testing.T, sub *Subscription, want string) {
	t.Helper()
	m, ok := sub.TryRecv()
	if !ok {
		t.Fatalf("no message, want %q", want)
	}
	if s, _ := m.Payload.(string); s != want {
		t.Fatalf("unexpected payload: %v (want %q)", m.Payload, want)
	}
}

func expectNoMessage(t *testing.T, sub *Subscription) {
	t.Helper()
	if m, ok := sub.TryRecv(); ok {
		t.Fatalf("unexpected message: %#v", m)
	}
}

func drain(sub *Subscription) []string {
	var out []string
	for {
		m, ok := sub.TryRecv()
		if !ok {
			return out
		}
		out = append(out, m.Payload.(string))
	}
}

func assertUnorderedEqual(t *testing.T, got, want []string) {
	t.Helper()
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d (%v vs %v)", len(got), len(want), got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("mismatch at %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
