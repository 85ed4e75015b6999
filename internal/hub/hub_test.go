package hub

import (
	"context"
	"testing"
	"time"
)

func TestPublishDropDoesNotBlock(t *testing.T) {
	h := NewSized("video", 4)
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	start := time.Now()
	for i := 0; i < 1000; i++ {
		h.Publish([]byte{byte(i)})
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Publish took too long: %s", elapsed)
	}
}

func TestPublishDeliversFIFO(t *testing.T) {
	h := NewSized("video", 8)
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	h.Publish([]byte("AA"))
	h.Publish([]byte("BB"))
	h.Publish([]byte("CC"))

	ctx := context.Background()
	for _, want := range [][]byte{[]byte("AA"), []byte("BB"), []byte("CC")} {
		got, status := sub.Next(ctx)
		if status != StatusOK {
			t.Fatalf("status = %v, want StatusOK", status)
		}
		if string(got) != string(want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

// TestPublishEvictsOldestOnOverflow verifies the ring-buffer policy: a
// lagging subscriber's stale head item is evicted to admit the newest
// publish, rather than the newest item being dropped and the stale one
// kept. A never-reading subscriber must still observe the latest frame
// once it does read, with a Lagged signal marking what it missed.
func TestPublishEvictsOldestOnOverflow(t *testing.T) {
	h := NewSized("video", 1)
	slow := h.Subscribe()
	defer h.Unsubscribe(slow)

	h.Publish([]byte("1")) // fills the buffer (cap 1)
	h.Publish([]byte("2")) // "1" is evicted to admit "2"

	ctx := context.Background()
	got, status := slow.Next(ctx)
	if status == StatusLagged {
		// The lag signal is reported once; the next call must then
		// deliver the newest item.
		got, status = slow.Next(ctx)
	}
	if status != StatusOK {
		t.Fatalf("status = %v, want StatusOK", status)
	}
	if string(got) != "2" {
		t.Fatalf("got %q, want newest item %q", got, "2")
	}
}

func TestSubscribeAssignsUniqueIDs(t *testing.T) {
	h := New("audio")
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)
	if a.ID == b.ID {
		t.Fatalf("expected distinct subscription IDs")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewSized("audio", 4)
	sub := h.Subscribe()
	h.Unsubscribe(sub)
	if h.Count() != 0 {
		t.Fatalf("count = %d, want 0", h.Count())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, status := sub.Next(ctx)
	if status != StatusClosed {
		t.Fatalf("status = %v, want StatusClosed", status)
	}
}

func TestPublishReturnsDeliveredCount(t *testing.T) {
	h := New("video")
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)
	if n := h.Publish([]byte("x")); n != 2 {
		t.Fatalf("delivered = %d, want 2", n)
	}
}

func TestPublishWithNoSubscribersIsNonEvent(t *testing.T) {
	h := New("audio")
	if n := h.Publish([]byte("x")); n != 0 {
		t.Fatalf("delivered = %d, want 0", n)
	}
}
