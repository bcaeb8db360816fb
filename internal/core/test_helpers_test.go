package core

import (
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// drain empties the channel and returns how many events of the given kind
// were pending.
func drain(ch <-chan *Event, kind EventKind) int {
	count := 0
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				count++
			}
		default:
			return count
		}
	}
}

// settle gives the hub loop time to process queued commands.
func settle() {
	time.Sleep(50 * time.Millisecond)
}
