package alerts

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBus()
	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(a)
	defer b.Unsubscribe(c)

	b.Publish(SeverityError, "sessão expirada")

	for _, ch := range []chan Alert{a, c} {
		select {
		case got := <-ch:
			if got.Severity != SeverityError || got.Message != "sessão expirada" {
				t.Fatalf("alert mismatch: %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive alert")
		}
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(SeverityInfo, "x")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Fatal("channel not closed")
	}
	// double unsubscribe is harmless
	b.Unsubscribe(ch)
	b.Publish(SeverityInfo, "após remover")
}
