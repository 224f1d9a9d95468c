// Package alerts is the in-process replacement for the console's global
// alert event: handlers publish operational alerts (auth expired, send
// failures) and the SSE endpoint fans them out to connected sessions.
package alerts

import (
	"sync"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Alert struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// Bus is a single-topic fan-out. Publish never blocks: a subscriber that
// stopped draining loses alerts instead of stalling the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Alert]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan Alert]struct{})}
}

// Subscribe registers a buffered listener. Always pair with Unsubscribe.
func (b *Bus) Subscribe() chan Alert {
	ch := make(chan Alert, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(ch chan Alert) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(sev Severity, msg string) {
	a := Alert{Severity: sev, Message: msg, At: time.Now()}
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- a:
		default:
		}
	}
	b.mu.Unlock()
}
