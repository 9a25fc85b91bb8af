// Package messaging models the per-message delivery status shown in the
// conversation view. The sending → delivered → read progression is driven by
// fixed local timers; there is no transport and no persistence behind it, it
// is presentation state only.
package messaging

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is a message's delivery indicator.
type Status string

const (
	StatusSending   Status = "sending"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// canTransition reports whether a status may advance from one state to the
// next. Only forward single-step moves are legal.
func canTransition(from, to Status) bool {
	switch from {
	case StatusSending:
		return to == StatusDelivered
	case StatusDelivered:
		return to == StatusRead
	default:
		return false
	}
}

// Message is one entry in a conversation.
type Message struct {
	ID     string
	Body   string
	Status Status
	SentAt time.Time
}

// Timings configures the simulated delivery delays.
type Timings struct {
	Deliver time.Duration // sending → delivered
	Read    time.Duration // delivered → read
}

// DefaultTimings matches the storefront UI's fixed timers.
func DefaultTimings() Timings {
	return Timings{Deliver: time.Second, Read: 2 * time.Second}
}

// Thread is the local state machine for one conversation's outgoing messages.
type Thread struct {
	timings Timings

	mu       sync.Mutex
	messages []Message
	index    map[string]int
	subs     []func(Message)
	timers   map[string]*time.Timer
	closed   bool
}

// NewThread creates an empty conversation thread.
func NewThread(timings Timings) *Thread {
	return &Thread{
		timings: timings,
		index:   make(map[string]int),
		timers:  make(map[string]*time.Timer),
	}
}

// Send appends a message in the sending state and schedules its simulated
// delivered and read transitions.
func (t *Thread) Send(body string) Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg := Message{
		ID:     uuid.NewString(),
		Body:   body,
		Status: StatusSending,
		SentAt: time.Now(),
	}
	t.index[msg.ID] = len(t.messages)
	t.messages = append(t.messages, msg)

	if !t.closed {
		id := msg.ID
		t.timers[id] = time.AfterFunc(t.timings.Deliver, func() {
			if !t.advance(id, StatusDelivered) {
				t.clearTimer(id)
				return
			}
			t.mu.Lock()
			if t.closed {
				delete(t.timers, id)
				t.mu.Unlock()
				return
			}
			// Each message holds at most one pending timer at a time.
			t.timers[id] = time.AfterFunc(t.timings.Read, func() {
				t.advance(id, StatusRead)
				t.clearTimer(id)
			})
			t.mu.Unlock()
		})
	}

	return msg
}

// Messages returns a copy of the thread in send order.
func (t *Thread) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

// Subscribe registers fn to be called after each status change, with a copy
// of the changed message. Callbacks run on the timer goroutine.
func (t *Thread) Subscribe(fn func(Message)) (unsubscribe func()) {
	t.mu.Lock()
	t.subs = append(t.subs, fn)
	idx := len(t.subs) - 1
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		t.subs[idx] = nil
		t.mu.Unlock()
	}
}

// Close stops all pending timers; message statuses freeze where they are.
func (t *Thread) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for _, timer := range t.timers {
		timer.Stop()
	}
	t.timers = nil
}

// advance moves a message to the given status if the transition is legal.
func (t *Thread) advance(id string, to Status) bool {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false
	}
	i, ok := t.index[id]
	if !ok || !canTransition(t.messages[i].Status, to) {
		t.mu.Unlock()
		return false
	}
	t.messages[i].Status = to
	msg := t.messages[i]
	subs := append([]func(Message){}, t.subs...)
	t.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(msg)
		}
	}
	return true
}

// clearTimer drops the bookkeeping entry for a timer that has fired.
func (t *Thread) clearTimer(id string) {
	t.mu.Lock()
	delete(t.timers, id)
	t.mu.Unlock()
}
