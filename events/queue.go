package events

import (
	"sync/atomic"
)

const (
	// QueueSize must be a power of two
	QueueSize = 256
	slotMask  = QueueSize - 1
)

// slot stores one event; seq is the ticket that last completed a write here, plus one
type slot struct {
	seq atomic.Uint64
	ev  GameEvent
}

// EventQueue is a lock-free multi-producer, single-consumer ring of game events
// Producers claim a ticket with one atomic add; the consumer accepts a slot only when its
// sequence matches the expected ticket, so half-written slots are never read.
// When producers lap the consumer the oldest events are lost.
type EventQueue struct {
	slots [QueueSize]slot
	tail  atomic.Uint64 // next ticket to hand out
	head  atomic.Uint64 // next ticket the consumer expects
}

// NewEventQueue creates an empty queue
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push appends an event
func (eq *EventQueue) Push(event GameEvent) {
	ticket := eq.tail.Add(1) - 1
	s := &eq.slots[ticket&slotMask]
	s.ev = event
	s.seq.Store(ticket + 1)
}

// Consume returns pending events oldest first
// Stops early at a slot still being written; the rest is returned by the next call
func (eq *EventQueue) Consume() []GameEvent {
	tail := eq.tail.Load()
	pos := eq.head.Load()
	if tail-pos > QueueSize {
		pos = tail - QueueSize
	}
	if pos == tail {
		return nil
	}

	out := make([]GameEvent, 0, tail-pos)
	for ; pos < tail; pos++ {
		s := &eq.slots[pos&slotMask]
		if s.seq.Load() != pos+1 {
			break
		}
		out = append(out, s.ev)
	}
	eq.head.Store(pos)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Len returns an approximate count of pending events
func (eq *EventQueue) Len() int {
	return int(min(eq.tail.Load()-eq.head.Load(), QueueSize))
}
