package tui

import (
	"github.com/lixenwraith/cyber-clicker/events"
)

// messageLog is a bounded ring of player-facing event messages
type messageLog struct {
	buf   []string
	start int
	n     int
}

func newMessageLog(capacity int) *messageLog {
	return &messageLog{buf: make([]string, capacity)}
}

func (l *messageLog) add(msg string) {
	if msg == "" {
		return
	}
	idx := (l.start + l.n) % len(l.buf)
	l.buf[idx] = msg
	if l.n < len(l.buf) {
		l.n++
	} else {
		l.start = (l.start + 1) % len(l.buf)
	}
}

func (l *messageLog) lines() []string {
	out := make([]string, l.n)
	for i := range out {
		out[i] = l.buf[(l.start+i)%len(l.buf)]
	}
	return out
}

// HandleEvent records the event's message
func (l *messageLog) HandleEvent(_ *App, ev events.GameEvent) {
	l.add(ev.Message)
}

// EventTypes is empty so the log receives every event
func (l *messageLog) EventTypes() []events.EventType { return nil }
