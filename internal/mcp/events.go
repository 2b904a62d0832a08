package mcp

import (
	"fmt"
	"sync"
)

// defaultMaxEventsPerSession bounds per-session retention. Oldest events are
// evicted first; a checkpoint pointing at an evicted event behaves like an
// unknown checkpoint.
const defaultMaxEventsPerSession = 256

// Event is one stored notification. IDs are zero-padded per-session counters,
// so lexicographic order equals append order and SSE Last-Event-ID values can
// be compared as strings.
type Event struct {
	ID      string
	Payload []byte
}

// EventLog keeps an append-only, replayable notification sequence per
// session. It is transient: contents do not survive a process restart.
type EventLog struct {
	mu      sync.Mutex
	max     int
	streams map[string]*eventStream
}

type eventStream struct {
	seq    uint64
	events []Event
}

// NewEventLog returns an empty log with the default per-session cap.
func NewEventLog() *EventLog {
	return &EventLog{max: defaultMaxEventsPerSession, streams: make(map[string]*eventStream)}
}

// Append stores a payload under the session's next event id and returns that
// id.
func (l *EventLog) Append(sessionID string, payload []byte) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	stream, ok := l.streams[sessionID]
	if !ok {
		stream = &eventStream{}
		l.streams[sessionID] = stream
	}

	stream.seq++
	id := fmt.Sprintf("%020d", stream.seq)
	stream.events = append(stream.events, Event{ID: id, Payload: payload})
	if len(stream.events) > l.max {
		stream.events = stream.events[len(stream.events)-l.max:]
	}
	return id
}

// ReplayAfter returns all events strictly after lastSeenID in append order.
// An absent or unknown checkpoint yields no backfill: a reconnecting client
// only replays from a point it has proven it reached.
func (l *EventLog) ReplayAfter(sessionID, lastSeenID string) []Event {
	if lastSeenID == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	stream, ok := l.streams[sessionID]
	if !ok {
		return nil
	}

	for i, ev := range stream.events {
		if ev.ID == lastSeenID {
			out := make([]Event, len(stream.events)-i-1)
			copy(out, stream.events[i+1:])
			return out
		}
	}
	return nil
}

// Drop discards the session's event sequence.
func (l *EventLog) Drop(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.streams, sessionID)
}
