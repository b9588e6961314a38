package rxlog

import "sync"

// DefaultCapacity bounds the log when no override is configured.
const DefaultCapacity = 300

// Log is a bounded, newest-first collection of received events. Exactly one
// producer (the stream session's reader) inserts; any number of view
// consumers read snapshots. Mutation is serialized through the mutex so the
// single-writer discipline holds even with concurrent readers.
type Log struct {
	mu       sync.RWMutex
	capacity int
	events   []ReceivedEvent
}

// NewLog creates an empty log holding at most capacity entries. A
// non-positive capacity falls back to DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Insert prepends ev and evicts the oldest entries until the log fits its
// capacity again.
func (l *Log) Insert(ev ReceivedEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := make([]ReceivedEvent, 0, len(l.events)+1)
	events = append(events, ev)
	events = append(events, l.events...)
	if len(events) > l.capacity {
		events = events[:l.capacity]
	}
	l.events = events
}

// Clear empties the log. Legal at any time, regardless of whether a
// transmission is running or a stream is connected.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// Len reports the number of events currently held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Snapshot returns every event, newest first.
func (l *Log) Snapshot() []ReceivedEvent {
	return l.FilterByCategory(CategoryAll)
}

// FilterByCategory returns the events matching cat, newest first, computed
// fresh on every call. CategoryAll disables filtering.
func (l *Log) FilterByCategory(cat Category) []ReceivedEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ReceivedEvent, 0, len(l.events))
	for _, ev := range l.events {
		if cat == CategoryAll || ev.Category == cat {
			out = append(out, ev)
		}
	}
	return out
}

// Counts tallies the full log. The active filter never changes what is
// counted here.
func (l *Log) Counts() Counts {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var c Counts
	for _, ev := range l.events {
		switch ev.Category {
		case CategoryA:
			c.A++
		case CategoryB:
			c.B++
		case CategoryB2:
			c.B2++
		default:
			c.Unknown++
		}
	}
	c.Total = len(l.events)
	return c
}
