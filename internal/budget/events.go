package budget

import (
	"sync"
	"time"

	"custombudget/internal/core"
)

type EventType string

const (
	EventInserted   EventType = "inserted"
	EventRemoved    EventType = "removed"
	EventRecomputed EventType = "recomputed"
	// EventDeleted is recorded when the last building leaves a line item.
	EventDeleted EventType = "deleted"
)

// Event describes one value pushed to the ledger.
type Event struct {
	Type          EventType
	CityID        string
	DepartmentID  uint32
	LineID        uint32
	Kind          core.ItemKind
	BuildingCount int64
	Total         int64
	At            time.Time
}

// DefaultEventLogSize bounds an EventLog created with a non-positive size.
const DefaultEventLogSize = 4096

// EventLog buffers events between dispatch turns. Record never blocks: when
// the log is full the oldest event is dropped and counted.
type EventLog struct {
	mu      sync.Mutex
	events  []Event
	limit   int
	dropped int
}

func NewEventLog(limit int) *EventLog {
	if limit <= 0 {
		limit = DefaultEventLogSize
	}
	return &EventLog{limit: limit}
}

func (l *EventLog) Record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == l.limit {
		copy(l.events, l.events[1:])
		l.events = l.events[:len(l.events)-1]
		l.dropped++
	}
	l.events = append(l.events, e)
}

// Drain returns the buffered events in record order and empties the log.
func (l *EventLog) Drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.events
	l.events = nil
	return out
}

// Dropped returns how many events were discarded because the log was full.
func (l *EventLog) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
