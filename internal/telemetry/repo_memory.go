package telemetry

import (
	"encoding/json"
	"sync"
	"time"
)

// Repository stores run telemetry. Events carrying a "run" metadata key are
// indexed by that run.
type Repository interface {
	RecordEvent(eventType EventType, metadata EventMetadata) error
	Events(q Query) ([]Event, error)
	Clear() error
}

// MemoryRepository keeps events in process, grouped by run so per-run
// queries skip the rest of the log.
type MemoryRepository struct {
	mu     sync.RWMutex
	events []Event
	byRun  map[string][]int
	nextID int
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byRun: map[string][]int{}, nextID: 1, now: time.Now}
}

func (r *MemoryRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	md, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	run := runOf(metadata)

	r.mu.Lock()
	defer r.mu.Unlock()
	if run != "" {
		r.byRun[run] = append(r.byRun[run], len(r.events))
	}
	r.events = append(r.events, Event{
		ID:        r.nextID,
		Type:      eventType,
		Run:       run,
		Timestamp: r.now(),
		Metadata:  string(md),
	})
	r.nextID++
	return nil
}

func (r *MemoryRepository) Events(q Query) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0)
	if q.Run != "" {
		for _, i := range r.byRun[q.Run] {
			if q.match(r.events[i]) {
				out = append(out, r.events[i])
			}
		}
		return out, nil
	}
	for _, ev := range r.events {
		if q.match(ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.byRun = map[string][]int{}
	r.nextID = 1
	return nil
}
