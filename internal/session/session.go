package session

import (
	"sync"
	"time"

	"scoundrel/internal/game"
)

// Session is one live run: the engine plus the identity and rules it was
// created with. All engine access goes through the session lock.
type Session struct {
	mu sync.Mutex

	ID        string
	Seed      int64
	Preset    string
	Rules     game.Rules
	CreatedAt time.Time
	UpdatedAt time.Time

	engine *game.Engine
	bus    *bus
}

// View returns the current projection of the run.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewView(s.ID, s.engine)
}

// With runs fn with exclusive access to the engine. fn must not keep the
// engine after it returns.
func (s *Session) With(fn func(e *game.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.engine)
}

// Subscribe registers a sink for every event of this run. Sinks are called
// with the session locked and must hand events off without blocking.
func (s *Session) Subscribe(sink game.Sink) (unsubscribe func()) {
	return s.bus.add(sink)
}

// bus buffers events of the running command and fans them out to
// subscribers.
type bus struct {
	mu   sync.RWMutex
	subs map[int]game.Sink
	next int
	buf  []game.Event
}

func newBus(sinks ...game.Sink) *bus {
	b := &bus{subs: make(map[int]game.Sink)}
	for _, s := range sinks {
		b.add(s)
	}
	return b
}

func (b *bus) add(s game.Sink) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = s
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *bus) OnEvent(ev game.Event) {
	b.mu.Lock()
	b.buf = append(b.buf, ev)
	subs := make([]game.Sink, 0, len(b.subs))
	for i := 0; i < b.next; i++ {
		if s, ok := b.subs[i]; ok {
			subs = append(subs, s)
		}
	}
	b.mu.Unlock()

	game.Fanout(subs).OnEvent(ev)
}

// drain returns and clears the buffered events.
func (b *bus) drain() []game.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.buf
	b.buf = nil
	if out == nil {
		out = []game.Event{}
	}
	return out
}
