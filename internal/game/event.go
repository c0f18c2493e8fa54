package game

import (
	"scoundrel/internal/card"
)

type EventType string

const (
	EventCardFlipRequested       EventType = "card_flip_requested"
	EventCardMovedToDiscard      EventType = "card_moved_to_discard"
	EventCardStacked             EventType = "card_stacked"
	EventCardEquipped            EventType = "card_equipped"
	EventCardStashed             EventType = "card_stashed"
	EventRoomRepositionRequested EventType = "room_reposition_requested"
	EventHealthChanged           EventType = "health_changed"
	EventFloorTransitionMessage  EventType = "floor_transition_message"
	EventRoomStarted             EventType = "room_started"
	EventFloorEntered            EventType = "floor_entered"
	EventRunFled                 EventType = "run_fled"
	EventRunWon                  EventType = "run_won"
	EventRunLost                 EventType = "run_lost"
)

// CardRef is the wire form of a card inside an event. Zone is where the card
// was when the event was raised.
type CardRef struct {
	ID     card.ID     `json:"id"`
	Record card.Record `json:"record"`
	Zone   card.Zone   `json:"zone,omitempty"`
}

func refOf(c *card.Card) *CardRef {
	if c == nil {
		return nil
	}
	return &CardRef{ID: c.ID, Record: c.Record, Zone: c.Zone()}
}

// Event is a discrete notification for the presentation layer. Events raised
// by a transition step expect an Ack before the engine commits the step.
type Event struct {
	Type  EventType `json:"type"`
	Card  *CardRef  `json:"card,omitempty"`
	Delta int       `json:"delta,omitempty"`
	Life  int       `json:"life"`
	Text  string    `json:"text,omitempty"`
	// Seconds the presentation should hold a floor message.
	Delay float64 `json:"delay,omitempty"`
	Floor int     `json:"floor"`
	Room  int     `json:"room"`
	// AwaitsAck is set on events that block the engine until acknowledged.
	AwaitsAck bool `json:"awaits_ack,omitempty"`
}

// Sink receives engine events. Implementations must not call back into the
// engine from OnEvent; acknowledgments are delivered later through Ack.
type Sink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

// Fanout delivers every event to each sink in order.
type Fanout []Sink

func (f Fanout) OnEvent(ev Event) {
	for _, s := range f {
		if s != nil {
			s.OnEvent(ev)
		}
	}
}

type discardSink struct{}

func (discardSink) OnEvent(Event) {}
