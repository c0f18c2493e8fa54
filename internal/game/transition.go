package game

import "scoundrel/internal/card"

// StepKind is one resumable piece of a multi-step transition.
type StepKind string

const (
	StepFlip       StepKind = "flip"
	StepDiscard    StepKind = "discard"
	StepStack      StepKind = "stack"
	StepEquip      StepKind = "equip"
	StepStash      StepKind = "stash"
	StepReposition StepKind = "reposition"
	StepFloor      StepKind = "floor"
)

// Step is committed when the presentation layer acknowledges it.
type Step struct {
	Kind StepKind
	Card *card.Card
	Text string
}

// Transition is the pending sequence of steps for one action. The engine
// accepts no new input until every step has been acknowledged.
type Transition struct {
	Name    string
	Steps   []Step
	Current int
}

func (t *Transition) step() Step { return t.Steps[t.Current] }

func (t *Transition) done() bool { return t.Current >= len(t.Steps) }

func (t *Transition) add(kind StepKind, c *card.Card) {
	t.Steps = append(t.Steps, Step{Kind: kind, Card: c})
}

func (k StepKind) event() EventType {
	switch k {
	case StepFlip:
		return EventCardFlipRequested
	case StepDiscard:
		return EventCardMovedToDiscard
	case StepStack:
		return EventCardStacked
	case StepEquip:
		return EventCardEquipped
	case StepStash:
		return EventCardStashed
	case StepFloor:
		return EventFloorTransitionMessage
	default:
		return EventRoomRepositionRequested
	}
}
