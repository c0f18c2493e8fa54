package game

import (
	"scoundrel/internal/card"
)

type Result string

const (
	Resolved  Result = "resolved"
	CannotAct Result = "cannot_act"
)

// Reasons returned with CannotAct. They are guard conditions, not errors.
const (
	ReasonOver          = "run is over"
	ReasonNotStarted    = "run not started"
	ReasonBusy          = "transition pending"
	ReasonNotInRoom     = "card not in room"
	ReasonNotReady      = "card not ready"
	ReasonRoomNotFull   = "room not full"
	ReasonRanLastTurn   = "ran last turn"
	ReasonNotStashable  = "only weapons and potions can be stashed"
	ReasonInventoryFull = "inventory full"
	ReasonNoSuchSlot    = "no such inventory slot"
)

type Intent struct {
	BareHanded bool `json:"bare_handed"`
}

// Outcome reports what an action did. Damage is the combat result before
// the life clamp; Healed is the life actually gained.
type Outcome struct {
	Result  Result   `json:"result"`
	Reason  string   `json:"reason,omitempty"`
	Card    *CardRef `json:"card,omitempty"`
	Damage  int      `json:"damage,omitempty"`
	Healed  int      `json:"healed,omitempty"`
	Stacked bool     `json:"stacked,omitempty"`
	Status  Status   `json:"status"`
}

func (o Outcome) OK() bool { return o.Result == Resolved }

func (e *Engine) cannot(reason string) Outcome {
	return Outcome{Result: CannotAct, Reason: reason, Status: e.status}
}

func (e *Engine) actionBlocked() string {
	switch {
	case e.floors == nil:
		return ReasonNotStarted
	case e.status != StatusPlaying:
		return ReasonOver
	case e.pending != nil:
		return ReasonBusy
	}
	return ""
}

func (e *Engine) roomCard(id card.ID) (*card.Card, string) {
	if r := e.actionBlocked(); r != "" {
		return nil, r
	}
	c := e.room.Find(id)
	if c == nil {
		return nil, ReasonNotInRoom
	}
	if !c.Ready() {
		return nil, ReasonNotReady
	}
	return c, ""
}

// Resolve plays a face-up room card: potions heal, weapons equip and
// monsters are fought with the equipped weapon unless the intent is
// bare-handed.
func (e *Engine) Resolve(id card.ID, in Intent) Outcome {
	c, reason := e.roomCard(id)
	if reason != "" {
		return e.cannot(reason)
	}
	e.ranLastTurn = false
	return e.play(c, in)
}

// UseInventory plays a reserved card as if it were in the room. Using the
// inventory does not touch the room, so it leaves the run restriction alone.
func (e *Engine) UseInventory(slot int) Outcome {
	if r := e.actionBlocked(); r != "" {
		return e.cannot(r)
	}
	if slot < 0 || slot >= len(e.player.inv) {
		return e.cannot(ReasonNoSuchSlot)
	}
	return e.play(e.player.inv[slot], Intent{})
}

func (e *Engine) play(c *card.Card, in Intent) Outcome {
	out := Outcome{Result: Resolved, Card: refOf(c)}
	t := &Transition{Name: string(c.Kind())}

	switch c.Kind() {
	case card.Potion:
		out.Healed = e.player.Heal(c.Value())
		if out.Healed != 0 {
			e.emit(Event{Type: EventHealthChanged, Card: refOf(c), Delta: out.Healed})
		}
		t.add(StepDiscard, c)

	case card.Weapon:
		if w := e.player.weapon; w != nil {
			t.add(StepDiscard, w)
		}
		for _, m := range e.player.defeated {
			t.add(StepDiscard, m)
		}
		t.add(StepEquip, c)

	case card.Monster:
		dmg, stack := fight(c.Value(), e.player.weapon, e.player.LastDefeated(), in.BareHanded)
		out.Damage = dmg
		if lost := e.player.Damage(dmg); lost > 0 {
			e.emit(Event{Type: EventHealthChanged, Card: refOf(c), Delta: -lost})
		}
		e.log.Debug().
			Str("monster", c.String()).
			Int("damage", dmg).
			Bool("stacked", stack).
			Int("life", e.player.Life()).
			Msg("fight")
		if e.player.Dead() {
			e.lose()
			out.Status = e.status
			return out
		}
		out.Stacked = stack
		if stack {
			t.add(StepStack, c)
		} else {
			t.add(StepDiscard, c)
		}
	}

	t.add(StepReposition, nil)
	e.begin(t)
	out.Status = e.status
	return out
}

// fight applies the weapon durability rule. A fresh weapon always keeps its
// first kill; after that a monster only joins the stack when it is strictly
// weaker than the previous kill, otherwise it is fought at full value.
func fight(monster int, weapon, last *card.Card, bare bool) (damage int, stack bool) {
	if bare || weapon == nil {
		return monster, false
	}
	if last != nil && last.Value() <= monster {
		return monster, false
	}
	return max(0, monster-weapon.Value()), true
}

func (e *Engine) runBlocked() string {
	if r := e.actionBlocked(); r != "" {
		return r
	}
	switch {
	case e.room.Len() != e.rules.RoomCapacity:
		return ReasonRoomNotFull
	case !e.room.AllReady():
		return ReasonNotReady
	case e.ranLastTurn:
		return ReasonRanLastTurn
	}
	return ""
}

// RunFromRoom sends every room card to the bottom of the deck, in room
// order, and opens the next room. It may not be used twice in a row.
func (e *Engine) RunFromRoom() Outcome {
	if r := e.runBlocked(); r != "" {
		return e.cannot(r)
	}
	for _, c := range e.room.Cards() {
		e.deck.ReturnToBottom(c.Record)
		e.move(c, card.ZoneNone)
	}
	e.ranLastTurn = true
	e.log.Info().Int("room", e.floors.RoomCounter()).Msg("fled room")
	e.emit(Event{Type: EventRunFled})
	e.check()
	return Outcome{Result: Resolved, Status: e.status}
}

// Stash moves a face-up weapon or potion from the room into the inventory.
func (e *Engine) Stash(id card.ID) Outcome {
	c, reason := e.roomCard(id)
	if reason != "" {
		return e.cannot(reason)
	}
	if c.Kind() == card.Monster {
		return e.cannot(ReasonNotStashable)
	}
	if e.player.InventoryFull() {
		return e.cannot(ReasonInventoryFull)
	}
	e.ranLastTurn = false
	t := &Transition{Name: "stash"}
	t.add(StepStash, c)
	t.add(StepReposition, nil)
	e.begin(t)
	return Outcome{Result: Resolved, Card: refOf(c), Status: e.status}
}
