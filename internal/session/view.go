package session

import (
	"scoundrel/internal/card"
	"scoundrel/internal/deck"
	"scoundrel/internal/game"
)

// CardView is a card as a client may see it. Face-down cards keep their
// record hidden.
type CardView struct {
	ID       card.ID   `json:"id"`
	Suit     card.Suit `json:"suit,omitempty"`
	Value    int       `json:"value,omitempty"`
	Kind     card.Kind `json:"kind,omitempty"`
	Label    string    `json:"label"`
	FaceUp   bool      `json:"face_up"`
	Flipping bool      `json:"flipping,omitempty"`
}

func cardView(c *card.Card) CardView {
	v := CardView{ID: c.ID, FaceUp: c.FaceUp, Flipping: c.Flipping, Label: "??"}
	if c.FaceUp || c.Zone() != card.ZoneRoom {
		v.Suit = c.Record.Suit
		v.Value = c.Record.Value
		v.Kind = c.Kind()
		v.Label = c.String()
		v.FaceUp = true
	}
	return v
}

func cardViews(cs []*card.Card) []CardView {
	out := make([]CardView, len(cs))
	for i, c := range cs {
		out[i] = cardView(c)
	}
	return out
}

type View struct {
	ID          string      `json:"id"`
	Status      game.Status `json:"status"`
	Busy        bool        `json:"busy"`
	PendingStep string      `json:"pending_step,omitempty"`

	Life              int        `json:"life"`
	MaxLife           int        `json:"max_life"`
	Weapon            *CardView  `json:"weapon,omitempty"`
	Defeated          []CardView `json:"defeated"`
	DurabilityFloor   int        `json:"durability_floor,omitempty"`
	Inventory         []CardView `json:"inventory"`
	InventoryCapacity int        `json:"inventory_capacity"`

	Room          []CardView `json:"room"`
	DeckRemaining int        `json:"deck_remaining"`
	DiscardCount  int        `json:"discard_count"`
	Floor         int        `json:"floor"`
	FloorCount    int        `json:"floor_count"`
	FloorType     deck.Type  `json:"floor_type,omitempty"`
	FloorName     string     `json:"floor_name,omitempty"`
	RoomNumber    int        `json:"room_number"`
	CanRun        bool       `json:"can_run"`
	RanLastTurn   bool       `json:"ran_last_turn"`
}

// NewView projects an engine. Floor is one-based for display.
func NewView(id string, e *game.Engine) View {
	p := e.Player()
	v := View{
		ID:                id,
		Status:            e.Status(),
		Busy:              e.Busy(),
		Life:              p.Life(),
		MaxLife:           p.MaxLife(),
		Defeated:          cardViews(p.Defeated()),
		Inventory:         cardViews(p.Inventory()),
		InventoryCapacity: p.InventoryCapacity(),
		Room:              cardViews(e.Room().Cards()),
		DeckRemaining:     e.DeckRemaining(),
		DiscardCount:      e.Discard().Len(),
		CanRun:            e.CanRun(),
		RanLastTurn:       e.RanLastTurn(),
	}
	if step, ok := e.PendingStep(); ok {
		v.PendingStep = string(step.Kind)
	}
	if w := p.Weapon(); w != nil {
		wv := cardView(w)
		v.Weapon = &wv
	}
	if f, ok := p.DurabilityFloor(); ok {
		v.DurabilityFloor = f
	}
	if fm := e.Floors(); fm != nil {
		v.Floor = fm.CurrentFloorIndex() + 1
		v.FloorCount = fm.Count()
		v.FloorType = fm.Current()
		v.RoomNumber = fm.RoomCounter()
		if def, err := deck.Lookup(fm.Current()); err == nil {
			v.FloorName = def.Name
		}
	}
	return v
}
