package game

import (
	"fmt"

	"scoundrel/internal/card"
	"scoundrel/internal/deck"
)

const SnapshotVersion = 1

// CardState is a card reduced to its record and flags.
type CardState struct {
	ID     card.ID   `json:"id"`
	Suit   card.Suit `json:"suit"`
	Value  int       `json:"value"`
	FaceUp bool      `json:"face_up"`
	Order  int       `json:"order"`
}

func (s CardState) Record() card.Record { return card.Record{Suit: s.Suit, Value: s.Value} }

func stateOf(c *card.Card) CardState {
	return CardState{ID: c.ID, Suit: c.Record.Suit, Value: c.Record.Value, FaceUp: c.FaceUp, Order: c.Order}
}

func statesOf(cs []*card.Card) []CardState {
	out := make([]CardState, len(cs))
	for i, c := range cs {
		out[i] = stateOf(c)
	}
	return out
}

// Snapshot is the whole engine state as a flat record.
type Snapshot struct {
	Version     int           `json:"version"`
	Seed        int64         `json:"seed"`
	Status      Status        `json:"status"`
	Floors      []deck.Type   `json:"floors"`
	FloorIndex  int           `json:"floor_index"`
	RoomCounter int           `json:"room_counter"`
	Deck        []card.Record `json:"deck"`
	Room        []CardState   `json:"room"`
	Discard     []CardState   `json:"discard"`
	Life        int           `json:"life"`
	MaxLife     int           `json:"max_life"`
	Weapon      *CardState    `json:"weapon,omitempty"`
	Defeated    []CardState   `json:"defeated"`
	Inventory   []CardState   `json:"inventory"`
	RanLastTurn bool          `json:"ran_last_turn"`
	NextID      card.ID       `json:"next_id"`
}

// Snapshot captures the engine between transitions.
func (e *Engine) Snapshot() (Snapshot, error) {
	if e.floors == nil {
		return Snapshot{}, ErrNotStarted
	}
	if e.pending != nil {
		return Snapshot{}, ErrBusy
	}
	s := Snapshot{
		Version:     SnapshotVersion,
		Seed:        e.seed,
		Status:      e.status,
		Floors:      e.floors.Floors(),
		FloorIndex:  e.floors.CurrentFloorIndex(),
		RoomCounter: e.floors.RoomCounter(),
		Deck:        e.deck.Records(),
		Room:        statesOf(e.room.cards),
		Discard:     statesOf(e.discard.cards),
		Life:        e.player.Life(),
		MaxLife:     e.player.MaxLife(),
		Defeated:    statesOf(e.player.defeated),
		Inventory:   statesOf(e.player.inv),
		RanLastTurn: e.ranLastTurn,
		NextID:      e.nextID,
	}
	if w := e.player.weapon; w != nil {
		ws := stateOf(w)
		s.Weapon = &ws
	}
	return s, nil
}

// Restore rebuilds an engine from a snapshot. The snapshot seed replaces any
// WithSeed option so later floors regenerate identically.
func Restore(rules Rules, s Snapshot, opts ...Option) (*Engine, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("game: unsupported snapshot version %d", s.Version)
	}
	opts = append(opts, WithSeed(s.Seed), WithFloorCount(len(s.Floors)))
	e, err := New(rules, opts...)
	if err != nil {
		return nil, err
	}
	if err := validateSnapshot(rules, s); err != nil {
		return nil, err
	}

	e.floors = NewFloorManager(s.Floors)
	e.floors.index = s.FloorIndex
	e.floors.rooms = s.RoomCounter
	e.deck = deck.FromRecords(s.Deck)
	e.status = s.Status
	e.ranLastTurn = s.RanLastTurn
	e.nextID = s.NextID
	e.player = newPlayer(s.Life, rules.MaxLife, rules.InventoryCapacity)

	place := func(cs CardState, z card.Zone) *card.Card {
		c := card.New(cs.ID, cs.Record())
		c.FaceUp = cs.FaceUp
		c.Order = cs.Order
		e.move(c, z)
		return c
	}
	for _, cs := range s.Discard {
		place(cs, card.ZoneDiscard)
	}
	if s.Weapon != nil {
		place(*s.Weapon, card.ZoneWeapon)
	}
	for _, cs := range s.Defeated {
		place(cs, card.ZoneWeaponStack)
	}
	for _, cs := range s.Inventory {
		place(cs, card.ZoneInventory)
	}
	flips := &Transition{Name: "room"}
	for _, cs := range s.Room {
		c := place(cs, card.ZoneRoom)
		if c.Order >= e.nextOrder {
			e.nextOrder = c.Order + 1
		}
		if !c.FaceUp {
			flips.add(StepFlip, c)
		}
	}

	e.log.Info().
		Int64("seed", e.seed).
		Int("floor", e.floors.CurrentFloorIndex()).
		Int("room", e.floors.RoomCounter()).
		Str("status", string(e.status)).
		Msg("run restored")

	if e.status == StatusPlaying {
		e.begin(flips)
	}
	return e, nil
}

func validateSnapshot(rules Rules, s Snapshot) error {
	switch s.Status {
	case StatusPlaying, StatusVictory, StatusDefeat:
	default:
		return fmt.Errorf("game: snapshot status %q", s.Status)
	}
	if len(s.Floors) == 0 {
		return fmt.Errorf("game: snapshot has no floors")
	}
	for _, f := range s.Floors {
		if _, err := deck.Lookup(f); err != nil {
			return fmt.Errorf("game: snapshot: %w", err)
		}
	}
	if s.FloorIndex < 0 || s.FloorIndex >= len(s.Floors) {
		return fmt.Errorf("game: snapshot floor index %d outside [0,%d)", s.FloorIndex, len(s.Floors))
	}
	if s.RoomCounter < 0 {
		return fmt.Errorf("game: snapshot room counter %d", s.RoomCounter)
	}
	if s.Life < 0 || s.Life > rules.MaxLife {
		return fmt.Errorf("game: snapshot life %d outside [0,%d]", s.Life, rules.MaxLife)
	}
	if s.Status == StatusPlaying && s.Life == 0 {
		return fmt.Errorf("game: snapshot is playing with no life left")
	}
	for i := 1; i < len(s.Defeated); i++ {
		if s.Defeated[i].Value >= s.Defeated[i-1].Value {
			return fmt.Errorf("game: snapshot weapon stack not strictly decreasing at %d", i)
		}
	}
	if len(s.Room) > rules.RoomCapacity {
		return fmt.Errorf("game: snapshot room holds %d cards, capacity %d", len(s.Room), rules.RoomCapacity)
	}
	if len(s.Inventory) > rules.InventoryCapacity {
		return fmt.Errorf("game: snapshot inventory holds %d cards, capacity %d", len(s.Inventory), rules.InventoryCapacity)
	}
	if s.Weapon == nil && len(s.Defeated) > 0 {
		return fmt.Errorf("game: snapshot has defeated monsters without a weapon")
	}
	for _, r := range s.Deck {
		if !r.Valid() {
			return fmt.Errorf("game: snapshot deck record %+v invalid", r)
		}
	}

	seen := map[card.ID]bool{}
	check := func(where string, cs CardState, kinds ...card.Kind) error {
		if !cs.Record().Valid() {
			return fmt.Errorf("game: snapshot %s card %+v invalid", where, cs)
		}
		if seen[cs.ID] {
			return fmt.Errorf("game: snapshot card #%d appears twice", cs.ID)
		}
		if cs.ID <= 0 || cs.ID >= s.NextID {
			return fmt.Errorf("game: snapshot card id #%d outside [1,%d)", cs.ID, s.NextID)
		}
		seen[cs.ID] = true
		if len(kinds) == 0 {
			return nil
		}
		for _, k := range kinds {
			if cs.Record().Kind() == k {
				return nil
			}
		}
		return fmt.Errorf("game: snapshot %s cannot hold %s", where, cs.Record())
	}
	for _, cs := range s.Room {
		if err := check("room", cs); err != nil {
			return err
		}
	}
	for _, cs := range s.Discard {
		if err := check("discard", cs); err != nil {
			return err
		}
	}
	if s.Weapon != nil {
		if err := check("weapon", *s.Weapon, card.Weapon); err != nil {
			return err
		}
	}
	for _, cs := range s.Defeated {
		if err := check("weapon stack", cs, card.Monster); err != nil {
			return err
		}
	}
	for _, cs := range s.Inventory {
		if err := check("inventory", cs, card.Weapon, card.Potion); err != nil {
			return err
		}
	}
	return nil
}
