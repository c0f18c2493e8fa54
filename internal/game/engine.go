package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"scoundrel/internal/card"
	"scoundrel/internal/deck"
)

type Status string

const (
	StatusPlaying Status = "playing"
	StatusVictory Status = "victory"
	StatusDefeat  Status = "defeat"
)

var (
	ErrBusy       = errors.New("game: transition pending")
	ErrNotStarted = errors.New("game: run not started")
	ErrStarted    = errors.New("game: run already started")
)

// Engine drives one run: room lifecycle, action resolution and floor
// sequencing. It is single-threaded; callers serialize access.
type Engine struct {
	rules      Rules
	sink       Sink
	log        zerolog.Logger
	seed       int64
	floorCount int

	deck    *deck.Deck
	room    Room
	player  *Player
	discard DiscardPile
	floors  *FloorManager

	status      Status
	pending     *Transition
	ranLastTurn bool
	// set while a room-empty or carry decision is being acted on
	completing bool
	nextID     card.ID
	nextOrder  int
}

type Option func(*Engine)

func WithSink(s Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithFloorCount overrides Rules.FloorCount for this run.
func WithFloorCount(n int) Option {
	return func(e *Engine) { e.floorCount = n }
}

// New validates the rules and returns an engine that has not started yet.
func New(rules Rules, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		rules:      rules,
		sink:       discardSink{},
		log:        zerolog.Nop(),
		seed:       time.Now().UnixNano(),
		floorCount: rules.FloorCount,
		player:     newPlayer(rules.startLife(), rules.MaxLife, rules.InventoryCapacity),
		status:     StatusPlaying,
		nextID:     1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.floorCount < 1 {
		return nil, fmt.Errorf("game: floor count must be at least 1, got %d", e.floorCount)
	}
	return e, nil
}

// Start plans the floors, generates the first deck and opens the first room.
func (e *Engine) Start() error {
	if e.floors != nil {
		return ErrStarted
	}
	e.floors = NewFloorManager(deck.Plan(e.floorCount, deck.NewSource(e.seed)))
	d, err := e.generate()
	if err != nil {
		return err
	}
	e.deck = d
	e.log.Info().Int64("seed", e.seed).Strs("floors", typeNames(e.floors.Floors())).Msg("run started")
	e.emit(Event{Type: EventFloorEntered, Text: e.floorName()})
	e.check()
	return nil
}

func (e *Engine) generate() (*deck.Deck, error) {
	def, err := deck.Lookup(e.floors.Current())
	if err != nil {
		return nil, err
	}
	src := deck.NewSource(floorSeed(e.seed, e.floors.CurrentFloorIndex()))
	d, err := deck.Generate(def.Compose(e.rules.Composition), src)
	if err != nil {
		return nil, fmt.Errorf("game: floor %d: %w", e.floors.CurrentFloorIndex(), err)
	}
	return d, nil
}

// floorSeed derives the deck seed of floor k so a restored run regenerates
// the same later floors.
func floorSeed(seed int64, k int) int64 {
	return seed ^ (int64(k+1) * 1_000_003)
}

func (e *Engine) Rules() Rules               { return e.rules }
func (e *Engine) Seed() int64                { return e.seed }
func (e *Engine) Status() Status             { return e.status }
func (e *Engine) Busy() bool                 { return e.pending != nil }
func (e *Engine) Room() *Room                { return &e.room }
func (e *Engine) Player() *Player            { return e.player }
func (e *Engine) Discard() *DiscardPile      { return &e.discard }
func (e *Engine) Floors() *FloorManager      { return e.floors }
func (e *Engine) RanLastTurn() bool          { return e.ranLastTurn }
func (e *Engine) Started() bool              { return e.floors != nil }
func (e *Engine) Over() bool                 { return e.status != StatusPlaying }
func (e *Engine) SetSink(s Sink)             { WithSink(s)(e) }
func (e *Engine) SetLogger(l zerolog.Logger) { e.log = l }

func (e *Engine) DeckRemaining() int {
	if e.deck == nil {
		return 0
	}
	return e.deck.Remaining()
}

// DeckRecords returns the undrawn records, top first.
func (e *Engine) DeckRecords() []card.Record {
	if e.deck == nil {
		return nil
	}
	return e.deck.Records()
}

// PendingStep returns the step awaiting acknowledgment.
func (e *Engine) PendingStep() (Step, bool) {
	if e.pending == nil {
		return Step{}, false
	}
	return e.pending.step(), true
}

// CanRun reports whether RunFromRoom would be accepted right now.
func (e *Engine) CanRun() bool {
	return e.runBlocked() == ""
}

// Ack commits the current transition step. It reports false when nothing
// was pending.
func (e *Engine) Ack() bool {
	if e.pending == nil {
		return false
	}
	e.commit(e.pending.step())
	e.pending.Current++
	if e.pending.done() {
		e.pending = nil
		e.check()
		return true
	}
	e.emitStep()
	return true
}

// Settle acknowledges every step until the engine waits for player input.
func (e *Engine) Settle() int {
	n := 0
	for e.Ack() {
		n++
	}
	return n
}

// Tick re-runs room completion detection. It is a no-op while a transition
// is pending or once the run is over.
func (e *Engine) Tick() {
	e.check()
}

// StartNewRoom opens the next room, optionally carrying a card that is the
// only one left in the current room. It silently does nothing if the run is
// over, a transition is pending or the room holds other cards.
func (e *Engine) StartNewRoom(carry *card.Card) bool {
	if e.floors == nil || e.status != StatusPlaying || e.pending != nil {
		return false
	}
	for _, c := range e.room.cards {
		if c != carry {
			return false
		}
	}
	if carry != nil && e.room.Find(carry.ID) != carry {
		return false
	}
	if e.deck.Empty() {
		return false
	}
	e.floors.AdvanceRoom()
	e.startRoom(carry)
	return true
}

func (e *Engine) check() {
	if e.floors == nil || e.status != StatusPlaying || e.pending != nil || e.completing {
		return
	}
	switch {
	case e.room.Len() == 0:
		e.completing = true
		if !e.deck.Empty() {
			e.floors.AdvanceRoom()
			e.startRoom(nil)
			return
		}
		e.completeFloor()
	case e.room.Len() == 1 && !e.deck.Empty():
		e.completing = true
		e.floors.AdvanceRoom()
		e.startRoom(e.room.cards[0])
	}
}

func (e *Engine) startRoom(carry *card.Card) {
	e.nextOrder = 0
	if carry != nil {
		carry.FaceUp = true
		carry.Flipping = false
		carry.Order = 0
		e.nextOrder = 1
	}

	t := &Transition{Name: "room"}
	for e.room.Len() < e.rules.RoomCapacity {
		rec, ok := e.deck.Draw()
		if !ok {
			break
		}
		c := card.New(e.nextID, rec)
		e.nextID++
		c.Order = e.nextOrder
		e.nextOrder++
		e.move(c, card.ZoneRoom)
		t.add(StepFlip, c)
	}
	e.completing = false

	e.log.Info().
		Int("floor", e.floors.CurrentFloorIndex()).
		Int("room", e.floors.RoomCounter()).
		Bool("carry", carry != nil).
		Int("deck", e.deck.Remaining()).
		Msg("room started")
	e.emit(Event{Type: EventRoomStarted, Card: refOf(carry)})
	e.begin(t)
}

func (e *Engine) completeFloor() {
	if e.floors.IsLastFloor() {
		e.status = StatusVictory
		e.completing = false
		e.log.Info().Int("life", e.player.Life()).Msg("run won")
		e.emit(Event{Type: EventRunWon})
		return
	}
	next := e.floors.Floors()[e.floors.CurrentFloorIndex()+1]
	name := string(next)
	if def, err := deck.Lookup(next); err == nil {
		name = def.Name
	}
	text := fmt.Sprintf("Floor %d: %s", e.floors.CurrentFloorIndex()+2, name)
	e.begin(&Transition{Name: "floor", Steps: []Step{{Kind: StepFloor, Text: text}}})
}

func (e *Engine) nextFloor() {
	e.discard.reset()
	if !e.floors.NextFloor() {
		panic("game: floor transition past the last floor")
	}
	d, err := e.generate()
	if err != nil {
		// rules were validated against every floor type in New
		panic(err.Error())
	}
	e.deck = d
	e.completing = false
	e.log.Info().Int("floor", e.floors.CurrentFloorIndex()).Str("type", string(e.floors.Current())).Msg("floor entered")
	e.emit(Event{Type: EventFloorEntered, Text: e.floorName()})
}

func (e *Engine) floorName() string {
	if def, err := deck.Lookup(e.floors.Current()); err == nil {
		return def.Name
	}
	return string(e.floors.Current())
}

func (e *Engine) lose() {
	e.status = StatusDefeat
	e.pending = nil
	e.completing = false
	e.log.Info().
		Int("floor", e.floors.CurrentFloorIndex()).
		Int("room", e.floors.RoomCounter()).
		Msg("run lost")
	e.emit(Event{Type: EventRunLost})
}

func (e *Engine) begin(t *Transition) {
	if len(t.Steps) == 0 {
		e.check()
		return
	}
	e.pending = t
	e.emitStep()
}

func (e *Engine) emitStep() {
	s := e.pending.step()
	ev := Event{Type: s.Kind.event(), Card: refOf(s.Card), Text: s.Text, AwaitsAck: true}
	switch s.Kind {
	case StepFlip:
		s.Card.Flipping = true
	case StepFloor:
		ev.Delay = e.rules.FloorMessageSeconds
	}
	e.emit(ev)
}

func (e *Engine) commit(s Step) {
	switch s.Kind {
	case StepFlip:
		s.Card.FaceUp = true
		s.Card.Flipping = false
	case StepDiscard:
		e.move(s.Card, card.ZoneDiscard)
	case StepStack:
		e.move(s.Card, card.ZoneWeaponStack)
	case StepEquip:
		e.move(s.Card, card.ZoneWeapon)
	case StepStash:
		e.move(s.Card, card.ZoneInventory)
	case StepFloor:
		e.nextFloor()
	}
}

// move detaches c from its current collection and attaches it to the one
// named by to. Zone bookkeeping panics if the two ever disagree.
func (e *Engine) move(c *card.Card, to card.Zone) {
	from := c.Zone()
	switch from {
	case card.ZoneNone:
	case card.ZoneRoom:
		e.room.remove(c)
	case card.ZoneInventory:
		e.player.inv = removeCard(e.player.inv, c, "inventory")
	case card.ZoneWeapon:
		if e.player.weapon != c {
			panic(fmt.Sprintf("game: %s (#%d) is not the equipped weapon", c, c.ID))
		}
		e.player.weapon = nil
	case card.ZoneWeaponStack:
		e.player.defeated = removeCard(e.player.defeated, c, "weapon stack")
	case card.ZoneDiscard:
		panic(fmt.Sprintf("game: %s (#%d) cannot leave the discard pile", c, c.ID))
	}
	c.Transfer(from, to)

	switch to {
	case card.ZoneRoom:
		e.room.add(c)
	case card.ZoneDiscard:
		e.discard.cards = append(e.discard.cards, c)
	case card.ZoneInventory:
		if len(e.player.inv) >= e.player.invCap {
			panic("game: inventory over capacity")
		}
		e.player.inv = append(e.player.inv, c)
	case card.ZoneWeapon:
		if e.player.weapon != nil {
			panic("game: equipping over an existing weapon")
		}
		e.player.weapon = c
	case card.ZoneWeaponStack:
		e.player.defeated = append(e.player.defeated, c)
	}
}

func (e *Engine) emit(ev Event) {
	ev.Life = e.player.Life()
	if e.floors != nil {
		ev.Floor = e.floors.CurrentFloorIndex()
		ev.Room = e.floors.RoomCounter()
	}
	e.sink.OnEvent(ev)
}

func typeNames(ts []deck.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}
