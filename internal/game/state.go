package game

import (
	"fmt"

	"scoundrel/internal/card"
)

// Room is the working set of cards presented to the player, in insertion
// order.
type Room struct {
	cards []*card.Card
}

func (r *Room) Len() int { return len(r.cards) }

// Cards returns the room cards in insertion order.
func (r *Room) Cards() []*card.Card {
	out := make([]*card.Card, len(r.cards))
	copy(out, r.cards)
	return out
}

// Find returns the room card with id, or nil.
func (r *Room) Find(id card.ID) *card.Card {
	for _, c := range r.cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// AllReady reports whether every card is face-up and not mid-flip.
func (r *Room) AllReady() bool {
	for _, c := range r.cards {
		if !c.Ready() {
			return false
		}
	}
	return true
}

func (r *Room) add(c *card.Card) {
	r.cards = append(r.cards, c)
}

func (r *Room) remove(c *card.Card) {
	r.cards = removeCard(r.cards, c, "room")
}

// Player holds life, the equipped weapon with its defeated stack and the
// reserve inventory.
type Player struct {
	life     int
	maxLife  int
	weapon   *card.Card
	defeated []*card.Card
	inv      []*card.Card
	invCap   int
}

func newPlayer(life, maxLife, invCap int) *Player {
	p := &Player{maxLife: maxLife, invCap: invCap}
	p.setLife(life)
	return p
}

func (p *Player) Life() int    { return p.life }
func (p *Player) MaxLife() int { return p.maxLife }
func (p *Player) Dead() bool   { return p.life == 0 }

// Heal adds n life, clamped to max, and returns the amount actually gained.
func (p *Player) Heal(n int) int {
	before := p.life
	p.setLife(p.life + n)
	return p.life - before
}

// Damage removes n life, floored at zero, and returns the amount actually lost.
// Negative damage never heals.
func (p *Player) Damage(n int) int {
	if n < 0 {
		n = 0
	}
	before := p.life
	p.setLife(p.life - n)
	return before - p.life
}

func (p *Player) setLife(v int) {
	if v < 0 {
		v = 0
	}
	if v > p.maxLife {
		v = p.maxLife
	}
	p.life = v
	if p.life < 0 || p.life > p.maxLife {
		panic(fmt.Sprintf("game: life %d outside [0,%d]", p.life, p.maxLife))
	}
}

// Weapon returns the equipped weapon, or nil when bare-handed.
func (p *Player) Weapon() *card.Card { return p.weapon }

// Defeated returns the monsters stacked on the current weapon, oldest first.
func (p *Player) Defeated() []*card.Card {
	out := make([]*card.Card, len(p.defeated))
	copy(out, p.defeated)
	return out
}

// LastDefeated is the most recent monster on the weapon, or nil.
func (p *Player) LastDefeated() *card.Card {
	if len(p.defeated) == 0 {
		return nil
	}
	return p.defeated[len(p.defeated)-1]
}

// DurabilityFloor is the value of the last monster the weapon killed. Later
// monsters must be strictly weaker to be fought with it. A fresh weapon has
// no floor and keeps its first kill whatever the monster's value.
func (p *Player) DurabilityFloor() (int, bool) {
	if p.weapon == nil {
		return 0, false
	}
	if last := p.LastDefeated(); last != nil {
		return last.Value(), true
	}
	return 0, false
}

func (p *Player) Inventory() []*card.Card {
	out := make([]*card.Card, len(p.inv))
	copy(out, p.inv)
	return out
}

func (p *Player) InventoryCapacity() int { return p.invCap }
func (p *Player) InventoryFull() bool    { return len(p.inv) >= p.invCap }

// DiscardPile is the terminal sink for resolved cards.
type DiscardPile struct {
	cards []*card.Card
}

func (d *DiscardPile) Len() int { return len(d.cards) }

func (d *DiscardPile) Cards() []*card.Card {
	out := make([]*card.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

func (d *DiscardPile) reset() { d.cards = nil }

func removeCard(cards []*card.Card, c *card.Card, where string) []*card.Card {
	for i, x := range cards {
		if x == c {
			return append(cards[:i], cards[i+1:]...)
		}
	}
	panic(fmt.Sprintf("game: %s (#%d) missing from %s", c, c.ID, where))
}
