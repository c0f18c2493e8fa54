package sim

import (
	"math/rand"

	"scoundrel/internal/card"
	"scoundrel/internal/game"
)

// Policy picks and performs one action on an idle engine.
type Policy interface {
	Name() string
	Act(e *game.Engine) game.Outcome
}

// cost is the damage a monster would deal with the equipped weapon, following
// the same durability rule the engine fights with.
func cost(p *game.Player, m *card.Card) int {
	w := p.Weapon()
	if w == nil {
		return m.Value()
	}
	if floor, ok := p.DurabilityFloor(); ok && floor <= m.Value() {
		return m.Value()
	}
	return max(0, m.Value()-w.Value())
}

// Greedy heals when it is worth it, upgrades weapons, fights the cheapest
// monster and runs from rooms it cannot survive.
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (Greedy) Act(e *game.Engine) game.Outcome {
	p := e.Player()
	room := e.Room().Cards()
	hurt := p.MaxLife() - p.Life()

	for i, c := range p.Inventory() {
		if c.Kind() == card.Potion && hurt >= c.Value() {
			return e.UseInventory(i)
		}
	}

	var threat int
	var cheapest, bestWeapon, potion *card.Card
	for _, c := range room {
		switch c.Kind() {
		case card.Monster:
			threat += cost(p, c)
			if cheapest == nil || cost(p, c) < cost(p, cheapest) {
				cheapest = c
			}
		case card.Weapon:
			if bestWeapon == nil || c.Value() > bestWeapon.Value() {
				bestWeapon = c
			}
		case card.Potion:
			if potion == nil || c.Value() > potion.Value() {
				potion = c
			}
		}
	}

	if e.CanRun() && threat >= p.Life() && potion == nil {
		return e.RunFromRoom()
	}
	if potion != nil && hurt >= potion.Value() {
		return e.Resolve(potion.ID, game.Intent{})
	}
	if bestWeapon != nil && upgrade(p, bestWeapon) {
		return e.Resolve(bestWeapon.ID, game.Intent{})
	}
	if cheapest != nil && cost(p, cheapest) < p.Life() {
		// Small monsters are not worth lowering the weapon's floor for.
		bare := p.Weapon() != nil && cheapest.Value() <= 3 && p.Life() > cheapest.Value()+5
		return e.Resolve(cheapest.ID, game.Intent{BareHanded: bare})
	}
	for _, c := range room {
		if c.Kind() != card.Monster && !p.InventoryFull() {
			return e.Stash(c.ID)
		}
	}
	if potion != nil {
		return e.Resolve(potion.ID, game.Intent{})
	}
	if bestWeapon != nil {
		return e.Resolve(bestWeapon.ID, game.Intent{})
	}
	return e.Resolve(room[0].ID, game.Intent{})
}

func upgrade(p *game.Player, w *card.Card) bool {
	cur := p.Weapon()
	if cur == nil {
		return true
	}
	if floor, ok := p.DurabilityFloor(); ok && floor <= 6 {
		return w.Value() >= 4
	}
	return w.Value() > cur.Value()
}

// Random picks uniformly among resolving, fighting bare handed, running,
// stashing and using the inventory, falling back to resolving the first
// card when the pick is refused.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (*Random) Name() string { return "random" }

func (r *Random) Act(e *game.Engine) game.Outcome {
	room := e.Room().Cards()
	c := room[r.rng.Intn(len(room))]

	var out game.Outcome
	switch r.rng.Intn(5) {
	case 0:
		out = e.RunFromRoom()
	case 1:
		out = e.Stash(c.ID)
	case 2:
		if n := len(e.Player().Inventory()); n > 0 {
			out = e.UseInventory(r.rng.Intn(n))
		}
	case 3:
		out = e.Resolve(c.ID, game.Intent{BareHanded: true})
	default:
		out = e.Resolve(c.ID, game.Intent{})
	}
	if out.OK() {
		return out
	}
	return e.Resolve(room[0].ID, game.Intent{})
}
