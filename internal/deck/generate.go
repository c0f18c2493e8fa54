package deck

import (
	"errors"
	"fmt"
	"math/rand"

	"scoundrel/internal/card"
)

// ErrUnsatisfiable means a composition can never be filled under its
// duplicate cap. It is a startup configuration error.
var ErrUnsatisfiable = errors.New("deck composition unsatisfiable")

// Source is the randomness provider for deck generation.
type Source interface {
	// Intn returns a non-negative random int in [0, n). n > 0.
	Intn(n int) int
}

// NewSource returns a deterministic source for seed.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Pool is the set of (suit, value) pairs one card kind is sampled from.
type Pool struct {
	Suits    []card.Suit `yaml:"suits" toml:"suits" json:"suits"`
	MinValue int         `yaml:"min_value" toml:"min_value" json:"min_value"`
	MaxValue int         `yaml:"max_value" toml:"max_value" json:"max_value"`
}

// Slots is the number of distinct (suit, value) pairs in the pool.
func (p Pool) Slots() int {
	if p.MaxValue < p.MinValue {
		return 0
	}
	return len(p.Suits) * (p.MaxValue - p.MinValue + 1)
}

// Composition describes how a floor deck is built.
type Composition struct {
	Total         int  `yaml:"total" toml:"total" json:"total"`
	MonsterMin    int  `yaml:"monster_min" toml:"monster_min" json:"monster_min"`
	MonsterMax    int  `yaml:"monster_max" toml:"monster_max" json:"monster_max"`
	MaxDuplicates int  `yaml:"max_duplicates" toml:"max_duplicates" json:"max_duplicates"`
	Monster       Pool `yaml:"monster" toml:"monster" json:"monster"`
	Weapon        Pool `yaml:"weapon" toml:"weapon" json:"weapon"`
	Potion        Pool `yaml:"potion" toml:"potion" json:"potion"`
}

// DefaultComposition is the standard 44 card floor.
func DefaultComposition() Composition {
	return Composition{
		Total:         44,
		MonsterMin:    16,
		MonsterMax:    24,
		MaxDuplicates: 4,
		Monster:       Pool{Suits: []card.Suit{card.Spades, card.Clubs}, MinValue: 2, MaxValue: 14},
		Weapon:        Pool{Suits: []card.Suit{card.Diamonds}, MinValue: 2, MaxValue: 10},
		Potion:        Pool{Suits: []card.Suit{card.Hearts}, MinValue: 2, MaxValue: 10},
	}
}

// split returns the monster and per-kind weapon/potion counts for a rolled
// monster count. An odd remainder adds one monster so weapons and potions
// stay equal; the slight lean toward monsters is intentional.
func (c Composition) split(monsters int) (int, int) {
	if (c.Total-monsters)%2 != 0 {
		monsters++
	}
	return monsters, (c.Total - monsters) / 2
}

// Validate checks the composition can always be filled. The duplicate cap
// applies per (suit, value) pair.
func (c Composition) Validate() error {
	if c.Total <= 0 {
		return fmt.Errorf("%w: total must be positive, got %d", ErrUnsatisfiable, c.Total)
	}
	if c.MonsterMin < 0 || c.MonsterMin > c.MonsterMax {
		return fmt.Errorf("%w: monster range [%d,%d]", ErrUnsatisfiable, c.MonsterMin, c.MonsterMax)
	}
	if c.MaxDuplicates <= 0 {
		return fmt.Errorf("%w: max duplicates must be positive", ErrUnsatisfiable)
	}
	for name, p := range map[string]Pool{"monster": c.Monster, "weapon": c.Weapon, "potion": c.Potion} {
		if p.MinValue < card.MinValue || p.MaxValue > card.MaxValue || p.Slots() == 0 {
			return fmt.Errorf("%w: %s pool values [%d,%d]", ErrUnsatisfiable, name, p.MinValue, p.MaxValue)
		}
	}
	if err := checkSuits("monster", c.Monster, card.Monster); err != nil {
		return err
	}
	if err := checkSuits("weapon", c.Weapon, card.Weapon); err != nil {
		return err
	}
	if err := checkSuits("potion", c.Potion, card.Potion); err != nil {
		return err
	}

	maxMonsters, _ := c.split(c.MonsterMax)
	_, maxOthers := c.split(c.MonsterMin)
	if maxMonsters > c.Total {
		return fmt.Errorf("%w: %d monsters exceed total %d", ErrUnsatisfiable, maxMonsters, c.Total)
	}
	if need, have := maxMonsters, c.Monster.Slots()*c.MaxDuplicates; need > have {
		return fmt.Errorf("%w: monster pool holds %d cards, need %d", ErrUnsatisfiable, have, need)
	}
	if need, have := maxOthers, c.Weapon.Slots()*c.MaxDuplicates; need > have {
		return fmt.Errorf("%w: weapon pool holds %d cards, need %d", ErrUnsatisfiable, have, need)
	}
	if need, have := maxOthers, c.Potion.Slots()*c.MaxDuplicates; need > have {
		return fmt.Errorf("%w: potion pool holds %d cards, need %d", ErrUnsatisfiable, have, need)
	}
	return nil
}

func checkSuits(name string, p Pool, want card.Kind) error {
	if len(p.Suits) == 0 {
		return fmt.Errorf("%w: %s pool has no suits", ErrUnsatisfiable, name)
	}
	for _, s := range p.Suits {
		if card.KindOf(s) != want {
			return fmt.Errorf("%w: suit %s cannot be in the %s pool", ErrUnsatisfiable, s, name)
		}
	}
	return nil
}

// Generate builds a shuffled floor deck. The composition is validated first
// so resampling below always terminates.
func Generate(c Composition, src Source) (*Deck, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rolled := c.MonsterMin + src.Intn(c.MonsterMax-c.MonsterMin+1)
	monsters, others := c.split(rolled)

	seen := make(map[card.Record]int, c.Total)
	recs := make([]card.Record, 0, c.Total)
	recs = fill(recs, c.Monster, monsters, c.MaxDuplicates, seen, src)
	recs = fill(recs, c.Weapon, others, c.MaxDuplicates, seen, src)
	recs = fill(recs, c.Potion, others, c.MaxDuplicates, seen, src)

	for i := len(recs) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		recs[i], recs[j] = recs[j], recs[i]
	}
	return &Deck{records: recs}, nil
}

func fill(recs []card.Record, p Pool, n, maxDup int, seen map[card.Record]int, src Source) []card.Record {
	span := p.MaxValue - p.MinValue + 1
	for added := 0; added < n; {
		r := card.Record{
			Suit:  p.Suits[src.Intn(len(p.Suits))],
			Value: p.MinValue + src.Intn(span),
		}
		if seen[r] >= maxDup {
			continue
		}
		seen[r]++
		recs = append(recs, r)
		added++
	}
	return recs
}
