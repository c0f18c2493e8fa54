package deck

import "fmt"

// Type tags a floor. Each type tweaks the base composition.
type Type string

const (
	TypeCrypt     Type = "crypt"
	TypeCatacombs Type = "catacombs"
	TypeWarren    Type = "warren"
	TypeSanctum   Type = "sanctum"
)

type Definition struct {
	Type        Type
	Name        string
	Description string
	// Zero keeps the base value.
	MonsterMin int
	MonsterMax int
	// Weapons and potions are capped at this value when non-zero.
	SupplyMaxValue int
}

var Definitions = map[Type]Definition{
	TypeCrypt: {
		Type:        TypeCrypt,
		Name:        "The Crypt",
		Description: "Damp stone and shallow graves",
	},
	TypeCatacombs: {
		Type:        TypeCatacombs,
		Name:        "The Catacombs",
		Description: "Bone-lined tunnels",
		MonsterMin:  17,
	},
	TypeWarren: {
		Type:           TypeWarren,
		Name:           "The Warren",
		Description:    "Cramped and crawling",
		MonsterMin:     18,
		SupplyMaxValue: 9,
	},
	TypeSanctum: {
		Type:        TypeSanctum,
		Name:        "The Sanctum",
		Description: "Final floor",
		MonsterMin:  20,
		MonsterMax:  24,
	},
}

// regular floors are drawn from these; the sanctum always closes a run
var regular = []Type{TypeCrypt, TypeCatacombs, TypeWarren}

// Compose applies the definition to a base composition, clamped so the
// result stays inside the base monster range.
func (d Definition) Compose(base Composition) Composition {
	c := base
	c.Monster.Suits = append(c.Monster.Suits[:0:0], base.Monster.Suits...)
	c.Weapon.Suits = append(c.Weapon.Suits[:0:0], base.Weapon.Suits...)
	c.Potion.Suits = append(c.Potion.Suits[:0:0], base.Potion.Suits...)

	if d.MonsterMin > 0 && d.MonsterMin > c.MonsterMin && d.MonsterMin <= c.MonsterMax {
		c.MonsterMin = d.MonsterMin
	}
	if d.MonsterMax > 0 && d.MonsterMax < c.MonsterMax && d.MonsterMax >= c.MonsterMin {
		c.MonsterMax = d.MonsterMax
	}
	if d.SupplyMaxValue > 0 {
		if d.SupplyMaxValue < c.Weapon.MaxValue && d.SupplyMaxValue >= c.Weapon.MinValue {
			c.Weapon.MaxValue = d.SupplyMaxValue
		}
		if d.SupplyMaxValue < c.Potion.MaxValue && d.SupplyMaxValue >= c.Potion.MinValue {
			c.Potion.MaxValue = d.SupplyMaxValue
		}
	}
	return c
}

// Lookup returns the definition for t.
func Lookup(t Type) (Definition, error) {
	d, ok := Definitions[t]
	if !ok {
		return Definition{}, fmt.Errorf("unknown floor type %q", t)
	}
	return d, nil
}

// Plan rolls the floor sequence for a run. The last floor is always the
// sanctum.
func Plan(count int, src Source) []Type {
	if count <= 0 {
		return nil
	}
	floors := make([]Type, count)
	for i := 0; i < count-1; i++ {
		floors[i] = regular[src.Intn(len(regular))]
	}
	floors[count-1] = TypeSanctum
	return floors
}

// ValidateAll checks every floor type against the base composition.
func ValidateAll(base Composition) error {
	for t, d := range Definitions {
		if err := d.Compose(base).Validate(); err != nil {
			return fmt.Errorf("floor %s: %w", t, err)
		}
	}
	return nil
}
