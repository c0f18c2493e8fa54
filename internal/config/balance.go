package config

import (
	"fmt"

	"scoundrel/internal/game"
)

const (
	PresetDefault = "default"
	PresetCasual  = "casual"
	PresetHard    = "hard"
)

// DefaultRules returns the standard rules: 20 life, rooms of 4, two
// inventory slots and three floors.
func DefaultRules() game.Rules {
	return game.DefaultRules()
}

// Casual returns easier rules for casual difficulty
func Casual() game.Rules {
	r := DefaultRules()
	r.MaxLife = 25
	r.StartLife = 25
	r.InventoryCapacity = 3
	r.Composition.MonsterMax = 20
	return r
}

// Hard returns harder rules for experienced players
func Hard() game.Rules {
	r := DefaultRules()
	r.MaxLife = 15
	r.StartLife = 15
	r.InventoryCapacity = 1
	r.FloorCount = 4
	r.Composition.MonsterMin = 18
	return r
}

// Preset returns the rules for a named difficulty.
func Preset(name string) (game.Rules, error) {
	switch name {
	case PresetDefault, "":
		return DefaultRules(), nil
	case PresetCasual:
		return Casual(), nil
	case PresetHard:
		return Hard(), nil
	}
	return game.Rules{}, fmt.Errorf("config: unknown preset %q", name)
}

// Presets lists the preset names in display order.
func Presets() []string {
	return []string{PresetDefault, PresetCasual, PresetHard}
}
