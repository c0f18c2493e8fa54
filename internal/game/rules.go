package game

import (
	"fmt"

	"scoundrel/internal/deck"
)

// Rules is the injected configuration of a run.
type Rules struct {
	Composition deck.Composition `yaml:"composition" toml:"composition" json:"composition"`

	MaxLife           int `yaml:"max_life" toml:"max_life" json:"max_life"`
	StartLife         int `yaml:"start_life" toml:"start_life" json:"start_life"`
	RoomCapacity      int `yaml:"room_capacity" toml:"room_capacity" json:"room_capacity"`
	InventoryCapacity int `yaml:"inventory_capacity" toml:"inventory_capacity" json:"inventory_capacity"`
	FloorCount        int `yaml:"floor_count" toml:"floor_count" json:"floor_count"`

	// How long the presentation layer should hold the floor banner.
	FloorMessageSeconds float64 `yaml:"floor_message_seconds" toml:"floor_message_seconds" json:"floor_message_seconds"`
}

// DefaultRules is a 20/20 life run of three floors with 4 card rooms.
func DefaultRules() Rules {
	return Rules{
		Composition:         deck.DefaultComposition(),
		MaxLife:             20,
		StartLife:           20,
		RoomCapacity:        4,
		InventoryCapacity:   2,
		FloorCount:          3,
		FloorMessageSeconds: 2,
	}
}

// Validate fails fast on rules that could never produce a playable run.
func (r Rules) Validate() error {
	if r.MaxLife <= 0 {
		return fmt.Errorf("rules: max life must be positive, got %d", r.MaxLife)
	}
	if r.StartLife < 0 || r.StartLife > r.MaxLife {
		return fmt.Errorf("rules: start life %d outside [0,%d]", r.StartLife, r.MaxLife)
	}
	if r.RoomCapacity < 2 {
		return fmt.Errorf("rules: room capacity must be at least 2, got %d", r.RoomCapacity)
	}
	if r.InventoryCapacity < 0 {
		return fmt.Errorf("rules: inventory capacity must not be negative")
	}
	if r.FloorCount < 1 {
		return fmt.Errorf("rules: floor count must be at least 1, got %d", r.FloorCount)
	}
	if r.FloorMessageSeconds < 0 {
		return fmt.Errorf("rules: floor message delay must not be negative")
	}
	if err := r.Composition.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if err := deck.ValidateAll(r.Composition); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

func (r Rules) startLife() int {
	if r.StartLife == 0 {
		return r.MaxLife
	}
	return r.StartLife
}
