package game

import "scoundrel/internal/deck"

// FloorManager sequences the floors of a run. The floor index only ever
// moves forward.
type FloorManager struct {
	floors []deck.Type
	index  int
	rooms  int
}

func NewFloorManager(floors []deck.Type) *FloorManager {
	f := &FloorManager{floors: make([]deck.Type, len(floors))}
	copy(f.floors, floors)
	return f
}

func (f *FloorManager) Floors() []deck.Type {
	out := make([]deck.Type, len(f.floors))
	copy(out, f.floors)
	return out
}

func (f *FloorManager) Count() int             { return len(f.floors) }
func (f *FloorManager) CurrentFloorIndex() int { return f.index }
func (f *FloorManager) RoomCounter() int       { return f.rooms }
func (f *FloorManager) Current() deck.Type     { return f.floors[f.index] }

func (f *FloorManager) IsLastFloor() bool {
	return f.index >= len(f.floors)-1
}

// AdvanceRoom bumps the per-floor room counter and returns it.
func (f *FloorManager) AdvanceRoom() int {
	f.rooms++
	return f.rooms
}

// NextFloor moves to the next floor and resets the room counter. It returns
// false, without moving, when the current floor is the last.
func (f *FloorManager) NextFloor() bool {
	if f.IsLastFloor() {
		return false
	}
	f.index++
	f.rooms = 0
	return true
}
