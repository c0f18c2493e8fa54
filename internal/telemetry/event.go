package telemetry

import "time"

type EventType string

const (
	EventRunStarted     EventType = "run_started"
	EventRunWon         EventType = "run_won"
	EventRunLost        EventType = "run_lost"
	EventRoomEntered    EventType = "room_entered"
	EventRoomFled       EventType = "room_fled"
	EventFloorCleared   EventType = "floor_cleared"
	EventDamageTaken    EventType = "damage_taken"
	EventHealed         EventType = "healed"
	EventMonsterStacked EventType = "monster_stacked"
	EventMonsterFought  EventType = "monster_fought"
	EventWeaponEquipped EventType = "weapon_equipped"
	EventWeaponRetired  EventType = "weapon_retired"
	EventCardStashed    EventType = "card_stashed"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Run       string    `json:"run,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}

// Query selects events. Zero fields match everything.
type Query struct {
	Since time.Time
	Types []EventType
	Run   string
}

func (q Query) match(ev Event) bool {
	if ev.Timestamp.Before(q.Since) {
		return false
	}
	if q.Run != "" && ev.Run != q.Run {
		return false
	}
	if len(q.Types) == 0 {
		return true
	}
	for _, t := range q.Types {
		if ev.Type == t {
			return true
		}
	}
	return false
}

// runOf is the run id an event's metadata belongs to, if any.
func runOf(md EventMetadata) string {
	run, _ := md["run"].(string)
	return run
}
