package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period          string            `json:"period"`
	EventCounts     map[EventType]int `json:"event_counts"`
	Runs            int               `json:"runs"`
	Victories       int               `json:"victories"`
	Defeats         int               `json:"defeats"`
	WinRate         float64           `json:"win_rate"`
	RoomsEntered    int               `json:"rooms_entered"`
	RoomsFled       int               `json:"rooms_fled"`
	FloorsCleared   int               `json:"floors_cleared"`
	DamageTaken     int               `json:"damage_taken"`
	Healing         int               `json:"healing"`
	MonstersStacked int               `json:"monsters_stacked"`
	MonstersFought  int               `json:"monsters_fought"`
	WeaponsEquipped int               `json:"weapons_equipped"`
	DamagePerRoom   float64           `json:"damage_per_room"`
	DeathsByFloor   map[int]int       `json:"deaths_by_floor"`
}

// CalculateStats computes balance stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:        since.Format("2006-01-02"),
		EventCounts:   make(map[EventType]int),
		DeathsByFloor: make(map[int]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventRunStarted:
			stats.Runs++
		case EventRunWon:
			stats.Victories++
			// the final floor has no transition message
			stats.FloorsCleared++
		case EventRunLost:
			stats.Defeats++
			stats.DeathsByFloor[intField(metadata, "floor")]++
		case EventRoomEntered:
			stats.RoomsEntered++
		case EventRoomFled:
			stats.RoomsFled++
		case EventFloorCleared:
			stats.FloorsCleared++
		case EventDamageTaken:
			stats.DamageTaken += intField(metadata, "amount")
		case EventHealed:
			stats.Healing += intField(metadata, "amount")
		case EventMonsterStacked:
			stats.MonstersStacked++
		case EventMonsterFought:
			stats.MonstersFought++
		case EventWeaponEquipped:
			stats.WeaponsEquipped++
		}
	}

	if finished := stats.Victories + stats.Defeats; finished > 0 {
		stats.WinRate = float64(stats.Victories) / float64(finished)
	}
	if stats.RoomsEntered > 0 {
		stats.DamagePerRoom = float64(stats.DamageTaken) / float64(stats.RoomsEntered)
	}

	return stats, nil
}

// JSON numbers decode as float64.
func intField(md EventMetadata, key string) int {
	if v, ok := md[key].(float64); ok {
		return int(v)
	}
	return 0
}
