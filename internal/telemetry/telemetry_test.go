package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoundrel/internal/card"
	"scoundrel/internal/game"
	"scoundrel/internal/save"
)

func ref(id int, s card.Suit, v int, z card.Zone) *game.CardRef {
	return &game.CardRef{ID: card.ID(id), Record: card.Record{Suit: s, Value: v}, Zone: z}
}

func feed(o *Observer) {
	o.OnEvent(game.Event{Type: game.EventRoomStarted, Floor: 0, Room: 1})
	o.OnEvent(game.Event{Type: game.EventCardEquipped, Card: ref(1, card.Diamonds, 7, card.ZoneRoom)})
	o.OnEvent(game.Event{Type: game.EventCardStacked, Card: ref(2, card.Spades, 5, card.ZoneRoom)})
	o.OnEvent(game.Event{Type: game.EventHealthChanged, Card: ref(3, card.Spades, 9, card.ZoneRoom), Delta: -9, Life: 11})
	o.OnEvent(game.Event{Type: game.EventCardMovedToDiscard, Card: ref(3, card.Spades, 9, card.ZoneRoom)})
	o.OnEvent(game.Event{Type: game.EventHealthChanged, Card: ref(4, card.Hearts, 4, card.ZoneRoom), Delta: 4, Life: 15})
	o.OnEvent(game.Event{Type: game.EventCardMovedToDiscard, Card: ref(4, card.Hearts, 4, card.ZoneRoom)})
	o.OnEvent(game.Event{Type: game.EventCardMovedToDiscard, Card: ref(2, card.Spades, 5, card.ZoneWeaponStack)})
	o.OnEvent(game.Event{Type: game.EventRunFled, Room: 2})
	o.OnEvent(game.Event{Type: game.EventFloorTransitionMessage, Text: "Floor 2"})
	o.OnEvent(game.Event{Type: game.EventRunLost, Floor: 1})
}

func checkStats(t *testing.T, repo Repository) {
	t.Helper()
	require.NoError(t, repo.RecordEvent(EventRunStarted, EventMetadata{"run": "r1"}))
	feed(NewObserver(repo, "r1", zerolog.Nop()))

	events, err := repo.Events(Query{})
	require.NoError(t, err)
	stats, err := CalculateStats(events, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 1, stats.Defeats)
	assert.Equal(t, 0.0, stats.WinRate)
	assert.Equal(t, 1, stats.RoomsEntered)
	assert.Equal(t, 1, stats.RoomsFled)
	assert.Equal(t, 1, stats.FloorsCleared)
	assert.Equal(t, 9, stats.DamageTaken)
	assert.Equal(t, 4, stats.Healing)
	assert.Equal(t, 1, stats.MonstersStacked)
	assert.Equal(t, 1, stats.MonstersFought)
	assert.Equal(t, 1, stats.WeaponsEquipped)
	assert.Equal(t, 1, stats.EventCounts[EventWeaponRetired])
	assert.Equal(t, 1, stats.DeathsByFloor[1])
	assert.Equal(t, 9.0, stats.DamagePerRoom)

	mine, err := repo.Events(Query{Run: "r1"})
	require.NoError(t, err)
	assert.Len(t, mine, len(events))
	for _, ev := range mine {
		assert.Equal(t, "r1", ev.Run)
	}
	require.NoError(t, repo.RecordEvent(EventRunStarted, EventMetadata{"run": "r2"}))
	other, err := repo.Events(Query{Run: "r2", Types: []EventType{EventRunStarted}})
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "r2", other[0].Run)

	only, err := repo.Events(Query{Types: []EventType{EventDamageTaken, EventHealed}})
	require.NoError(t, err)
	assert.Len(t, only, 2)

	require.NoError(t, repo.Clear())
	events, err = repo.Events(Query{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestObserverAndStats_Memory(t *testing.T) {
	checkStats(t, NewMemoryRepository())
}

func TestObserverAndStats_SQL(t *testing.T) {
	db, err := save.Open(save.DefaultDBConfig(filepath.Join(t.TempDir(), "t.db")))
	require.NoError(t, err)
	defer db.Close()

	checkStats(t, NewSQLRepository(db.Conn()))
}

func TestEvents_FiltersBySince(t *testing.T) {
	repo := NewMemoryRepository()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.RecordEvent(EventRunStarted, nil))
	now = now.Add(time.Hour)
	require.NoError(t, repo.RecordEvent(EventRunWon, nil))

	events, err := repo.Events(Query{Since: now.Add(-time.Minute)})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventRunWon, events[0].Type)
}

func TestCalculateStats_WinRate(t *testing.T) {
	events := []Event{
		{Type: EventRunWon, Metadata: "{}"},
		{Type: EventRunWon, Metadata: "{}"},
		{Type: EventRunLost, Metadata: `{"floor":2}`},
		{Type: EventRunLost, Metadata: "not json"},
	}
	stats, err := CalculateStats(events, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Victories)
	assert.Equal(t, 1, stats.Defeats)
	assert.InDelta(t, 2.0/3.0, stats.WinRate, 1e-9)
	assert.Equal(t, 2, stats.FloorsCleared)
	assert.Equal(t, 4, stats.EventCounts[EventRunWon]+stats.EventCounts[EventRunLost])
}
