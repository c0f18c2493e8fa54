package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"

	"scoundrel/internal/card"
	"scoundrel/internal/game"
	"scoundrel/internal/session"
)

func viewForTest() session.View {
	return session.View{
		Status:            game.StatusPlaying,
		Life:              12,
		MaxLife:           20,
		InventoryCapacity: 2,
		Room: []session.CardView{
			{ID: 4, Suit: card.Hearts, Value: 5, Label: "5♥", FaceUp: true},
			{ID: 9, Label: "??"},
		},
		Inventory: []session.CardView{{ID: 2, Suit: card.Diamonds, Value: 7, Label: "7♦", FaceUp: true}},
	}
}

func TestKeyCommand(t *testing.T) {
	v := viewForTest()
	tests := []struct {
		name string
		ev   *tcell.EventKey
		sel  int
		cmd  string
		args map[string]any
		ok   bool
	}{
		{"enter resolves selection", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), 1, "resolve", map[string]any{"card": float64(9)}, true},
		{"bare", tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModNone), 0, "bare", map[string]any{"card": float64(4)}, true},
		{"stash", tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone), 0, "stash", map[string]any{"card": float64(4)}, true},
		{"run", tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), 0, "run", map[string]any{}, true},
		{"use slot", tcell.NewEventKey(tcell.KeyRune, '2', tcell.ModNone), 0, "use", map[string]any{"slot": float64(1)}, true},
		{"nothing selected", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), 5, "resolve", nil, false},
		{"unbound", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), 0, "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := keyCommand(tt.ev, v, tt.sel)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.cmd, cmd)
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestRendering(t *testing.T) {
	v := viewForTest()

	room := roomText(v, 0)
	assert.Contains(t, room, "[::r][red]5♥[-][::-]")
	assert.Contains(t, room, "[gray]??[-]")

	p := playerText(v)
	assert.Contains(t, p, "12/20")
	assert.Contains(t, p, "1:[red]7♦[-]")
	assert.Contains(t, p, "2:-")

	assert.Contains(t, lifeBar(4, 20), "[red]")
	assert.Contains(t, lifeBar(10, 20), "[yellow]")
	assert.Contains(t, lifeBar(20, 20), "[green]")

	v.Status = game.StatusDefeat
	assert.Contains(t, statusLine(v), "DEFEAT")

	assert.Equal(t, 0, clampSelection(3, 0))
	assert.Equal(t, 1, clampSelection(3, 2))
	assert.Equal(t, 0, clampSelection(-1, 2))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "[red]took 3 damage[-]", describe(game.Event{Type: game.EventHealthChanged, Delta: -3}))
	assert.Equal(t, "[green]healed 2[-]", describe(game.Event{Type: game.EventHealthChanged, Delta: 2}))
	assert.Equal(t, "equipped 7♦", describe(game.Event{
		Type: game.EventCardEquipped,
		Card: &game.CardRef{Record: card.Record{Suit: card.Diamonds, Value: 7}},
	}))
	assert.Empty(t, describe(game.Event{Type: game.EventCardFlipRequested}))
}
