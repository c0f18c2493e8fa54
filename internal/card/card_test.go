package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindIsDerivedFromSuit(t *testing.T) {
	assert.Equal(t, Weapon, Record{Suit: Diamonds, Value: 7}.Kind())
	assert.Equal(t, Potion, Record{Suit: Hearts, Value: 7}.Kind())
	assert.Equal(t, Monster, Record{Suit: Spades, Value: 7}.Kind())
	assert.Equal(t, Monster, Record{Suit: Clubs, Value: 7}.Kind())
}

func TestRecordValid(t *testing.T) {
	assert.True(t, Record{Suit: Clubs, Value: Ace}.Valid())
	assert.False(t, Record{Suit: Clubs, Value: 1}.Valid())
	assert.False(t, Record{Suit: Clubs, Value: 15}.Valid())
	assert.False(t, Record{Suit: "stars", Value: 5}.Valid())
}

func TestRecordString(t *testing.T) {
	assert.Equal(t, "Q♠", Record{Suit: Spades, Value: Queen}.String())
	assert.Equal(t, "7♦", Record{Suit: Diamonds, Value: 7}.String())
}

func TestParseSuit(t *testing.T) {
	s, err := ParseSuit("h")
	require.NoError(t, err)
	assert.Equal(t, Hearts, s)

	_, err = ParseSuit("x")
	assert.Error(t, err)
}

func TestTransferTracksZoneAndFlags(t *testing.T) {
	c := New(1, Record{Suit: Diamonds, Value: 5})
	c.Transfer(ZoneNone, ZoneRoom)
	c.Transfer(ZoneRoom, ZoneWeapon)
	assert.True(t, c.Equipped)
	c.Transfer(ZoneWeapon, ZoneDiscard)
	assert.False(t, c.Equipped)
	assert.Equal(t, ZoneDiscard, c.Zone())
}

func TestTransferFromWrongZonePanics(t *testing.T) {
	c := New(1, Record{Suit: Spades, Value: 5})
	c.Transfer(ZoneNone, ZoneRoom)
	assert.Panics(t, func() { c.Transfer(ZoneInventory, ZoneDiscard) })
}
