package card

import "fmt"

// ID identifies a card instance for the lifetime of a run.
type ID int

// Zone is the collection a card currently belongs to.
type Zone string

const (
	ZoneNone        Zone = ""
	ZoneRoom        Zone = "room"
	ZoneDiscard     Zone = "discard"
	ZoneInventory   Zone = "inventory"
	ZoneWeapon      Zone = "weapon"
	ZoneWeaponStack Zone = "weapon_stack"
)

// Card is a record instantiated into play. FaceUp and Flipping are driven by
// the presentation layer; the engine only reads them as gates.
type Card struct {
	ID       ID     `json:"id"`
	Record   Record `json:"record"`
	FaceUp   bool   `json:"face_up"`
	Flipping bool   `json:"flipping"`
	Equipped bool   `json:"equipped"`
	Defeated bool   `json:"defeated"`
	Order    int    `json:"order"`

	zone Zone
}

// New creates a face-down card outside of any collection.
func New(id ID, rec Record) *Card {
	if !rec.Valid() {
		panic(fmt.Sprintf("card: invalid record %+v", rec))
	}
	return &Card{ID: id, Record: rec}
}

func (c *Card) Kind() Kind  { return c.Record.Kind() }
func (c *Card) Value() int  { return c.Record.Value }
func (c *Card) Zone() Zone  { return c.zone }
func (c *Card) Ready() bool { return c.FaceUp && !c.Flipping }

func (c *Card) String() string { return c.Record.String() }

// Transfer moves the card from one zone to another. A card found anywhere
// other than from is in two collections at once, which is a programmer error.
func (c *Card) Transfer(from, to Zone) {
	if c.zone != from {
		panic(fmt.Sprintf("card: %s (#%d) expected in %q, found in %q", c, c.ID, from, c.zone))
	}
	c.zone = to
	c.Equipped = to == ZoneWeapon
	c.Defeated = to == ZoneWeaponStack
}
