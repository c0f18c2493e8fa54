package deck

import (
	"scoundrel/internal/card"
)

// Deck is the ordered sequence of undrawn records for the current floor.
// Index 0 is the top.
type Deck struct {
	records []card.Record
}

// FromRecords builds a deck over a copy of recs, top first.
func FromRecords(recs []card.Record) *Deck {
	d := &Deck{records: make([]card.Record, len(recs))}
	copy(d.records, recs)
	return d
}

// Draw removes and returns the top record. ok is false when the deck is
// exhausted, which signals floor completion rather than an error.
func (d *Deck) Draw() (card.Record, bool) {
	if len(d.records) == 0 {
		return card.Record{}, false
	}
	top := d.records[0]
	d.records = d.records[1:]
	return top, true
}

// ReturnToBottom puts a record under the rest of the deck.
func (d *Deck) ReturnToBottom(r card.Record) {
	d.records = append(d.records, r)
}

func (d *Deck) Remaining() int { return len(d.records) }

func (d *Deck) Empty() bool { return len(d.records) == 0 }

// Records returns a copy of the undrawn records, top first.
func (d *Deck) Records() []card.Record {
	out := make([]card.Record, len(d.records))
	copy(out, d.records)
	return out
}

// Counts tallies the undrawn records by kind.
func (d *Deck) Counts() map[card.Kind]int {
	out := map[card.Kind]int{card.Monster: 0, card.Weapon: 0, card.Potion: 0}
	for _, r := range d.records {
		out[r.Kind()]++
	}
	return out
}
