package save

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scoundrel/internal/game"
)

var (
	ErrNotFound  = errors.New("save not found")
	ErrInvalidID = errors.New("invalid save id")
)

// Record is one persisted run. Rules travel with the snapshot so a reload
// plays under the rules the run was created with.
type Record struct {
	ID        string        `json:"id"`
	Seed      int64         `json:"seed"`
	Preset    string        `json:"preset"`
	Rules     game.Rules    `json:"rules"`
	Snapshot  game.Snapshot `json:"snapshot"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Summary is the listing form of a record.
type Summary struct {
	ID        string      `json:"id"`
	Preset    string      `json:"preset"`
	Status    game.Status `json:"status"`
	Floor     int         `json:"floor"`
	Room      int         `json:"room"`
	Life      int         `json:"life"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (r Record) Summary() Summary {
	return Summary{
		ID:        r.ID,
		Preset:    r.Preset,
		Status:    r.Snapshot.Status,
		Floor:     r.Snapshot.FloorIndex,
		Room:      r.Snapshot.RoomCounter,
		Life:      r.Snapshot.Life,
		UpdatedAt: r.UpdatedAt,
	}
}

// Repo stores run saves.
type Repo interface {
	Save(ctx context.Context, r Record) error
	Load(ctx context.Context, id string) (Record, error)
	// List returns summaries, most recently updated first.
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}

// ValidateID rejects anything that is not a UUID. File names are derived
// from ids, so this also keeps them inside the data directory.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return nil
}
