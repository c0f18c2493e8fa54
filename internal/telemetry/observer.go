package telemetry

import (
	"github.com/rs/zerolog"

	"scoundrel/internal/card"
	"scoundrel/internal/game"
)

// Observer turns engine events of one run into telemetry events. It is a
// game.Sink.
type Observer struct {
	repo Repository
	run  string
	log  zerolog.Logger
}

func NewObserver(repo Repository, run string, log zerolog.Logger) *Observer {
	return &Observer{repo: repo, run: run, log: log}
}

func (o *Observer) OnEvent(ev game.Event) {
	t, ok := classify(ev)
	if !ok {
		return
	}
	md := EventMetadata{
		"run":   o.run,
		"floor": ev.Floor,
		"room":  ev.Room,
		"life":  ev.Life,
	}
	if ev.Card != nil {
		md["card"] = ev.Card.Record.String()
		md["value"] = ev.Card.Record.Value
	}
	switch t {
	case EventDamageTaken:
		md["amount"] = -ev.Delta
	case EventHealed:
		md["amount"] = ev.Delta
	}
	if err := o.repo.RecordEvent(t, md); err != nil {
		o.log.Warn().Err(err).Str("event", string(t)).Msg("telemetry record failed")
	}
}

func classify(ev game.Event) (EventType, bool) {
	switch ev.Type {
	case game.EventHealthChanged:
		if ev.Delta < 0 {
			return EventDamageTaken, true
		}
		return EventHealed, true
	case game.EventCardStacked:
		return EventMonsterStacked, true
	case game.EventCardMovedToDiscard:
		if ev.Card == nil || ev.Card.Record.Kind() != card.Monster {
			return "", false
		}
		if ev.Card.Zone == card.ZoneWeaponStack {
			return EventWeaponRetired, true
		}
		return EventMonsterFought, true
	case game.EventCardEquipped:
		return EventWeaponEquipped, true
	case game.EventCardStashed:
		return EventCardStashed, true
	case game.EventRoomStarted:
		return EventRoomEntered, true
	case game.EventRunFled:
		return EventRoomFled, true
	case game.EventFloorTransitionMessage:
		return EventFloorCleared, true
	case game.EventRunWon:
		return EventRunWon, true
	case game.EventRunLost:
		return EventRunLost, true
	}
	return "", false
}
