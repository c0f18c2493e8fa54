package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"scoundrel/internal/card"
	"scoundrel/internal/game"
	"scoundrel/internal/session"
)

const helpText = " [black:gold]←/→[-:-] select  [black:gold]enter[-:-] resolve  [black:gold]b[-:-] bare hands  [black:gold]s[-:-] stash  [black:gold]1-9[-:-] use slot  [black:gold]r[-:-] run  [black:gold]q[-:-] quit "

// stepDelay is how long each animated step stays on screen.
const stepDelay = 150 * time.Millisecond

type UI struct {
	app     *tview.Application
	room    *tview.TextView
	player  *tview.TextView
	status  *tview.TextView
	logView *tview.TextView

	m      *session.Manager
	s      *session.Session
	logger zerolog.Logger

	view     session.View
	selected int
	holdTill time.Time
}

// Run plays s in the terminal until the user quits or ctx is done.
func Run(ctx context.Context, m *session.Manager, s *session.Session, log zerolog.Logger) error {
	tview.Styles.PrimitiveBackgroundColor = tcell.ColorBlack
	tview.Styles.BorderColor = tcell.ColorGold
	tview.Styles.TitleColor = tcell.ColorGold
	tview.Styles.PrimaryTextColor = tcell.ColorWhite

	ui := &UI{app: tview.NewApplication(), m: m, s: s, logger: log, view: s.View()}
	ui.build()
	ui.refresh()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ui.animate(ctx)
	go func() {
		<-ctx.Done()
		ui.app.Stop()
	}()
	return ui.app.Run()
}

func (ui *UI) build() {
	ui.room = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	ui.room.SetBorder(true).SetTitle(" room ")
	ui.player = tview.NewTextView().SetDynamicColors(true)
	ui.player.SetBorder(true).SetTitle(" player ")
	ui.logView = tview.NewTextView().SetDynamicColors(true).SetMaxLines(200)
	ui.logView.SetBorder(true).SetTitle(" log ")
	ui.status = tview.NewTextView().SetDynamicColors(true)

	help := tview.NewTextView().SetDynamicColors(true).SetText(helpText)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.status, 1, 0, false).
		AddItem(ui.room, 5, 0, true).
		AddItem(ui.player, 6, 0, false).
		AddItem(ui.logView, 0, 1, false).
		AddItem(help, 1, 0, false)

	ui.app.SetRoot(root, true).SetInputCapture(ui.handleKey)
}

func (ui *UI) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
		ui.app.Stop()
		return nil
	}
	switch ev.Key() {
	case tcell.KeyLeft:
		ui.selected = clampSelection(ui.selected-1, len(ui.view.Room))
		ui.refresh()
		return nil
	case tcell.KeyRight:
		ui.selected = clampSelection(ui.selected+1, len(ui.view.Room))
		ui.refresh()
		return nil
	}
	cmd, args, ok := keyCommand(ev, ui.view, ui.selected)
	if !ok {
		return ev
	}
	ui.exec(cmd, args)
	return nil
}

// keyCommand maps a key press to a session command.
func keyCommand(ev *tcell.EventKey, v session.View, selected int) (string, map[string]any, bool) {
	var target map[string]any
	if selected >= 0 && selected < len(v.Room) {
		target = map[string]any{"card": float64(v.Room[selected].ID)}
	}
	if ev.Key() == tcell.KeyEnter {
		return "resolve", target, target != nil
	}
	if ev.Key() != tcell.KeyRune {
		return "", nil, false
	}
	switch r := ev.Rune(); {
	case r == 'b':
		return "bare", target, target != nil
	case r == 's':
		return "stash", target, target != nil
	case r == 'r':
		return "run", map[string]any{}, true
	case r >= '1' && r <= '9':
		return "use", map[string]any{"slot": float64(r - '1')}, true
	}
	return "", nil, false
}

func (ui *UI) exec(cmd string, args map[string]any) {
	res, err := ui.m.Execute(context.Background(), ui.s.ID, cmd, args)
	if err != nil {
		ui.logger.Warn().Err(err).Str("cmd", cmd).Msg("command failed")
		ui.logf("[red]%v[-]", err)
		return
	}
	ui.apply(res)
}

func (ui *UI) apply(res session.Result) {
	if res.Outcome != nil && !res.Outcome.OK() {
		ui.logf("[gray]%s[-]", res.Outcome.Reason)
	}
	for _, ev := range res.Events {
		if line := describe(ev); line != "" {
			ui.logf("%s", line)
		}
		if ev.Type == game.EventFloorTransitionMessage && ev.Delay > 0 {
			ui.holdTill = time.Now().Add(time.Duration(ev.Delay * float64(time.Second)))
		}
	}
	ui.view = res.View
	ui.selected = clampSelection(ui.selected, len(ui.view.Room))
	ui.refresh()
}

// animate acknowledges one pending step per tick so moves play out on
// screen. Floor messages hold for their delay.
func (ui *UI) animate(ctx context.Context) {
	t := time.NewTicker(stepDelay)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			ui.app.QueueUpdateDraw(func() {
				if !ui.view.Busy || time.Now().Before(ui.holdTill) {
					return
				}
				ui.exec("ack", nil)
			})
		}
	}
}

func (ui *UI) logf(format string, args ...any) {
	fmt.Fprintf(ui.logView, format+"\n", args...)
	ui.logView.ScrollToEnd()
}

func (ui *UI) refresh() {
	v := ui.view
	ui.status.SetText(statusLine(v))
	ui.room.SetText(roomText(v, ui.selected))
	ui.player.SetText(playerText(v))
}

func clampSelection(i, n int) int {
	if n == 0 {
		return 0
	}
	return max(0, min(i, n-1))
}

func statusLine(v session.View) string {
	s := fmt.Sprintf(" [gold]%s[-]  floor %d/%d  room %d  deck %d  discard %d",
		v.FloorName, v.Floor, v.FloorCount, v.RoomNumber, v.DeckRemaining, v.DiscardCount)
	switch v.Status {
	case game.StatusVictory:
		s += "  [green]VICTORY[-]"
	case game.StatusDefeat:
		s += "  [red]DEFEAT[-]"
	}
	if !v.CanRun && v.RanLastTurn {
		s += "  [gray](ran last turn)[-]"
	}
	return s
}

func roomText(v session.View, selected int) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, c := range v.Room {
		label := cardLabel(c)
		if i == selected {
			label = "[::r]" + label + "[::-]"
		}
		fmt.Fprintf(&b, " %s ", label)
	}
	return b.String()
}

func playerText(v session.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, " life %s\n", lifeBar(v.Life, v.MaxLife))
	weapon := "-"
	if v.Weapon != nil {
		weapon = cardLabel(*v.Weapon)
	}
	fmt.Fprintf(&b, " weapon %s", weapon)
	if len(v.Defeated) > 0 {
		labels := make([]string, len(v.Defeated))
		for i, c := range v.Defeated {
			labels[i] = cardLabel(c)
		}
		fmt.Fprintf(&b, "  stack %s  (below %d)", strings.Join(labels, " "), v.DurabilityFloor)
	}
	b.WriteString("\n inventory")
	for i := 0; i < v.InventoryCapacity; i++ {
		if i < len(v.Inventory) {
			fmt.Fprintf(&b, "  %d:%s", i+1, cardLabel(v.Inventory[i]))
		} else {
			fmt.Fprintf(&b, "  %d:-", i+1)
		}
	}
	return b.String()
}

func lifeBar(life, maxLife int) string {
	color := "green"
	switch {
	case life*4 <= maxLife:
		color = "red"
	case life*2 <= maxLife:
		color = "yellow"
	}
	return fmt.Sprintf("[%s]%s[-]%s %d/%d", color, strings.Repeat("█", life), strings.Repeat("░", maxLife-life), life, maxLife)
}

func cardLabel(c session.CardView) string {
	if !c.FaceUp {
		return "[gray]??[-]"
	}
	switch c.Suit {
	case card.Hearts, card.Diamonds:
		return "[red]" + c.Label + "[-]"
	}
	return c.Label
}

func describe(ev game.Event) string {
	label := ""
	if ev.Card != nil {
		label = ev.Card.Record.String()
	}
	switch ev.Type {
	case game.EventHealthChanged:
		if ev.Delta < 0 {
			return fmt.Sprintf("[red]took %d damage[-]", -ev.Delta)
		}
		return fmt.Sprintf("[green]healed %d[-]", ev.Delta)
	case game.EventCardEquipped:
		return "equipped " + label
	case game.EventCardStacked:
		return "slew " + label
	case game.EventCardStashed:
		return "stashed " + label
	case game.EventFloorTransitionMessage:
		return "[gold]" + ev.Text + "[-]"
	case game.EventRunFled:
		return "fled the room"
	case game.EventRunWon:
		return "[green]the dungeon is cleared[-]"
	case game.EventRunLost:
		return "[red]you died[-]"
	}
	return ""
}
