package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/spacecoco/internal/sim"
)

// FrameInterval is the terminal tick, roughly 60 frames per second.
const FrameInterval = 16 * time.Millisecond

// Host runs one simulation in a terminal.
type Host struct {
	screen   tcell.Screen
	sm       *sim.Sim
	loop     *sim.Loop
	surface  *Surface
	notifier sim.Notifier
	simLog   *sim.SimLog

	// OnGameOver runs once per finished session, on the loop goroutine.
	OnGameOver func(sm *sim.Sim)
}

// NewHost wires sm to screen. notifier may be nil. Direction taps latch
// steering on continuous worlds.
func NewHost(screen tcell.Screen, sm *sim.Sim, notifier sim.Notifier) *Host {
	sm.Input().SetSticky(true)
	return &Host{
		screen:   screen,
		sm:       sm,
		loop:     sim.NewLoop(sm),
		surface:  NewSurface(screen),
		notifier: notifier,
		simLog:   sim.NewSimLog(false),
	}
}

// Loop exposes the frame driver.
func (h *Host) Loop() *sim.Loop { return h.loop }

// Log is the session history recorded from drained events.
func (h *Host) Log() *sim.SimLog { return h.simLog }

// runeKeys maps letter keys; arrows are handled separately.
var runeKeys = map[rune]sim.Key{
	'w': sim.KeyUp, 'a': sim.KeyLeft, 's': sim.KeyDown, 'd': sim.KeyRight,
	'W': sim.KeyUp, 'A': sim.KeyLeft, 'S': sim.KeyDown, 'D': sim.KeyRight,
	'b': sim.KeyBrake, ' ': sim.KeyShake, 'p': sim.KeyPause, 'r': sim.KeyRestart,
}

var specialKeys = map[tcell.Key]sim.Key{
	tcell.KeyUp:    sim.KeyUp,
	tcell.KeyDown:  sim.KeyDown,
	tcell.KeyLeft:  sim.KeyLeft,
	tcell.KeyRight: sim.KeyRight,
	tcell.KeyEnter: sim.KeyRestart,
}

// KeyFor maps a tcell key event to a simulation key.
func KeyFor(ev *tcell.EventKey) sim.Key {
	if ev.Key() == tcell.KeyRune {
		return runeKeys[ev.Rune()]
	}
	return specialKeys[ev.Key()]
}

// HandleEvent applies one terminal event and reports whether the user quit.
// Terminals send no key-up, so every key is a tap.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return true
		}
		if k := KeyFor(ev); k != sim.KeyNone {
			in := h.sm.Input()
			in.Press(k)
			in.Release(k)
		}
	case *tcell.EventFocus:
		h.loop.SetFocused(ev.Focused)
	case *tcell.EventResize:
		h.screen.Sync()
	}
	return false
}

// Draw drains events, renders the frame and shows it. It runs on the loop
// goroutine.
func (h *Host) Draw() {
	events := h.sm.Drain()
	h.simLog.Record(events)
	sim.Forward(events, h.notifier)
	for _, e := range events {
		if e.Kind == sim.EventGameOver && h.OnGameOver != nil {
			h.OnGameOver(h.sm)
		}
	}
	snake := h.sm.Registry().Snake
	h.surface.SetView(snake.Head())
	h.sm.Render(h.surface)
	h.surface.HUD(h.sm.Session(), h.sm.Planet().Name, snake.Len())
	h.screen.Show()
}

// Run drives the loop from a ticker until ctx ends or the user quits.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go h.screen.ChannelEvents(events, quit)
	go func() {
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if h.HandleEvent(ev) {
					h.loop.Stop()
					return
				}
			case <-h.loop.Done():
				return
			}
		}
	}()

	frames := make(chan time.Time)
	go func() {
		defer close(frames)
		for {
			select {
			case t := <-ticker.C:
				select {
				case frames <- t:
				case <-h.loop.Done():
					return
				}
			case <-h.loop.Done():
				return
			}
		}
	}()
	return h.loop.Run(ctx, frames, h.Draw)
}
