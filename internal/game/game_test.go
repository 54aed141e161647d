package game

import (
	"bytes"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/spacecoco/internal/profile"
	"github.com/Garsondee/spacecoco/internal/sim"
)

func TestFieldSize_FitsBudget(t *testing.T) {
	cases := []struct {
		name string
		cfg  sim.Config
		w, h int
	}{
		{"grid", sim.GridConfig(), 960, 640},
		{"plane", sim.PlaneConfig(), 960, 640},
		{"sphere", sim.SphereConfig(), 640, 640},
	}
	for _, tc := range cases {
		w, h := fieldSize(&tc.cfg)
		if w != tc.w || h != tc.h {
			t.Fatalf("%s: expected %dx%d, got %dx%d", tc.name, tc.w, tc.h, w, h)
		}
	}
}

func TestViewport_GridCellsDrawnAtCentre(t *testing.T) {
	cfg := sim.GridConfig()
	vp := viewport{x: 24, y: 24, w: 960, h: 640}
	x, y, ok := vp.project(&cfg, sim.Vec{}, sim.V2(0, 0))
	if !ok || x != 32 || y != 32 {
		t.Fatalf("expected (32,32), got (%v,%v) %v", x, y, ok)
	}
	if u := vp.unit(&cfg); u != 16 {
		t.Fatalf("expected 16px cells, got %v", u)
	}
}

func TestViewport_SphereHidesFarSide(t *testing.T) {
	cfg := sim.SphereConfig()
	vp := viewport{w: 640, h: 640}
	view := sim.Vec{Z: cfg.ShellOuter}
	x, y, ok := vp.project(&cfg, view, view)
	if !ok || x != 320 || y != 320 {
		t.Fatalf("expected the view point at the disc centre, got (%v,%v) %v", x, y, ok)
	}
	if _, _, ok := vp.project(&cfg, view, view.Scale(-1)); ok {
		t.Fatal("expected the antipode to be hidden")
	}
	if u := vp.unit(&cfg); u != 16 {
		t.Fatalf("expected the shell to span the disc, got %v px per unit", u)
	}
}

func TestSimKeyFor(t *testing.T) {
	cases := map[ebiten.Key]sim.Key{
		ebiten.KeyArrowUp:   sim.KeyUp,
		ebiten.KeyA:         sim.KeyLeft,
		ebiten.KeySpace:     sim.KeyShake,
		ebiten.KeyShiftLeft: sim.KeyBrake,
		ebiten.KeyEnter:     sim.KeyRestart,
		ebiten.KeyQ:         sim.KeyNone,
	}
	for k, want := range cases {
		if got := simKeyFor(k); got != want {
			t.Fatalf("key %v: expected %d, got %d", k, want, got)
		}
	}
}

func TestPointerInput_DeltaFromOrigin(t *testing.T) {
	var p pointerInput
	p.begin(100, 50)
	if dx, dy := p.delta(130, 10); dx != 30 || dy != -40 {
		t.Fatalf("expected (30,-40), got (%v,%v)", dx, dy)
	}
	p.end()
	if p.active {
		t.Fatal("expected end to clear the drag")
	}
}

func TestEventFeed_RingBuffer(t *testing.T) {
	f := NewEventFeed()
	for i := 0; i < feedMaxEntries+5; i++ {
		f.Add(i, "x", "m")
	}
	got := f.Recent()
	if len(got) != feedMaxEntries {
		t.Fatalf("expected %d entries, got %d", feedMaxEntries, len(got))
	}
	if got[0].Tick != 5 || got[len(got)-1].Tick != feedMaxEntries+4 {
		t.Fatalf("expected ticks 5..%d, got %d..%d", feedMaxEntries+4, got[0].Tick, got[len(got)-1].Tick)
	}
}

func TestEventFeed_SkipsNoise(t *testing.T) {
	f := NewEventFeed()
	f.AddEvents([]sim.Event{
		{Kind: sim.EventLaserFired, Tick: 1},
		{Kind: sim.EventParticleBurst, Tick: 1},
		{Kind: sim.EventHiss, Tick: 2},
		{Kind: sim.EventPickupEaten, Tick: 3, EntityKind: sim.KindCow, Value: 50},
		{Kind: sim.EventFrameDropped, Tick: 4},
	})
	got := f.Recent()
	if len(got) != 1 {
		t.Fatalf("expected only the pickup, got %+v", got)
	}
	if got[0].Label != "pickup_eaten" || got[0].Message != "ate flying-cow +50" {
		t.Fatalf("unexpected entry %+v", got[0])
	}
}

func TestHudLines_States(t *testing.T) {
	ses := sim.Session{State: sim.StateGameOver, Score: 40, Level: 2, Cause: sim.CauseWall}
	lines := hudLines(ses, "Neon Prime", 7, 120, true)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"SCORE 40  LV 2  LEN 7", "BEST 120", "GAME OVER: wall", "muted"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in HUD, got %q", want, joined)
		}
	}
	running := hudLines(sim.Session{State: sim.StateRunning, Score: 200}, "x", 3, 120, false)
	if len(running) != 2 || !strings.Contains(running[1], "BEST 200") {
		t.Fatalf("expected the live score to lead BEST, got %q", running)
	}
}

func TestLoadSprites_FallsBackToPlaceholders(t *testing.T) {
	var buf bytes.Buffer
	s := LoadSprites(fstest.MapFS{}, log.New(&buf, "", 0))
	if s.Loaded() != 0 {
		t.Fatalf("expected no sprites, got %d", s.Loaded())
	}
	if s.Image(sim.KindUFO) != nil {
		t.Fatal("expected a nil image for the placeholder")
	}
	if !strings.Contains(buf.String(), "sprites/ufo.png") || !strings.Contains(buf.String(), "placeholder") {
		t.Fatalf("expected the missing sprite to be logged, got %q", buf.String())
	}
	var none *Sprites
	if none.Image(sim.KindCow) != nil {
		t.Fatal("expected a nil Sprites to have no images")
	}
}

type countingNotifier struct{ names []string }

func (c *countingNotifier) Notify(name string) { c.names = append(c.names, name) }

func TestGame_GameOverSubmitsAndCopies(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	sm, err := sim.New(sim.GridWallsConfig())
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	sm.SetSpawning(false)
	if err := sm.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	store := profile.Open(filepath.Join(t.TempDir(), "profile.json"))
	notes := &countingNotifier{}
	g := New(sm, Options{Store: store, Notifier: notes, CopyReport: true})

	for i := 0; i < 400 && sm.Session().State == sim.StateRunning; i++ {
		sm.Frame(sim.DefaultFrameDelta)
		g.consume(sm.Drain())
	}
	if sm.Session().State != sim.StateGameOver {
		t.Fatal("expected the snake to hit the wall")
	}
	if !strings.Contains(copied, "cause=wall") || copied != g.Report() {
		t.Fatalf("expected the run report on the clipboard, got %q", copied)
	}
	p, err := store.GetCallerUserProfile()
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.Games != 1 {
		t.Fatalf("expected one recorded game, got %d", p.Games)
	}
	if !slices.Contains(notes.names, "game_over") {
		t.Fatalf("expected game_over to reach the notifier, got %v", notes.names)
	}

	sm.Restart()
	g.consume(sm.Drain())
	if g.simLog.Count("session", "game_over") != 0 {
		t.Fatal("expected restart to start a fresh log")
	}
}
