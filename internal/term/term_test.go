package term

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/spacecoco/internal/sim"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func newSim(t *testing.T, cfg sim.Config) *sim.Sim {
	t.Helper()
	sm, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	sm.SetSpawning(false)
	if err := sm.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return sm
}

func rowText(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func findRune(screen tcell.SimulationScreen, want rune) (int, int, bool) {
	w, h := screen.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r, _, _, _ := screen.GetContent(x, y); r == want {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

func TestDraw_PlacesHeadAndHUD(t *testing.T) {
	// 60 columns by 40 playfield rows gives one cell per grid cell.
	screen := newScreen(t, 60, 41)
	sm := newSim(t, sim.GridConfig())
	h := NewHost(screen, sm, nil)
	h.Draw()

	x, y, ok := findRune(screen, '@')
	if !ok {
		t.Fatal("expected the head glyph on screen")
	}
	if x != 30 || y != 20+hudRows {
		t.Fatalf("expected the head at (30,%d), got (%d,%d)", 20+hudRows, x, y)
	}
	if r, _, _, _ := screen.GetContent(29, 20+hudRows); r != 'o' {
		t.Fatalf("expected a body segment behind the head, got %q", r)
	}
	if hud := rowText(screen, 0); !strings.Contains(hud, "SCORE 0") || !strings.Contains(hud, "Neon Prime") {
		t.Fatalf("expected score and planet in the HUD, got %q", hud)
	}
}

func TestDraw_EntitiesAndWalls(t *testing.T) {
	screen := newScreen(t, 60, 41)
	sm := newSim(t, sim.GridWallsConfig())
	e := sm.Spawn(sim.KindUFO, sm.Now())
	e.Anchored = true
	e.Origin, e.Pos = sim.V2(10, 5), sim.V2(10, 5)
	h := NewHost(screen, sm, nil)
	h.Draw()

	if r, _, _, _ := screen.GetContent(10, 5+hudRows); r != 'U' {
		t.Fatalf("expected the UFO glyph at (10,%d), got %q", 5+hudRows, r)
	}
	if r, _, _, _ := screen.GetContent(0, 10); r != '│' {
		t.Fatalf("expected a wall on the left edge, got %q", r)
	}
}

func TestDraw_GameOverCallbackOnce(t *testing.T) {
	screen := newScreen(t, 60, 41)
	sm := newSim(t, sim.GridWallsConfig())
	h := NewHost(screen, sm, nil)
	calls := 0
	h.OnGameOver = func(*sim.Sim) { calls++ }
	for i := 0; i < 400 && sm.Session().State == sim.StateRunning; i++ {
		sm.Frame(sim.DefaultFrameDelta)
		h.Draw()
	}
	h.Draw()
	if calls != 1 {
		t.Fatalf("expected one game-over callback, got %d", calls)
	}
	if hud := rowText(screen, 0); !strings.Contains(hud, "GAME OVER (wall)") {
		t.Fatalf("expected the game-over banner, got %q", hud)
	}
	if h.Log().Count("session", "game_over") != 1 {
		t.Fatal("expected the session log to hold the game over")
	}
}

func TestHandleEvent_Keys(t *testing.T) {
	screen := newScreen(t, 40, 20)
	sm := newSim(t, sim.GridConfig())
	h := NewHost(screen, sm, nil)

	if h.HandleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)) {
		t.Fatal("expected arrows not to quit")
	}
	if d := sm.Input().NextTurn(); d != sim.DirUp {
		t.Fatalf("expected an up turn, got %s", d)
	}
	h.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone))
	if d := sm.Input().NextTurn(); d != sim.DirRight {
		t.Fatalf("expected d to turn right, got %s", d)
	}
	h.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone))
	if !sm.Input().PauseRequested() {
		t.Fatal("expected p to request pause")
	}
	if !h.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("expected q to quit")
	}
	if !h.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)) {
		t.Fatal("expected ctrl-c to quit")
	}
	h.HandleEvent(tcell.NewEventFocus(false))
	if !h.Loop().Suspended() {
		t.Fatal("expected focus loss to suspend the loop")
	}
}

func TestHandleEvent_TapsSteerPlane(t *testing.T) {
	screen := newScreen(t, 40, 20)
	sm := newSim(t, sim.PlaneConfig())
	h := NewHost(screen, sm, nil)

	h.HandleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	for i := 0; i < 60; i++ {
		sm.Frame(sim.DefaultFrameDelta)
	}
	if hd := sm.Registry().Snake.Heading; hd.Y > -0.9 {
		t.Fatalf("expected one tap to turn the snake up, got heading %+v", hd)
	}

	// The opposite tap releases the latch; the snake keeps its heading.
	h.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone))
	if v := sm.Input().Vector(); v.Len() != 0 {
		t.Fatalf("expected the reverse tap to clear steering, got %+v", v)
	}
	for i := 0; i < 30; i++ {
		sm.Frame(sim.DefaultFrameDelta)
	}
	if hd := sm.Registry().Snake.Heading; hd.Y > -0.9 {
		t.Fatalf("expected the snake to coast upward, got heading %+v", hd)
	}

	h.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone))
	for i := 0; i < 60; i++ {
		sm.Frame(sim.DefaultFrameDelta)
	}
	if hd := sm.Registry().Snake.Heading; hd.X < 0.9 {
		t.Fatalf("expected the snake to turn right, got heading %+v", hd)
	}
	if sm.Session().State != sim.StateRunning {
		t.Fatalf("expected the run to continue, got %s", sm.Session().State)
	}
}

func TestKeyFor_Unmapped(t *testing.T) {
	if k := KeyFor(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)); k != sim.KeyNone {
		t.Fatalf("expected KeyNone for z, got %d", k)
	}
	if k := KeyFor(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)); k != sim.KeyRestart {
		t.Fatalf("expected enter to restart, got %d", k)
	}
}

func TestRun_QuitKeyStops(t *testing.T) {
	screen := newScreen(t, 40, 20)
	sm := newSim(t, sim.GridConfig())
	h := NewHost(screen, sm, nil)
	errc := make(chan error, 1)
	go func() { errc <- h.Run(context.Background()) }()

	time.Sleep(60 * time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("expected nil after quit, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected Run to return after q")
	}
	if sm.Now() == 0 {
		t.Fatal("expected the loop to have advanced the simulation")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	screen := newScreen(t, 40, 20)
	h := NewHost(screen, newSim(t, sim.GridConfig()), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := h.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}
