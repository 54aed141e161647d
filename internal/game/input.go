package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/spacecoco/internal/sim"
)

// keyBinding maps one physical key to a simulation key.
type keyBinding struct {
	key ebiten.Key
	sim sim.Key
}

var keyBindings = []keyBinding{
	{ebiten.KeyArrowUp, sim.KeyUp},
	{ebiten.KeyW, sim.KeyUp},
	{ebiten.KeyArrowDown, sim.KeyDown},
	{ebiten.KeyS, sim.KeyDown},
	{ebiten.KeyArrowLeft, sim.KeyLeft},
	{ebiten.KeyA, sim.KeyLeft},
	{ebiten.KeyArrowRight, sim.KeyRight},
	{ebiten.KeyD, sim.KeyRight},
	{ebiten.KeyShiftLeft, sim.KeyBrake},
	{ebiten.KeyShiftRight, sim.KeyBrake},
	{ebiten.KeyB, sim.KeyBrake},
	{ebiten.KeySpace, sim.KeyShake},
	{ebiten.KeyP, sim.KeyPause},
	{ebiten.KeyR, sim.KeyRestart},
	{ebiten.KeyEnter, sim.KeyRestart},
}

// simKeyFor returns the simulation key bound to k, or KeyNone.
func simKeyFor(k ebiten.Key) sim.Key {
	for _, b := range keyBindings {
		if b.key == k {
			return b.sim
		}
	}
	return sim.KeyNone
}

// pointerInput turns one mouse or touch drag into a sampler drag vector
// measured from where the press started.
type pointerInput struct {
	active  bool
	touch   bool
	touchID ebiten.TouchID
	ox, oy  int
}

func (p *pointerInput) begin(x, y int) {
	p.active = true
	p.ox, p.oy = x, y
}

// delta is the drag vector from the press origin.
func (p *pointerInput) delta(x, y int) (float64, float64) {
	return float64(x - p.ox), float64(y - p.oy)
}

func (p *pointerInput) end() {
	*p = pointerInput{}
}

// handleInput forwards edge-triggered key state and pointer drags to the
// sampler, and handles host-only keys.
func (g *Game) handleInput() {
	in := g.sm.Input()
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			in.Press(b.sim)
		}
		if inpututil.IsKeyJustReleased(b.key) {
			in.Release(b.sim)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.loop.Stop()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showFeed = !g.showFeed
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		if m, ok := g.notifier.(Muter); ok {
			m.SetMuted(!m.Muted())
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && g.lastReport != "" {
		if err := copyToClipboard(g.lastReport); err != nil {
			g.logger.Printf("copy report: %v", err)
		} else {
			g.feed.Add(g.sm.Session().Tick, "report", "run report copied")
		}
	}

	g.handlePointer(in)
}

func (g *Game) handlePointer(in *sim.Sampler) {
	p := g.input
	if !p.active {
		if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
			x, y := ebiten.TouchPosition(ids[0])
			p.begin(x, y)
			p.touch, p.touchID = true, ids[0]
		} else if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			p.begin(ebiten.CursorPosition())
		}
		return
	}

	if p.touch {
		if inpututil.IsTouchJustReleased(p.touchID) {
			p.end()
			in.EndDrag()
			return
		}
		in.Drag(p.delta(ebiten.TouchPosition(p.touchID)))
		return
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		p.end()
		in.EndDrag()
		return
	}
	in.Drag(p.delta(ebiten.CursorPosition()))
}
