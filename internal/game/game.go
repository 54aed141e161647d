// Package game is the desktop host: an ebiten window that drives one
// simulation, maps keyboard, mouse and touch onto its sampler and draws it
// with vector shapes or sprites.
package game

import (
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/spacecoco/internal/profile"
	"github.com/Garsondee/spacecoco/internal/sim"
)

// borderWidth is the pixel gap between the window edge and the playfield.
const borderWidth = 24

// hudScale is the integer upscale applied to HUD text.
const hudScale = 2

// Playfield pixel budget; the world is fitted inside it.
const (
	maxFieldWidth  = 960
	maxFieldHeight = 640
)

// Muter is implemented by notifiers that can be silenced.
type Muter interface {
	SetMuted(bool)
	Muted() bool
}

// Options configures a Game. Every field is optional.
type Options struct {
	Notifier   sim.Notifier
	Store      *profile.Store
	Sprites    fs.FS
	Logger     *log.Logger
	CopyReport bool // copy the run report to the clipboard at game over
}

// Game implements ebiten.Game around one simulation.
type Game struct {
	sm      *sim.Sim
	loop    *sim.Loop
	surface *Surface
	feed    *EventFeed
	simLog  *sim.SimLog
	input   *pointerInput

	notifier   sim.Notifier
	store      *profile.Store
	logger     *log.Logger
	copyReport bool

	width      int
	height     int
	gameWidth  int
	gameHeight int
	offX       int
	offY       int

	hudBuf   *ebiten.Image
	face     *text.GoXFace
	showFeed bool
	focused  bool

	best       int
	newBest    bool
	lastReport string

	now func() time.Time
}

// New wraps sm. The simulation should already be configured; it is started
// by the restart key if idle.
func New(sm *sim.Sim, opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	gw, gh := fieldSize(sm.Config())
	face := text.NewGoXFace(basicfont.Face7x13)
	g := &Game{
		sm:         sm,
		loop:       sim.NewLoop(sm),
		feed:       NewEventFeed(),
		simLog:     sim.NewSimLog(false),
		input:      &pointerInput{},
		notifier:   opts.Notifier,
		store:      opts.Store,
		logger:     logger,
		copyReport: opts.CopyReport,
		width:      borderWidth + gw + borderWidth + feedPanelWidth,
		height:     borderWidth + gh + borderWidth,
		gameWidth:  gw,
		gameHeight: gh,
		offX:       borderWidth,
		offY:       borderWidth,
		face:       face,
		showFeed:   true,
		focused:    true,
		now:        time.Now,
	}
	g.surface = NewSurface(face, viewport{
		x: float64(g.offX), y: float64(g.offY),
		w: float64(gw), h: float64(gh),
	})
	if opts.Sprites != nil {
		g.surface.sprites = LoadSprites(opts.Sprites, logger)
	}
	if g.store != nil {
		if p, err := g.store.GetCallerUserProfile(); err != nil {
			logger.Printf("load profile: %v", err)
		} else {
			g.best = p.BestScore
		}
	}
	return g
}

// fieldSize fits the world into the playfield budget.
func fieldSize(cfg *sim.Config) (int, int) {
	if cfg.Topology == sim.TopologySphere {
		return maxFieldHeight, maxFieldHeight
	}
	scale := min(maxFieldWidth/cfg.Width, maxFieldHeight/cfg.Height)
	return int(cfg.Width * scale), int(cfg.Height * scale)
}

// Sim returns the hosted simulation.
func (g *Game) Sim() *sim.Sim { return g.sm }

// Loop exposes the frame driver so other goroutines can stop it.
func (g *Game) Loop() *sim.Loop { return g.loop }

// Report is the text of the last finished run, empty before the first.
func (g *Game) Report() string { return g.lastReport }

func (g *Game) Update() error {
	select {
	case <-g.loop.Done():
		return ebiten.Termination
	default:
	}
	g.handleInput()
	if f := ebiten.IsFocused(); f != g.focused {
		g.focused = f
		g.loop.SetFocused(f)
	}
	g.loop.Frame(g.now())
	g.consume(g.sm.Drain())
	return nil
}

// consume routes drained events to the feed, the log and the notifier.
func (g *Game) consume(events []sim.Event) {
	if len(events) == 0 {
		return
	}
	g.simLog.Record(events)
	g.feed.AddEvents(events)
	sim.Forward(events, g.notifier)
	for _, e := range events {
		switch e.Kind {
		case sim.EventGameOver:
			g.gameOver()
		case sim.EventRestarted:
			g.newBest = false
			g.simLog = sim.NewSimLog(false)
		case sim.EventFault:
			g.logger.Printf("tick %d: recovered fault: %s", e.Tick, e.Detail)
		}
	}
}

// gameOver records the score and exports the run report.
func (g *Game) gameOver() {
	score, _ := g.sm.Session().FinalScore()
	report := sim.NewRunReport(g.sm, g.simLog)
	g.lastReport = report.String()
	if g.store != nil {
		best, err := g.store.SubmitScore(score, report.Variant, report.Seed)
		if err != nil {
			g.logger.Printf("submit score: %v", err)
		}
		if best {
			g.best = score
			g.newBest = true
			g.feed.Add(g.sm.Session().Tick, "best", fmt.Sprintf("new best %d", score))
		}
	}
	if g.copyReport {
		if err := copyToClipboard(g.lastReport); err != nil {
			g.logger.Printf("copy report: %v", err)
		} else {
			g.feed.Add(g.sm.Session().Tick, "report", "run report copied")
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 4, G: 2, B: 12, A: 255})

	g.surface.Bind(screen, g.sm.Now())
	g.surface.SetView(g.sm.Registry().Snake.Head())
	g.sm.Render(g.surface)

	ox, oy := float32(g.offX), float32(g.offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.StrokeRect(screen, ox-3, oy-3, gw+6, gh+6, 1.0, color.RGBA{R: 120, G: 40, B: 200, A: 100}, false)

	if g.showFeed {
		g.feed.Draw(screen, g.offX+g.gameWidth+g.offX, g.height)
	}
	g.drawHUD(screen)
}

// drawHUD renders the status lines into hudBuf at 1x and blits them at
// hudScale in the top-left corner.
func (g *Game) drawHUD(screen *ebiten.Image) {
	if g.hudBuf == nil {
		g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	}
	g.hudBuf.Clear()

	muted := false
	if m, ok := g.notifier.(Muter); ok {
		muted = m.Muted()
	}
	snake := g.sm.Registry().Snake
	lines := hudLines(g.sm.Session(), g.sm.Planet().Name, snake.Len(), g.best, muted)

	const lineH = 14
	const padX, padY = 5, 3
	maxW := 0.0
	for _, l := range lines {
		w, _ := text.Measure(l, g.face, lineH)
		maxW = max(maxW, w)
	}
	bx, by := float32(borderWidth/hudScale+2), float32(borderWidth/hudScale+2)
	boxW := float32(maxW) + padX*2
	boxH := float32(len(lines)*lineH + padY*2)
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 8, G: 4, B: 20, A: 190}, false)
	vector.StrokeLine(g.hudBuf, bx, by+boxH, bx+boxW, by+boxH, 1.0, color.RGBA{R: 255, G: 60, B: 220, A: 160}, false)

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(bx)+padX, float64(by)+padY+float64(i*lineH))
		op.ColorScale.ScaleWithColor(hudColor(g.sm.Session(), i, g.newBest))
		text.Draw(g.hudBuf, line, g.face, op)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(hudScale, hudScale)
	screen.DrawImage(g.hudBuf, opts)
}

// hudLines is the status block: score line, then state-specific hints.
func hudLines(ses sim.Session, planet string, length, best int, muted bool) []string {
	lines := []string{
		fmt.Sprintf("SCORE %d  LV %d  LEN %d", ses.Score, ses.Level, length),
		fmt.Sprintf("%s  BEST %d", planet, max(best, ses.Score)),
	}
	switch ses.State {
	case sim.StateIdle:
		lines = append(lines, "ENTER/R to start")
	case sim.StatePaused:
		lines = append(lines, "PAUSED  P to resume")
	case sim.StateGameOver:
		lines = append(lines, fmt.Sprintf("GAME OVER: %s", ses.Cause), "R restart  C copy report")
	}
	if muted {
		lines = append(lines, "muted (M)")
	}
	return lines
}

func hudColor(ses sim.Session, line int, newBest bool) color.Color {
	switch {
	case line == 1 && newBest:
		return color.RGBA{R: 255, G: 220, B: 60, A: 255}
	case line == 2 && ses.State == sim.StateGameOver:
		return color.RGBA{R: 255, G: 70, B: 90, A: 255}
	default:
		return color.RGBA{R: 230, G: 240, B: 255, A: 255}
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// WindowSize is the preferred outer window size.
func (g *Game) WindowSize() (int, int) {
	return g.width, g.height
}
