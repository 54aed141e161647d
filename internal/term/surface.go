// Package term is the terminal host: a tcell render surface, key mapping
// and a ticker-driven loop around one simulation.
package term

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/spacecoco/internal/sim"
)

// hudRows is the number of rows above the playfield.
const hudRows = 1

var kindGlyphs = [sim.KindCount]rune{
	sim.KindPointDrop:   '•',
	sim.KindCow:         'C',
	sim.KindUFO:         'U',
	sim.KindCrocodile:   'W',
	sim.KindAnomaly:     '✦',
	sim.KindPenguinBoss: 'P',
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Surface draws one frame into a tcell screen. It implements sim.Surface.
type Surface struct {
	screen tcell.Screen
	cfg    *sim.Config
	view   sim.Vec
	bg     tcell.Style
}

// NewSurface wraps screen.
func NewSurface(screen tcell.Screen) *Surface {
	return &Surface{screen: screen, bg: tcell.StyleDefault}
}

// SetView centres the sphere projection on p. Planar variants ignore it.
func (s *Surface) SetView(p sim.Vec) { s.view = p }

// cell maps a world position to a screen cell inside the playfield area.
func (s *Surface) cell(p sim.Vec) (int, int, bool) {
	if s.cfg == nil {
		return 0, 0, false
	}
	w, h := s.screen.Size()
	h -= hudRows
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	x, y, ok := sim.Project(s.cfg, s.view, p)
	if !ok {
		return 0, 0, false
	}
	cx := int(math.Floor(x * float64(w)))
	cy := int(math.Floor(y * float64(h)))
	if cx < 0 || cy < 0 || cx >= w || cy >= h {
		return 0, 0, false
	}
	return cx, cy + hudRows, true
}

func (s *Surface) put(p sim.Vec, r rune, st tcell.Style) {
	if x, y, ok := s.cell(p); ok {
		s.screen.SetContent(x, y, r, nil, st)
	}
}

// Text writes str at column x, row y.
func (s *Surface) Text(x, y int, str string, st tcell.Style) {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, st)
		x++
	}
}

func (s *Surface) Background(p sim.Planet) {
	s.bg = tcell.StyleDefault.Background(rgb(p.Tint))
	s.screen.SetStyle(s.bg)
	s.screen.Clear()
}

func (s *Surface) Playfield(cfg *sim.Config) {
	s.cfg = cfg
	if cfg.Topology == sim.TopologySphere || cfg.PlayerBoundary != sim.BoundaryFatal {
		return
	}
	w, h := s.screen.Size()
	edge := s.bg.Foreground(tcell.ColorDarkMagenta)
	for x := 0; x < w; x++ {
		s.screen.SetContent(x, hudRows, '─', nil, edge)
		s.screen.SetContent(x, h-1, '─', nil, edge)
	}
	for y := hudRows; y < h; y++ {
		s.screen.SetContent(0, y, '│', nil, edge)
		s.screen.SetContent(w-1, y, '│', nil, edge)
	}
}

func (s *Surface) Pickup(e sim.Entity, spec sim.KindSpec) {
	s.put(e.Pos, kindGlyphs[e.Kind], s.bg.Foreground(rgb(spec.Color)))
}

func (s *Surface) Enemy(e sim.Entity, spec sim.KindSpec) {
	s.put(e.Pos, kindGlyphs[e.Kind], s.bg.Foreground(rgb(spec.Color)).Bold(true))
}

func (s *Surface) Boss(e sim.Entity, spec sim.KindSpec) {
	st := s.bg.Foreground(rgb(spec.Color)).Bold(true).Reverse(true)
	s.put(e.Pos, kindGlyphs[e.Kind], st)
	if x, y, ok := s.cell(e.Pos); ok {
		s.Text(x+1, y, fmt.Sprintf("%d", e.HP), s.bg.Foreground(tcell.ColorWhite))
	}
}

func (s *Surface) Player(sn sim.Snake) {
	body := s.bg.Foreground(tcell.ColorLime)
	for i := len(sn.Segments) - 1; i > 0; i-- {
		s.put(sn.Segments[i], 'o', body)
	}
	head := s.bg.Foreground(tcell.ColorAqua).Bold(true)
	if !sn.Alive {
		head = s.bg.Foreground(tcell.ColorRed).Bold(true)
	}
	s.put(sn.Head(), '@', head)
}

func (s *Surface) Projectile(l sim.Laser, _ time.Duration) {
	r, st := '·', s.bg.Foreground(tcell.ColorRed)
	if l.Owner == sim.OwnerPlayer {
		r, st = '=', s.bg.Foreground(tcell.ColorFuchsia)
	}
	steps := int(math.Ceil(l.Length))
	for i := 0; i <= steps; i++ {
		s.put(l.Origin.Add(l.Dir.Scale(l.Length*float64(i)/float64(max(steps, 1)))), r, st)
	}
}

func (s *Surface) Particle(p sim.Particle) {
	if p.Life < 0.25 {
		return
	}
	s.put(p.Pos, '∙', s.bg.Foreground(rgb(p.Color)))
}

func (s *Surface) Popup(p sim.Popup) {
	if x, y, ok := s.cell(p.Pos); ok {
		s.Text(x, y, p.Text, s.bg.Foreground(rgb(p.Color)).Bold(p.Fade() > 0.5))
	}
}

// HUD writes the status line.
func (s *Surface) HUD(ses sim.Session, planet string, length int) {
	st := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	w, _ := s.screen.Size()
	for x := 0; x < w; x++ {
		s.screen.SetContent(x, 0, ' ', nil, st)
	}
	line := fmt.Sprintf("SCORE %d  LV %d  LEN %d  %s", ses.Score, ses.Level, length, planet)
	switch ses.State {
	case sim.StatePaused:
		line += "  [PAUSED: p]"
	case sim.StateGameOver:
		line += fmt.Sprintf("  GAME OVER (%s)  r=restart q=quit", ses.Cause)
	case sim.StateIdle:
		line += "  press r to start"
	}
	s.Text(0, 0, line, st)
}
