package game

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/spacecoco/internal/sim"
)

// viewport is the playfield rectangle in screen pixels.
type viewport struct {
	x, y, w, h float64
}

// project maps a world point into the viewport. Grid cells are drawn at
// their centres.
func (v viewport) project(cfg *sim.Config, view, p sim.Vec) (float32, float32, bool) {
	if cfg.Topology == sim.TopologyGrid {
		p = p.Add(sim.V2(0.5, 0.5))
	}
	nx, ny, ok := sim.Project(cfg, view, p)
	if !ok {
		return 0, 0, false
	}
	return float32(v.x + nx*v.w), float32(v.y + ny*v.h), true
}

// unit is the on-screen size of one world unit.
func (v viewport) unit(cfg *sim.Config) float32 {
	if cfg.Topology == sim.TopologySphere {
		return float32(v.w / (2 * cfg.ShellOuter))
	}
	return float32(math.Min(v.w/cfg.Width, v.h/cfg.Height))
}

var (
	colHead     = color.RGBA{R: 0, G: 255, B: 240, A: 255}
	colBody     = color.RGBA{R: 40, G: 255, B: 140, A: 255}
	colDead     = color.RGBA{R: 255, G: 40, B: 60, A: 255}
	colEnemyLaz = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	colBeam     = color.RGBA{R: 255, G: 80, B: 255, A: 255}
	colWall     = color.RGBA{R: 255, G: 40, B: 200, A: 220}
	colEdge     = color.RGBA{R: 90, G: 60, B: 160, A: 140}
	colGrid     = color.RGBA{R: 40, G: 30, B: 80, A: 70}
	colHPBack   = color.RGBA{R: 40, G: 10, B: 20, A: 220}
	colHP       = color.RGBA{R: 255, G: 70, B: 90, A: 255}
)

// withAlpha scales c's alpha by a in [0,1].
func withAlpha(c color.RGBA, a float64) color.RGBA {
	a = math.Max(0, math.Min(1, a))
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}

// Surface draws one frame onto an ebiten image. It implements sim.Surface.
type Surface struct {
	dst     *ebiten.Image
	face    *text.GoXFace
	vp      viewport
	cfg     *sim.Config
	view    sim.Vec
	now     time.Duration
	sprites *Sprites
}

// NewSurface draws into vp using face for labels.
func NewSurface(face *text.GoXFace, vp viewport) *Surface {
	return &Surface{face: face, vp: vp}
}

// Bind sets the target image and the sim time for the next Render.
func (s *Surface) Bind(dst *ebiten.Image, now time.Duration) {
	s.dst = dst
	s.now = now
}

// SetView centres the sphere projection on p.
func (s *Surface) SetView(p sim.Vec) { s.view = p }

func (s *Surface) at(p sim.Vec) (float32, float32, bool) {
	if s.cfg == nil {
		return 0, 0, false
	}
	return s.vp.project(s.cfg, s.view, p)
}

func (s *Surface) Background(p sim.Planet) {
	vector.FillRect(s.dst, float32(s.vp.x), float32(s.vp.y), float32(s.vp.w), float32(s.vp.h), p.Tint, false)
}

func (s *Surface) Playfield(cfg *sim.Config) {
	s.cfg = cfg
	x, y, w, h := float32(s.vp.x), float32(s.vp.y), float32(s.vp.w), float32(s.vp.h)
	switch cfg.Topology {
	case sim.TopologySphere:
		r := w / 2
		vector.StrokeCircle(s.dst, x+r, y+r, r, 2, colEdge, true)
		vector.StrokeCircle(s.dst, x+r, y+r, r*float32(cfg.ShellInner/cfg.ShellOuter), 1, colGrid, true)
		return
	case sim.TopologyGrid:
		u := s.vp.unit(cfg)
		for cx := 5; cx < int(cfg.Width); cx += 5 {
			fx := x + float32(cx)*u
			vector.StrokeLine(s.dst, fx, y, fx, y+h, 1, colGrid, false)
		}
		for cy := 5; cy < int(cfg.Height); cy += 5 {
			fy := y + float32(cy)*u
			vector.StrokeLine(s.dst, x, fy, x+w, fy, 1, colGrid, false)
		}
	}
	edge, width := colEdge, float32(1)
	if cfg.PlayerBoundary == sim.BoundaryFatal {
		edge, width = colWall, 3
	}
	vector.StrokeRect(s.dst, x, y, w, h, width, edge, false)
}

// entity draws a sprite when one is loaded, otherwise a glowing disc.
func (s *Surface) entity(e sim.Entity, spec sim.KindSpec, glow float64) {
	px, py, ok := s.at(e.Pos)
	if !ok {
		return
	}
	r := float32(e.Radius) * s.vp.unit(s.cfg)
	if r < 2 {
		r = 2
	}
	if img := s.sprites.Image(e.Kind); img != nil {
		b := img.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
		op.GeoM.Scale(float64(2*r)/float64(b.Dx()), float64(2*r)/float64(b.Dy()))
		op.GeoM.Translate(float64(px), float64(py))
		s.dst.DrawImage(img, op)
		return
	}
	vector.FillCircle(s.dst, px, py, r*1.6, withAlpha(spec.Color, glow), true)
	vector.FillCircle(s.dst, px, py, r, spec.Color, true)
}

func (s *Surface) Pickup(e sim.Entity, spec sim.KindSpec) {
	// Pickups pulse slowly.
	pulse := 0.25 + 0.15*math.Sin(e.Phase+s.now.Seconds()*4)
	s.entity(e, spec, pulse)
}

func (s *Surface) Enemy(e sim.Entity, spec sim.KindSpec) {
	s.entity(e, spec, 0.3)
}

func (s *Surface) Boss(e sim.Entity, spec sim.KindSpec) {
	s.entity(e, spec, 0.45)
	px, py, ok := s.at(e.Pos)
	if !ok || spec.HP <= 0 {
		return
	}
	r := float32(e.Radius) * s.vp.unit(s.cfg)
	barW := max(r*2, 24)
	frac := float32(e.HP) / float32(spec.HP)
	vector.FillRect(s.dst, px-barW/2, py-r-8, barW, 4, colHPBack, false)
	vector.FillRect(s.dst, px-barW/2, py-r-8, barW*frac, 4, colHP, false)
}

func (s *Surface) Player(sn sim.Snake) {
	u := s.vp.unit(s.cfg)
	r := max(float32(s.cfg.PlayerRadius)*u, 2)
	for i := len(sn.Segments) - 1; i >= 0; i-- {
		px, py, ok := s.at(sn.Segments[i])
		if !ok {
			continue
		}
		c := colBody
		switch {
		case i == 0 && !sn.Alive:
			c = colDead
		case i == 0:
			c = colHead
		default:
			// Tail fades toward the end.
			c = withAlpha(colBody, 1-0.6*float64(i)/float64(len(sn.Segments)))
		}
		if s.cfg.Topology == sim.TopologyGrid {
			vector.FillRect(s.dst, px-u/2+1, py-u/2+1, u-2, u-2, c, false)
			continue
		}
		vector.FillCircle(s.dst, px, py, r, c, true)
	}
}

func (s *Surface) Projectile(l sim.Laser, now time.Duration) {
	x0, y0, ok0 := s.at(l.Origin)
	x1, y1, ok1 := s.at(l.Origin.Add(l.Dir.Scale(l.Length)))
	if !ok0 && !ok1 {
		return
	}
	c := colEnemyLaz
	if l.Owner == sim.OwnerPlayer {
		c = colBeam
	}
	fade := 1.0
	if l.TTL > 0 {
		fade = 1 - float64(now-l.CreatedAt)/float64(l.TTL)
	}
	w := max(float32(l.Radius)*2*s.vp.unit(s.cfg), 1.5)
	vector.StrokeLine(s.dst, x0, y0, x1, y1, w*2.5, withAlpha(c, 0.3*fade), true)
	vector.StrokeLine(s.dst, x0, y0, x1, y1, w, withAlpha(c, fade), true)
}

func (s *Surface) Particle(p sim.Particle) {
	px, py, ok := s.at(p.Pos)
	if !ok {
		return
	}
	r := max(float32(p.Size)*s.vp.unit(s.cfg), 1)
	vector.FillCircle(s.dst, px, py, r, withAlpha(p.Color, p.Life), false)
}

func (s *Surface) Popup(p sim.Popup) {
	px, py, ok := s.at(p.Pos)
	if !ok {
		return
	}
	fade := p.Fade()
	op := &text.DrawOptions{}
	// Rise as the popup fades.
	op.GeoM.Translate(float64(px), float64(py)-20*(1-fade))
	op.ColorScale.ScaleWithColor(withAlpha(p.Color, fade))
	op.PrimaryAlign = text.AlignCenter
	text.Draw(s.dst, p.Text, s.face, op)
}

