package sim

import (
	"math"
	"time"
)

// DefaultSkin is the cosmetic skin of a fresh snake.
const DefaultSkin = "neon-coco"

// Snake is the player. Segments[0] is always the head.
type Snake struct {
	Segments []Vec

	// Grid variant.
	Dir Direction

	// Continuous variants.
	Vel     Vec
	Heading Vec

	GrowthPending int
	Speed         float64
	Alive         bool
	Skin          string

	lastBeam   time.Duration
	brakeUntil time.Duration
}

// Head returns the head position.
func (s *Snake) Head() Vec { return s.Segments[0] }

// Len returns the segment count.
func (s *Snake) Len() int { return len(s.Segments) }

// Cells returns the segments as grid cells.
func (s *Snake) Cells() []Cell {
	out := make([]Cell, len(s.Segments))
	for i, p := range s.Segments {
		out[i] = CellOf(p)
	}
	return out
}

func (s *Snake) clone() *Snake {
	c := *s
	c.Segments = append([]Vec(nil), s.Segments...)
	return &c
}

// newSnake lays out the initial body in a horizontal line behind the head,
// moving right.
func newSnake(cfg *Config) *Snake {
	n := cfg.InitialLength
	s := &Snake{
		Segments: make([]Vec, n),
		Dir:      DirRight,
		Alive:    true,
		Skin:     DefaultSkin,
	}
	switch cfg.Topology {
	case TopologyGrid:
		c := Cell{X: int(cfg.Width) / 2, Y: int(cfg.Height) / 2}
		for i := range s.Segments {
			s.Segments[i] = Cell{X: c.X - i, Y: c.Y}.Vec()
		}
		s.Heading = V2(1, 0)
		s.Speed = float64(time.Second) / float64(cfg.moveInterval(1))
	case TopologyPlane:
		c := cfg.Center()
		for i := range s.Segments {
			s.Segments[i] = c.Add(V2(-float64(i)*cfg.SegmentSpacing, 0))
		}
		s.Heading = V2(1, 0)
		s.Vel = s.Heading.Scale(cfg.CruiseSpeed)
		s.Speed = cfg.CruiseSpeed
	case TopologySphere:
		r := cfg.ShellRadius()
		for i := range s.Segments {
			th := -float64(i) * cfg.SegmentSpacing / r
			s.Segments[i] = Vec{X: r * math.Cos(th), Y: r * math.Sin(th)}
		}
		s.Heading = Vec{Y: 1}
		s.Vel = s.Heading.Scale(cfg.CruiseSpeed)
		s.Speed = cfg.CruiseSpeed
	}
	return s
}

// gridStep computes where the head would go, without committing. ok is false
// when a fatal wall blocks the move.
func gridStep(cfg *Config, head Vec, d Direction) (Vec, bool) {
	c := CellOf(head)
	delta := d.Delta()
	nx, ny := c.X+delta.X, c.Y+delta.Y
	w, h := int(cfg.Width), int(cfg.Height)
	if nx < 0 || nx >= w || ny < 0 || ny >= h {
		if cfg.PlayerBoundary == BoundaryFatal {
			return Cell{X: nx, Y: ny}.Vec(), false
		}
		nx, ny = wrapI(nx, w), wrapI(ny, h)
	}
	return Cell{X: nx, Y: ny}.Vec(), true
}

// gridSelfHit reports whether next lands on a body segment that will still be
// there after the move. The tail vacates unless growth is pending.
func (s *Snake) gridSelfHit(next Vec) bool {
	nc := CellOf(next)
	last := len(s.Segments) - 1
	for i := 1; i <= last; i++ {
		if i == last && s.GrowthPending == 0 {
			break
		}
		if CellOf(s.Segments[i]) == nc {
			return true
		}
	}
	return false
}

// commitGridMove writes the new head and trims or grows the tail.
func (s *Snake) commitGridMove(next Vec) {
	s.Segments = append(s.Segments, Vec{})
	copy(s.Segments[1:], s.Segments[:len(s.Segments)-1])
	s.Segments[0] = next
	if s.GrowthPending > 0 {
		s.GrowthPending--
		return
	}
	s.Segments = s.Segments[:len(s.Segments)-1]
}
