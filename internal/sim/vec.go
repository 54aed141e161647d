package sim

import "math"

// Vec is a world-space position or velocity. Planar topologies keep Z at 0.
type Vec struct {
	X, Y, Z float64
}

// V2 builds a planar vector.
func V2(x, y float64) Vec { return Vec{X: x, Y: y} }

func (a Vec) Add(b Vec) Vec       { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec) Sub(b Vec) Vec       { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec) Scale(s float64) Vec { return Vec{a.X * s, a.Y * s, a.Z * s} }
func (a Vec) Dot(b Vec) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec) Cross(b Vec) Vec {
	return Vec{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the Euclidean length.
func (a Vec) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Dist returns the distance between two points.
func (a Vec) Dist(b Vec) float64 { return a.Sub(b).Len() }

// Norm returns the unit vector, or the zero vector for a zero-length input.
func (a Vec) Norm() Vec {
	l := a.Len()
	if l == 0 {
		return Vec{}
	}
	return a.Scale(1 / l)
}

// Lerp moves a toward b by t in [0,1].
func (a Vec) Lerp(b Vec, t float64) Vec {
	return a.Add(b.Sub(a).Scale(t))
}

// Finite reports whether every component is a real number.
func (a Vec) Finite() bool {
	for _, c := range [3]float64{a.X, a.Y, a.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Vec returns the cell as a world position (cell units).
func (c Cell) Vec() Vec { return Vec{X: float64(c.X), Y: float64(c.Y)} }

// CellOf rounds a world position to the nearest cell.
func CellOf(v Vec) Cell {
	return Cell{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}

// Direction is one of the four cardinal grid directions.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// Delta is the unit cell step for the direction. Screen Y grows downward.
func (d Direction) Delta() Cell {
	switch d {
	case DirUp:
		return Cell{0, -1}
	case DirDown:
		return Cell{0, 1}
	case DirLeft:
		return Cell{-1, 0}
	case DirRight:
		return Cell{1, 0}
	default:
		return Cell{}
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return DirNone
	}
}

// DirectionOf picks the dominant cardinal axis of a planar vector.
func DirectionOf(v Vec) Direction {
	if v.X == 0 && v.Y == 0 {
		return DirNone
	}
	if math.Abs(v.X) >= math.Abs(v.Y) {
		if v.X > 0 {
			return DirRight
		}
		return DirLeft
	}
	if v.Y > 0 {
		return DirDown
	}
	return DirUp
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// wrapF folds v into [0, size).
func wrapF(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

func wrapI(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}
