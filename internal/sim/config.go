package sim

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Topology is the shape of the playfield.
type Topology int

const (
	TopologyGrid   Topology = iota // cardinal moves on integer cells
	TopologyPlane                  // free roaming on a rectangle
	TopologySphere                 // free roaming on a spherical shell
)

func (t Topology) String() string {
	switch t {
	case TopologyGrid:
		return "grid"
	case TopologyPlane:
		return "plane"
	case TopologySphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Boundary is the world-edge rule for one entity class.
type Boundary int

const (
	BoundaryWrap    Boundary = iota // leave one edge, enter the opposite
	BoundaryFatal                   // the edge is a wall; hitting it ends the session
	BoundaryClamp                   // held inside the world, no penalty
	BoundarySurface                 // pulled back onto the sphere shell
	BoundaryNone                    // free; pruned past the despawn margin
)

func (b Boundary) String() string {
	switch b {
	case BoundaryWrap:
		return "wrap"
	case BoundaryFatal:
		return "fatal"
	case BoundaryClamp:
		return "clamp"
	case BoundarySurface:
		return "surface"
	case BoundaryNone:
		return "none"
	default:
		return "unknown"
	}
}

// WorldMode picks which surface of the sphere shell the game is played on.
type WorldMode int

const (
	WorldOuter WorldMode = iota
	WorldInner
)

// SpawnRule configures one spawner timer. A zero Interval disables it.
type SpawnRule struct {
	Interval time.Duration
	Max      int
}

// Planet is a world modifier cycled by anomalies.
type Planet struct {
	Name     string
	SpeedMul float64 // enemy speed multiplier at spawn
	SpawnMul float64 // spawn interval multiplier
	Tint     color.RGBA
}

// Timing and geometry defaults shared by the presets.
const (
	DefaultLevelDivisor     = 100
	DefaultBaseMoveInterval = 96 * time.Millisecond
	DefaultMinMoveInterval  = 32 * time.Millisecond
	DefaultMaxFrameDelta    = 100 * time.Millisecond
	DefaultLaserTTL         = 500 * time.Millisecond
	DefaultHissInterval     = 2400 * time.Millisecond
	DefaultBossEveryLevels  = 3
	DefaultInitialLength    = 5
	DefaultMaxMovesPerFrame = 4
	DefaultBurstSize        = 12
	aggressiveThreshold     = 0.5
	// growSlack tolerates the shell projection shortening the tail link.
	growSlack = 0.95
)

// Config parameterizes one game variant.
type Config struct {
	Topology  Topology
	WorldMode WorldMode

	// Width and Height are cells on the grid and world units on the plane.
	Width, Height float64
	// ShellInner and ShellOuter are the sphere radii.
	ShellInner, ShellOuter float64

	PlayerBoundary Boundary
	EnemyBoundary  Boundary

	Seed int64

	InitialLength  int
	SegmentSpacing float64
	PlayerRadius   float64
	NeckSegments   int // segments behind the head ignored by self-collision (continuous)

	BaseMoveInterval time.Duration
	MinMoveInterval  time.Duration
	MaxMovesPerFrame int

	CruiseSpeed         float64
	MaxSpeed            float64
	AggressiveSmoothing float64 // per 1/60 s, input magnitude > 0.5
	GentleSmoothing     float64
	BrakeSmoothing      float64
	BrakeTapWindow      time.Duration // braking after a single brake press

	LevelDivisor    int
	BossEveryLevels int

	SpawnMargin   float64
	DespawnMargin float64
	Spawns        [categoryCount]SpawnRule
	Kinds         [KindCount]KindSpec

	LaserTTL    time.Duration
	LaserLength float64
	LaserRadius float64

	BeamLength   float64
	BeamTTL      time.Duration
	BeamCooldown time.Duration

	HissInterval  time.Duration
	MaxFrameDelta time.Duration
	BurstSize     int

	Planets []Planet

	Logger *log.Logger
}

// defaultKinds is the entity type table shared by the planar presets.
func defaultKinds() [KindCount]KindSpec {
	return [KindCount]KindSpec{
		KindPointDrop: {
			Class: ClassPickup, Category: CategoryPickup, Outcome: OutcomeConsume,
			Score: 10, Growth: 1, Radius: 0.45, Speed: 2.5, Motion: MotionBob,
			Amplitude: 0.4, Frequency: 3, Weight: 6,
			Color: color.RGBA{R: 80, G: 255, B: 200, A: 255},
		},
		KindCow: {
			Class: ClassPickup, Category: CategoryPickup, Outcome: OutcomeConsume,
			Score: 25, Growth: 2, Radius: 0.7, Speed: 3, Motion: MotionBob,
			Amplitude: 1.2, Frequency: 1.5, Weight: 2,
			Color: color.RGBA{R: 255, G: 240, B: 250, A: 255},
		},
		KindUFO: {
			Class: ClassEnemy, Category: CategoryEnemy, Outcome: OutcomeEliminate,
			Score: 30, Radius: 0.9, Speed: 3.5, Motion: MotionFigureEight,
			Amplitude: 3, Frequency: 1.2, ShootCooldown: 2200 * time.Millisecond,
			Weight: 3, Color: color.RGBA{R: 255, G: 60, B: 230, A: 255},
		},
		KindCrocodile: {
			Class: ClassEnemy, Category: CategoryEnemy, Outcome: OutcomeFatal,
			Score: 0, Radius: 0.9, Speed: 4, Motion: MotionSpiral,
			Frequency: 0.25, Weight: 2,
			Color: color.RGBA{R: 90, G: 255, B: 60, A: 255},
		},
		KindAnomaly: {
			Class: ClassPickup, Category: CategoryAnomaly, Outcome: OutcomeConsume,
			Score: 50, Growth: 3, Radius: 0.8, Speed: 2, Motion: MotionFigureEight,
			Amplitude: 1.5, Frequency: 2, Lifetime: 14 * time.Second, Weight: 1,
			Color: color.RGBA{R: 255, G: 200, B: 40, A: 255},
		},
		KindPenguinBoss: {
			Class: ClassBoss, Category: CategoryBoss, Outcome: OutcomeFatal,
			Score: 200, Radius: 2.2, Speed: 2, Motion: MotionFigureEight,
			Amplitude: 3, Frequency: 0.6, ShootCooldown: 1100 * time.Millisecond,
			HP: 3, Weight: 1, Color: color.RGBA{R: 120, G: 200, B: 255, A: 255},
		},
	}
}

func defaultPlanets() []Planet {
	return []Planet{
		{Name: "Neon Prime", SpeedMul: 1, SpawnMul: 1, Tint: color.RGBA{R: 10, G: 6, B: 30, A: 255}},
		{Name: "Cocoa Reach", SpeedMul: 1.15, SpawnMul: 0.9, Tint: color.RGBA{R: 30, G: 12, B: 8, A: 255}},
		{Name: "Ion Drift", SpeedMul: 1.3, SpawnMul: 0.8, Tint: color.RGBA{R: 4, G: 24, B: 30, A: 255}},
	}
}

// GridConfig is the classic 60×40 wrap-around snake shooter.
func GridConfig() Config {
	return Config{
		Topology:         TopologyGrid,
		Width:            60,
		Height:           40,
		PlayerBoundary:   BoundaryWrap,
		EnemyBoundary:    BoundaryNone,
		Seed:             1,
		InitialLength:    DefaultInitialLength,
		SegmentSpacing:   1,
		PlayerRadius:     0.5,
		NeckSegments:     1,
		BaseMoveInterval: DefaultBaseMoveInterval,
		MinMoveInterval:  DefaultMinMoveInterval,
		MaxMovesPerFrame: DefaultMaxMovesPerFrame,
		LevelDivisor:     DefaultLevelDivisor,
		BossEveryLevels:  DefaultBossEveryLevels,
		SpawnMargin:      2,
		DespawnMargin:    6,
		Spawns: [categoryCount]SpawnRule{
			CategoryPickup:  {Interval: 1800 * time.Millisecond, Max: 6},
			CategoryEnemy:   {Interval: 4 * time.Second, Max: 4},
			CategoryAnomaly: {Interval: 20 * time.Second, Max: 1},
			CategoryBoss:    {Max: 1},
		},
		Kinds:         defaultKinds(),
		LaserTTL:      DefaultLaserTTL,
		LaserLength:   14,
		LaserRadius:   0.35,
		BeamLength:    10,
		BeamTTL:       250 * time.Millisecond,
		BeamCooldown:  900 * time.Millisecond,
		HissInterval:  DefaultHissInterval,
		MaxFrameDelta: DefaultMaxFrameDelta,
		BurstSize:     DefaultBurstSize,
		Planets:       defaultPlanets(),
	}
}

// GridWallsConfig is the grid variant where the edge is a fatal wall.
func GridWallsConfig() Config {
	cfg := GridConfig()
	cfg.PlayerBoundary = BoundaryFatal
	return cfg
}

// PlaneConfig is the free-roaming 2D variant. Enemy bodies are fatal here.
func PlaneConfig() Config {
	cfg := GridConfig()
	cfg.Topology = TopologyPlane
	cfg.Width, cfg.Height = 96, 64
	cfg.PlayerBoundary = BoundaryWrap
	cfg.SegmentSpacing = 0.8
	cfg.PlayerRadius = 0.6
	cfg.NeckSegments = 4
	cfg.CruiseSpeed = 6
	cfg.MaxSpeed = 16
	cfg.AggressiveSmoothing = 0.25
	cfg.GentleSmoothing = 0.08
	cfg.BrakeSmoothing = 0.2
	cfg.BrakeTapWindow = 400 * time.Millisecond
	cfg.Kinds[KindUFO].Outcome = OutcomeFatal
	return cfg
}

// SphereConfig is the 3D motor-snake variant on a planet shell.
func SphereConfig() Config {
	cfg := PlaneConfig()
	cfg.Topology = TopologySphere
	cfg.ShellInner, cfg.ShellOuter = 18, 20
	cfg.Width, cfg.Height = 40, 40
	cfg.PlayerBoundary = BoundarySurface
	cfg.EnemyBoundary = BoundarySurface
	cfg.Kinds[KindUFO].Outcome = OutcomeEliminate
	for k := range cfg.Kinds {
		cfg.Kinds[k].Motion = MotionOrbit
		if cfg.Kinds[k].Lifetime == 0 {
			cfg.Kinds[k].Lifetime = 30 * time.Second
		}
	}
	return cfg
}

// SphereInnerConfig is the sphere variant played on the inner shell.
func SphereInnerConfig() Config {
	cfg := SphereConfig()
	cfg.WorldMode = WorldInner
	return cfg
}

// ShellRadius is the surface the sphere variant is constrained to.
func (c *Config) ShellRadius() float64 {
	if c.WorldMode == WorldInner {
		return c.ShellInner
	}
	return c.ShellOuter
}

// Center is the middle of the world.
func (c *Config) Center() Vec {
	if c.Topology == TopologySphere {
		return Vec{}
	}
	return V2(c.Width/2, c.Height/2)
}

// Validate reports the first nonsensical setting.
func (c *Config) Validate() error {
	switch {
	case c.Topology != TopologySphere && (c.Width < 4 || c.Height < 4):
		return fmt.Errorf("%w: world %gx%g too small", ErrInvalidConfig, c.Width, c.Height)
	case c.Topology == TopologySphere && (c.ShellInner <= 0 || c.ShellOuter < c.ShellInner):
		return fmt.Errorf("%w: shell radii %g/%g", ErrInvalidConfig, c.ShellInner, c.ShellOuter)
	case c.InitialLength < 1:
		return fmt.Errorf("%w: initial length %d", ErrInvalidConfig, c.InitialLength)
	case c.LevelDivisor <= 0:
		return fmt.Errorf("%w: level divisor %d", ErrInvalidConfig, c.LevelDivisor)
	case c.MaxFrameDelta <= 0:
		return fmt.Errorf("%w: max frame delta %s", ErrInvalidConfig, c.MaxFrameDelta)
	case c.LaserTTL <= 0:
		return fmt.Errorf("%w: laser ttl %s", ErrInvalidConfig, c.LaserTTL)
	case len(c.Planets) == 0:
		return fmt.Errorf("%w: no planets", ErrInvalidConfig)
	}
	if c.Topology == TopologyGrid {
		if c.BaseMoveInterval <= 0 || c.MinMoveInterval <= 0 {
			return fmt.Errorf("%w: move interval %s/%s", ErrInvalidConfig, c.BaseMoveInterval, c.MinMoveInterval)
		}
		if c.PlayerBoundary != BoundaryWrap && c.PlayerBoundary != BoundaryFatal {
			return fmt.Errorf("%w: grid player boundary %s", ErrInvalidConfig, c.PlayerBoundary)
		}
		if float64(c.InitialLength) >= c.Width/2 {
			return fmt.Errorf("%w: initial length %d does not fit", ErrInvalidConfig, c.InitialLength)
		}
	} else if c.CruiseSpeed <= 0 || c.MaxSpeed < c.CruiseSpeed {
		return fmt.Errorf("%w: speeds %g/%g", ErrInvalidConfig, c.CruiseSpeed, c.MaxSpeed)
	}
	if c.Topology == TopologySphere && c.PlayerBoundary != BoundarySurface {
		return fmt.Errorf("%w: sphere player boundary %s", ErrInvalidConfig, c.PlayerBoundary)
	}
	for k, spec := range c.Kinds {
		if spec.Radius <= 0 {
			return fmt.Errorf("%w: kind %s has no radius", ErrInvalidConfig, Kind(k))
		}
		if spec.Class == ClassBoss && spec.HP <= 0 {
			return fmt.Errorf("%w: boss %s has no hp", ErrInvalidConfig, Kind(k))
		}
	}
	return nil
}

func (c *Config) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return c.Logger
}

// moveInterval is the grid movement period at a level.
func (c *Config) moveInterval(level int) time.Duration {
	if level < 1 {
		level = 1
	}
	d := c.BaseMoveInterval / time.Duration(level)
	if d < c.MinMoveInterval {
		d = c.MinMoveInterval
	}
	return d
}
