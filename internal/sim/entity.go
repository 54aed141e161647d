package sim

import (
	"image/color"
	"time"
)

// ID identifies a registry entry. IDs increase monotonically and are never reused.
type ID uint32

// Kind is the type tag of an obstacle, pickup, enemy or boss.
type Kind int

const (
	KindPointDrop Kind = iota
	KindCow
	KindUFO
	KindCrocodile
	KindAnomaly
	KindPenguinBoss
	KindCount
)

var kindNames = [KindCount]string{
	KindPointDrop:   "point-drop",
	KindCow:         "flying-cow",
	KindUFO:         "ufo",
	KindCrocodile:   "crocodile",
	KindAnomaly:     "anomaly",
	KindPenguinBoss: "penguin-boss",
}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Class groups kinds by their draw layer and collision pass.
type Class int

const (
	ClassPickup Class = iota
	ClassEnemy
	ClassBoss
)

// Outcome is what happens when the player's head touches an entity.
type Outcome int

const (
	OutcomeConsume   Outcome = iota // growth + score, entity removed
	OutcomeEliminate                // score + elimination, entity removed
	OutcomeFatal                    // session ends
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConsume:
		return "consume"
	case OutcomeEliminate:
		return "eliminate"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Motion selects the pure motion function of a kind.
type Motion int

const (
	MotionDrift       Motion = iota // straight line
	MotionBob                       // drift plus perpendicular sine
	MotionFigureEight               // drifting lissajous
	MotionSpiral                    // radial approach toward the world centre
	MotionOrbit                     // great-circle orbit on the sphere shell
)

// SpawnCategory selects which spawner timer creates a kind.
type SpawnCategory int

const (
	CategoryPickup SpawnCategory = iota
	CategoryEnemy
	CategoryAnomaly
	CategoryBoss
	categoryCount
)

func (c SpawnCategory) String() string {
	switch c {
	case CategoryPickup:
		return "pickup"
	case CategoryEnemy:
		return "enemy"
	case CategoryAnomaly:
		return "anomaly"
	case CategoryBoss:
		return "boss"
	default:
		return "unknown"
	}
}

// KindSpec is one row of the entity type table.
type KindSpec struct {
	Class    Class
	Category SpawnCategory
	Outcome  Outcome
	Score    int
	Growth   int
	Radius   float64
	Speed    float64 // world units per second
	Motion   Motion

	Amplitude float64 // world units, bob/figure-eight size
	Frequency float64 // radians per second

	ShootCooldown time.Duration // zero never shoots
	Lifetime      time.Duration // zero lives until it leaves the world
	HP            int           // beam hits to eliminate; bosses only
	Weight        int           // relative spawn weight inside its category
	Color         color.RGBA
}

// Entity is a pickup, enemy or boss. Its position is derived from the motion
// function each tick and cached in Pos.
type Entity struct {
	ID        ID
	Kind      Kind
	Origin    Vec
	Velocity  Vec
	Pos       Vec
	SpawnedAt time.Duration
	Phase     float64
	Seed      int64
	Radius    float64
	HP        int
	LastShot  time.Duration

	// Anchored entities ignore their motion function and stay at Origin.
	Anchored bool
}

// Age returns how long the entity has existed at sim time now.
func (e *Entity) Age(now time.Duration) time.Duration { return now - e.SpawnedAt }

// Owner marks who fired a laser.
type Owner int

const (
	OwnerEnemy Owner = iota
	OwnerPlayer
)

// Laser is a beam from Origin along Dir for Length, live for TTL.
type Laser struct {
	ID        ID
	Origin    Vec
	Dir       Vec
	Length    float64
	Radius    float64
	CreatedAt time.Duration
	TTL       time.Duration
	Owner     Owner
	Shooter   ID // entity that fired it; zero for the player

	hits []ID // targets a player beam already struck
}

// End returns the far endpoint of the beam.
func (l *Laser) End() Vec { return l.Origin.Add(l.Dir.Scale(l.Length)) }

func (l *Laser) struck(id ID) bool {
	for _, h := range l.hits {
		if h == id {
			return true
		}
	}
	return false
}

// Live reports whether the beam can still hit at sim time now.
func (l *Laser) Live(now time.Duration) bool { return now-l.CreatedAt <= l.TTL }

// Expired reports whether the pruner drops the beam at sim time now.
func (l *Laser) Expired(now time.Duration) bool { return now-l.CreatedAt >= l.TTL }

// Particle is a transient spark. Life runs from 1 down to 0.
type Particle struct {
	ID    ID
	Pos   Vec
	Vel   Vec
	Life  float64
	Decay float64 // life lost per second
	Size  float64
	Color color.RGBA
}

// Popup is a floating score label.
type Popup struct {
	ID    ID
	Pos   Vec
	Text  string
	Life  time.Duration
	Total time.Duration
	Color color.RGBA
}

// Fade returns the remaining life fraction in [0,1].
func (p *Popup) Fade() float64 {
	if p.Total <= 0 {
		return 0
	}
	return clampF(float64(p.Life)/float64(p.Total), 0, 1)
}
