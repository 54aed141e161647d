package sim

import "time"

// CirclesOverlap reports whether two circles (or spheres) intersect: the
// distance between centres is less than the sum of radii.
func CirclesOverlap(a Vec, ra float64, b Vec, rb float64) bool {
	d := a.Sub(b)
	r := ra + rb
	return d.Dot(d) < r*r
}

// PointSegmentDistance projects p onto segment ab, clamps the projection to
// the segment and returns the remaining distance.
func PointSegmentDistance(p, a, b Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := clampF(p.Sub(a).Dot(ab)/l2, 0, 1)
	return p.Dist(a.Add(ab.Scale(t)))
}

// PointNearSegment reports whether p is within r of segment ab.
func PointNearSegment(p, a, b Vec, r float64) bool {
	return PointSegmentDistance(p, a, b) <= r
}

// ContactKind classifies a detected collision.
type ContactKind int

const (
	ContactPickup ContactKind = iota // head touched a pickup
	ContactEnemy                     // head touched an enemy or boss body
	ContactLaser                     // an enemy beam crossed the head
	ContactBeam                      // the player's beam crossed an enemy or boss
)

func (k ContactKind) String() string {
	switch k {
	case ContactPickup:
		return "pickup"
	case ContactEnemy:
		return "enemy"
	case ContactLaser:
		return "laser"
	case ContactBeam:
		return "beam"
	default:
		return "unknown"
	}
}

// Contact is one collision reported to the rule engine.
type Contact struct {
	Kind   ContactKind
	Entity ID
	Laser  ID
	Pos    Vec
}

// detect runs the collision passes in fixed order: pickups, enemy bodies,
// enemy lasers, then player beams against enemies. It does not mutate the
// registry except to remember which targets a beam already struck.
func detect(cfg *Config, r *Registry, now time.Duration) []Contact {
	var out []Contact
	snake := r.Snake
	if snake == nil || !snake.Alive {
		return nil
	}
	head := snake.Head()
	hr := cfg.PlayerRadius

	for _, e := range r.entities {
		if cfg.Kinds[e.Kind].Class != ClassPickup {
			continue
		}
		if CirclesOverlap(head, hr, e.Pos, e.Radius) {
			out = append(out, Contact{Kind: ContactPickup, Entity: e.ID, Pos: e.Pos})
		}
	}
	for _, e := range r.entities {
		if cfg.Kinds[e.Kind].Class == ClassPickup {
			continue
		}
		if CirclesOverlap(head, hr, e.Pos, e.Radius) {
			out = append(out, Contact{Kind: ContactEnemy, Entity: e.ID, Pos: e.Pos})
		}
	}
	for _, l := range r.lasers {
		if l.Owner != OwnerEnemy || !l.Live(now) {
			continue
		}
		if PointNearSegment(head, l.Origin, l.End(), l.Radius+hr) {
			out = append(out, Contact{Kind: ContactLaser, Laser: l.ID, Pos: head})
		}
	}
	for _, l := range r.lasers {
		if l.Owner != OwnerPlayer || !l.Live(now) {
			continue
		}
		for _, e := range r.entities {
			if cfg.Kinds[e.Kind].Class == ClassPickup || l.struck(e.ID) {
				continue
			}
			if PointNearSegment(e.Pos, l.Origin, l.End(), l.Radius+e.Radius) {
				l.hits = append(l.hits, e.ID)
				out = append(out, Contact{Kind: ContactBeam, Entity: e.ID, Laser: l.ID, Pos: e.Pos})
			}
		}
	}
	return out
}
