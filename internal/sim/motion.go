package sim

import (
	"math"
	"time"
)

const (
	particleDrag = 0.94 // velocity kept per 1/60 s
	popupRise    = 2.0  // world units per second
)

// MotionPos evaluates the motion function of e at sim time now. It depends
// only on the entity's spawn parameters and now, so it is reproducible.
func MotionPos(cfg *Config, e *Entity, now time.Duration) Vec {
	if e.Anchored {
		return e.Origin
	}
	spec := &cfg.Kinds[e.Kind]
	age := e.Age(now).Seconds()
	if age < 0 {
		age = 0
	}
	drift := e.Origin.Add(e.Velocity.Scale(age))
	switch spec.Motion {
	case MotionBob:
		perp := perpendicular(e.Velocity)
		return drift.Add(perp.Scale(spec.Amplitude * math.Sin(spec.Frequency*age+e.Phase)))
	case MotionFigureEight:
		fwd := e.Velocity.Norm()
		perp := perpendicular(e.Velocity)
		a := spec.Frequency*age + e.Phase
		off := fwd.Scale(spec.Amplitude * math.Sin(a)).Add(perp.Scale(spec.Amplitude * 0.5 * math.Sin(2*a)))
		return drift.Add(off)
	case MotionSpiral:
		c := cfg.Center()
		rel := e.Origin.Sub(c)
		r := rel.Len() - spec.Speed*age
		th := math.Atan2(rel.Y, rel.X) + spec.Frequency*age
		return c.Add(V2(math.Cos(th)*r, math.Sin(th)*r))
	case MotionOrbit:
		// Velocity holds the unit rotation axis; the orbit radius is |Origin|.
		radius := e.Origin.Len()
		if radius == 0 {
			return e.Origin
		}
		angle := spec.Speed/radius*age + spec.Amplitude/radius*math.Sin(spec.Frequency*age+e.Phase)
		return rotateAbout(e.Origin, e.Velocity, angle)
	default:
		return drift
	}
}

// perpendicular returns the planar left normal of v, or +Y for a zero vector.
func perpendicular(v Vec) Vec {
	p := V2(-v.Y, v.X).Norm()
	if p.Len() == 0 {
		return V2(0, 1)
	}
	return p
}

// rotateAbout rotates v around the unit axis k by angle (Rodrigues).
func rotateAbout(v, k Vec, angle float64) Vec {
	c, s := math.Cos(angle), math.Sin(angle)
	return v.Scale(c).Add(k.Cross(v).Scale(s)).Add(k.Scale(k.Dot(v) * (1 - c)))
}

// shellClamp pulls p radially into the band [inner, outer].
func shellClamp(p Vec, inner, outer float64) Vec {
	l := p.Len()
	if l == 0 {
		return Vec{X: inner}
	}
	return p.Scale(clampF(l, inner, outer) / l)
}

// applyEnemyBoundary enforces the enemy boundary policy on a computed position.
func applyEnemyBoundary(cfg *Config, p Vec) Vec {
	switch cfg.EnemyBoundary {
	case BoundaryWrap:
		return V2(wrapF(p.X, cfg.Width), wrapF(p.Y, cfg.Height))
	case BoundaryClamp:
		return V2(clampF(p.X, 0, cfg.Width), clampF(p.Y, 0, cfg.Height))
	case BoundarySurface:
		return shellClamp(p, cfg.ShellInner, cfg.ShellOuter)
	default:
		return p
	}
}

// settlePlayer applies the player boundary policy to a continuous head
// position. ok is false when the position hit a fatal wall.
func settlePlayer(cfg *Config, p Vec) (Vec, bool) {
	switch cfg.PlayerBoundary {
	case BoundaryWrap:
		return V2(wrapF(p.X, cfg.Width), wrapF(p.Y, cfg.Height)), true
	case BoundaryFatal:
		if p.X < 0 || p.X >= cfg.Width || p.Y < 0 || p.Y >= cfg.Height {
			return p, false
		}
		return p, true
	case BoundaryClamp:
		return V2(clampF(p.X, 0, cfg.Width), clampF(p.Y, 0, cfg.Height)), true
	case BoundarySurface:
		l := p.Len()
		if l == 0 {
			return Vec{X: cfg.ShellRadius()}, true
		}
		return p.Scale(cfg.ShellRadius() / l), true
	default:
		return p, true
	}
}

// displacement is to-from, taking the short way round on a wrapping plane.
func displacement(cfg *Config, from, to Vec) Vec {
	d := to.Sub(from)
	if cfg.Topology == TopologyPlane && cfg.PlayerBoundary == BoundaryWrap {
		if d.X > cfg.Width/2 {
			d.X -= cfg.Width
		} else if d.X < -cfg.Width/2 {
			d.X += cfg.Width
		}
		if d.Y > cfg.Height/2 {
			d.Y -= cfg.Height
		} else if d.Y < -cfg.Height/2 {
			d.Y += cfg.Height
		}
	}
	return d
}

// TangentBasis returns east/north unit vectors of the tangent plane at p on a
// sphere. Screen-up input maps to north.
func TangentBasis(p Vec) (east, north Vec) {
	up := p.Norm()
	ref := Vec{Z: 1}
	if math.Abs(up.Dot(ref)) > 0.99 {
		ref = Vec{Y: 1}
	}
	east = ref.Cross(up).Norm()
	north = up.Cross(east).Norm()
	return east, north
}

// smoothing converts a per-1/60 s lerp factor into one for dt seconds.
func smoothing(f, dt float64) float64 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 1
	}
	return 1 - math.Pow(1-f, dt*60)
}

// steerContinuous smooths the snake's velocity toward the input target and
// advances the head. ok is false when the head hit a fatal wall.
func steerContinuous(cfg *Config, s *Snake, in InputFrame, dt float64) bool {
	head := s.Head()
	var target Vec
	factor := cfg.GentleSmoothing
	switch {
	case in.Braking:
		factor = cfg.BrakeSmoothing
	case in.Vector.Len() > 0:
		dir := in.Vector
		if cfg.Topology == TopologySphere {
			east, north := TangentBasis(head)
			dir = east.Scale(in.Vector.X).Add(north.Scale(-in.Vector.Y)).Norm()
		}
		target = dir.Scale(cfg.CruiseSpeed + (cfg.MaxSpeed-cfg.CruiseSpeed)*in.Accel)
		if in.Accel > aggressiveThreshold {
			factor = cfg.AggressiveSmoothing
		}
	default:
		target = s.Heading.Scale(cfg.CruiseSpeed)
	}

	s.Vel = s.Vel.Lerp(target, smoothing(factor, dt))
	if cfg.Topology == TopologySphere {
		up := head.Norm()
		s.Vel = s.Vel.Sub(up.Scale(s.Vel.Dot(up)))
	}
	if sp := s.Vel.Len(); sp > 1e-6 {
		s.Heading = s.Vel.Scale(1 / sp)
		s.Speed = sp
	} else {
		s.Speed = 0
	}

	next, ok := settlePlayer(cfg, head.Add(s.Vel.Scale(dt)))
	if !ok {
		return false
	}
	s.Segments[0] = next
	followChain(cfg, s)
	return true
}

// followChain drags every segment toward its leader so links keep spacing.
// Owed growth appends one segment at the tail once the last link is
// stretched to full spacing, so new segments unroll one spacing step apart.
func followChain(cfg *Config, s *Snake) {
	spacing := cfg.SegmentSpacing
	for i := 1; i < len(s.Segments); i++ {
		lead := s.Segments[i-1]
		d := displacement(cfg, lead, s.Segments[i])
		if l := d.Len(); l > spacing {
			p := lead.Add(d.Scale(spacing / l))
			if cfg.Topology == TopologyPlane && cfg.PlayerBoundary == BoundaryWrap {
				p = V2(wrapF(p.X, cfg.Width), wrapF(p.Y, cfg.Height))
			}
			s.Segments[i] = p
		}
		if cfg.Topology == TopologySphere {
			s.Segments[i], _ = settlePlayer(cfg, s.Segments[i])
		}
	}
	if s.GrowthPending == 0 {
		return
	}
	n := len(s.Segments)
	if n < 2 || displacement(cfg, s.Segments[n-2], s.Segments[n-1]).Len() >= spacing*growSlack {
		s.GrowthPending--
		s.Segments = append(s.Segments, s.Segments[n-1])
	}
}

// continuousSelfHit checks the head against segments past the neck.
func continuousSelfHit(cfg *Config, s *Snake) bool {
	head := s.Head()
	r := cfg.PlayerRadius * 0.8
	for i := cfg.NeckSegments + 1; i < len(s.Segments); i++ {
		if displacement(cfg, head, s.Segments[i]).Len() < 2*r {
			return true
		}
	}
	return false
}

// integrateVFX advances particles and popups. Life only decreases.
func integrateVFX(r *Registry, dt float64) {
	drag := math.Pow(particleDrag, dt*60)
	for _, p := range r.particles {
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		p.Vel = p.Vel.Scale(drag)
		p.Life -= p.Decay * dt
	}
	step := time.Duration(dt * float64(time.Second))
	for _, p := range r.popups {
		p.Pos.Y -= popupRise * dt
		p.Life -= step
	}
}
