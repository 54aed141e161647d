package sim

import "time"

// prune drops dead particles and popups, expired lasers, and entities that
// outlived their lifetime or left the world past the despawn margin.
func (sm *Sim) prune(now time.Duration) {
	r := sm.reg
	r.pruneParticles(func(p *Particle) bool { return p.Life > 0 })
	r.prunePopups(func(p *Popup) bool { return p.Life > 0 })
	r.pruneLasers(func(l *Laser) bool { return !l.Expired(now) })
	r.pruneEntities(func(e *Entity) bool { return sm.inPlay(e, now) })
}

func (sm *Sim) inPlay(e *Entity, now time.Duration) bool {
	spec := &sm.cfg.Kinds[e.Kind]
	if spec.Lifetime > 0 && e.Age(now) >= spec.Lifetime {
		return false
	}
	if sm.cfg.Topology == TopologySphere || sm.cfg.EnemyBoundary != BoundaryNone || e.Anchored {
		return true
	}
	m := sm.cfg.DespawnMargin + 2*wobbleReach*spec.Amplitude + spec.Radius
	p := e.Pos
	return p.X >= -m && p.X <= sm.cfg.Width+m && p.Y >= -m && p.Y <= sm.cfg.Height+m
}
