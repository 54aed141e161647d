package sim

import "time"

// Surface receives one frame of draw calls. Implementations get copies and
// cannot change simulation state through them.
type Surface interface {
	Background(p Planet)
	Playfield(cfg *Config)
	Pickup(e Entity, spec KindSpec)
	Enemy(e Entity, spec KindSpec)
	Boss(e Entity, spec KindSpec)
	Player(s Snake)
	Projectile(l Laser, now time.Duration)
	Particle(p Particle)
	Popup(p Popup)
}

// Render draws the current state in layer order: background, playfield,
// pickups, enemies, boss, player, projectiles, particles, popups. Within a
// layer objects are drawn in ID order. Render never mutates the simulation.
func (sm *Sim) Render(s Surface) {
	cfg := sm.cfg
	s.Background(sm.planet())
	s.Playfield(&cfg)
	for _, class := range [...]Class{ClassPickup, ClassEnemy, ClassBoss} {
		for _, e := range sm.reg.entities {
			spec := sm.cfg.Kinds[e.Kind]
			if spec.Class != class {
				continue
			}
			switch class {
			case ClassPickup:
				s.Pickup(*e, spec)
			case ClassEnemy:
				s.Enemy(*e, spec)
			case ClassBoss:
				s.Boss(*e, spec)
			}
		}
	}
	s.Player(*sm.reg.Snake.clone())
	now := sm.session.Elapsed
	for _, l := range sm.reg.lasers {
		cp := *l
		cp.hits = nil
		s.Projectile(cp, now)
	}
	for _, p := range sm.reg.particles {
		s.Particle(*p)
	}
	for _, p := range sm.reg.popups {
		s.Popup(*p)
	}
}

// Project maps a world position to normalized view coordinates in [0,1]².
// Planar worlds map their rectangle directly. The sphere is drawn as an
// orthographic disc looking down at view; points on the far side report
// visible=false.
func Project(cfg *Config, view, p Vec) (x, y float64, visible bool) {
	if cfg.Topology != TopologySphere {
		x, y = p.X/cfg.Width, p.Y/cfg.Height
		return x, y, x >= 0 && x <= 1 && y >= 0 && y <= 1
	}
	if view.Len() == 0 {
		view = Vec{X: 1}
	}
	east, north := TangentBasis(view)
	r := cfg.ShellOuter
	x = 0.5 + 0.5*p.Dot(east)/r
	y = 0.5 - 0.5*p.Dot(north)/r
	return x, y, p.Dot(view.Norm()) >= 0
}
