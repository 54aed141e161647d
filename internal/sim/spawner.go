package sim

import (
	"math"
	"time"
)

// Spawn placement and boss volley tuning.
const (
	wobbleReach = 1.2 // bound on |offset|/Amplitude for bob and figure-eight

	bossVolley = 3
	bossSpread = 0.25 // radians between volley beams
)

// spawner owns the per-category timers. Timers only advance while the
// session is running, so pausing freezes them.
type spawner struct {
	timers   [categoryCount]time.Duration
	disabled bool
}

func (sp *spawner) reset() {
	*sp = spawner{disabled: sp.disabled}
}

// spawnStep advances the timers, creates due entities, lets armed enemies
// fire and handles the player's beam request.
func (sm *Sim) spawnStep(dt, now time.Duration, in InputFrame) {
	if !sm.spawner.disabled {
		planet := sm.planet()
		for cat := CategoryPickup; cat < CategoryBoss; cat++ {
			rule := sm.cfg.Spawns[cat]
			if rule.Interval <= 0 {
				continue
			}
			interval := time.Duration(float64(rule.Interval) * planet.SpawnMul)
			sm.spawner.timers[cat] += dt
			if sm.spawner.timers[cat] < interval {
				continue
			}
			sm.spawner.timers[cat] = 0
			if sm.reg.CountCategory(&sm.cfg, cat) >= rule.Max {
				continue
			}
			if k, ok := sm.pickKind(cat); ok {
				sm.Spawn(k, now)
			}
		}
		sm.maybeSpawnBoss(now)
	}
	sm.fireEnemyLasers(now)
	if in.Shake {
		sm.fireBeam(now)
	}
}

func (sm *Sim) planet() Planet {
	return sm.cfg.Planets[sm.session.Planet%len(sm.cfg.Planets)]
}

// pickKind draws a kind from cat, weighted by KindSpec.Weight.
func (sm *Sim) pickKind(cat SpawnCategory) (Kind, bool) {
	total := 0
	for _, spec := range sm.cfg.Kinds {
		if spec.Category == cat && spec.Weight > 0 {
			total += spec.Weight
		}
	}
	if total == 0 {
		return 0, false
	}
	n := sm.rng.Intn(total)
	for k, spec := range sm.cfg.Kinds {
		if spec.Category != cat || spec.Weight <= 0 {
			continue
		}
		if n < spec.Weight {
			return Kind(k), true
		}
		n -= spec.Weight
	}
	return 0, false
}

// maybeSpawnBoss spawns a boss once per multiple of BossEveryLevels, and only
// while none is active.
func (sm *Sim) maybeSpawnBoss(now time.Duration) {
	every := sm.cfg.BossEveryLevels
	if every <= 0 || sm.cfg.Spawns[CategoryBoss].Max <= 0 {
		return
	}
	due := sm.session.Level / every * every
	if due < every || due <= sm.session.bossLevel {
		return
	}
	if sm.reg.Boss(&sm.cfg) != nil {
		return
	}
	k, ok := sm.pickKind(CategoryBoss)
	if !ok {
		return
	}
	sm.session.bossLevel = due
	e := sm.Spawn(k, now)
	sm.emit(Event{Kind: EventBossSpawned, Pos: e.Pos, Entity: e.ID, EntityKind: k, Value: due})
	sm.log.Printf("boss %s spawned for level %d", k, due)
}

// Spawn places a new entity of kind k at the periphery and registers it.
func (sm *Sim) Spawn(k Kind, now time.Duration) *Entity {
	spec := &sm.cfg.Kinds[k]
	speed := spec.Speed * sm.planet().SpeedMul
	e := &Entity{
		Kind:      k,
		SpawnedAt: now,
		Phase:     sm.rng.Float64() * 2 * math.Pi,
		Seed:      sm.rng.Int63(),
		Radius:    spec.Radius,
		HP:        spec.HP,
		LastShot:  now,
	}
	if sm.cfg.Topology == TopologySphere {
		e.Origin, e.Velocity = sm.sphereSpawn()
	} else {
		e.Origin, e.Velocity = sm.edgeSpawn(spec, speed)
	}
	e.Pos = applyEnemyBoundary(&sm.cfg, MotionPos(&sm.cfg, e, now))
	sm.reg.AddEntity(e)
	return e
}

// edgeSpawn picks a point outside a random edge, heading toward a random
// point in the middle half of the world. The distance covers the kind's
// radius and wobble so the body starts fully out of view.
func (sm *Sim) edgeSpawn(spec *KindSpec, speed float64) (origin, vel Vec) {
	w, h := sm.cfg.Width, sm.cfg.Height
	m := sm.cfg.SpawnMargin + wobbleReach*spec.Amplitude + spec.Radius
	switch sm.rng.Intn(4) {
	case 0:
		origin = V2(sm.rng.Float64()*w, -m)
	case 1:
		origin = V2(w+m, sm.rng.Float64()*h)
	case 2:
		origin = V2(sm.rng.Float64()*w, h+m)
	default:
		origin = V2(-m, sm.rng.Float64()*h)
	}
	target := V2(w*(0.25+0.5*sm.rng.Float64()), h*(0.25+0.5*sm.rng.Float64()))
	vel = target.Sub(origin).Norm().Scale(speed)
	return origin, vel
}

// sphereSpawn picks a point on the hemisphere opposite the player's head and
// a random orbit axis through it. The axis is returned in vel.
func (sm *Sim) sphereSpawn() (origin, axis Vec) {
	u := Vec{X: sm.rng.NormFloat64(), Y: sm.rng.NormFloat64(), Z: sm.rng.NormFloat64()}.Norm()
	if u.Len() == 0 {
		u = Vec{X: 1}
	}
	if head := sm.reg.Snake.Head(); u.Dot(head) > 0 {
		u = u.Scale(-1)
	}
	r := Vec{X: sm.rng.NormFloat64(), Y: sm.rng.NormFloat64(), Z: sm.rng.NormFloat64()}
	axis = u.Cross(r).Norm()
	if axis.Len() == 0 {
		axis = u.Cross(Vec{Z: 1}).Norm()
	}
	return u.Scale(sm.cfg.ShellRadius()), axis
}

// fireEnemyLasers lets every armed entity whose cooldown elapsed fire at the
// player's head.
func (sm *Sim) fireEnemyLasers(now time.Duration) {
	head := sm.reg.Snake.Head()
	for _, e := range sm.reg.Entities() {
		spec := &sm.cfg.Kinds[e.Kind]
		if spec.ShootCooldown <= 0 || now-e.LastShot < spec.ShootCooldown {
			continue
		}
		e.LastShot = now
		aim := displacement(&sm.cfg, e.Pos, head).Norm()
		if aim.Len() == 0 {
			continue
		}
		shots := 1
		if spec.Class == ClassBoss && sm.cfg.Topology != TopologySphere {
			shots = bossVolley
		}
		for i := 0; i < shots; i++ {
			dir := aim
			if shots > 1 {
				a := float64(i-shots/2) * bossSpread
				c, s := math.Cos(a), math.Sin(a)
				dir = V2(aim.X*c-aim.Y*s, aim.X*s+aim.Y*c)
			}
			l := &Laser{
				Origin:    e.Pos,
				Dir:       dir,
				Length:    sm.cfg.LaserLength,
				Radius:    sm.cfg.LaserRadius,
				CreatedAt: now,
				TTL:       sm.cfg.LaserTTL,
				Owner:     OwnerEnemy,
				Shooter:   e.ID,
			}
			sm.reg.AddLaser(l)
			sm.emit(Event{Kind: EventLaserFired, Pos: e.Pos, Entity: e.ID, EntityKind: e.Kind})
		}
	}
}

// fireBeam shoots the player's tongue beam along the heading, subject to its
// cooldown.
func (sm *Sim) fireBeam(now time.Duration) {
	s := sm.reg.Snake
	if sm.cfg.BeamLength <= 0 || !s.Alive {
		return
	}
	if s.lastBeam > 0 && now-s.lastBeam < sm.cfg.BeamCooldown {
		return
	}
	dir := s.Heading
	if sm.cfg.Topology == TopologyGrid {
		d := s.Dir.Delta()
		dir = V2(float64(d.X), float64(d.Y))
	}
	if dir.Len() == 0 {
		return
	}
	s.lastBeam = now
	sm.reg.AddLaser(&Laser{
		Origin:    s.Head(),
		Dir:       dir.Norm(),
		Length:    sm.cfg.BeamLength,
		Radius:    sm.cfg.LaserRadius,
		CreatedAt: now,
		TTL:       sm.cfg.BeamTTL,
		Owner:     OwnerPlayer,
	})
	sm.emit(Event{Kind: EventLaserFired, Pos: s.Head(), Detail: "beam"})
}
