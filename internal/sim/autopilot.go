package sim

import "math"

// dangerRadius is how close, in world units, the autopilot lets a fatal
// entity come before steering away from it.
const dangerRadius = 4.0

// Autopilot is a greedy controller for headless runs and the attract mode.
// It writes only to the sampler, like any other input source.
type Autopilot struct {
	lastMove int
}

// Steer feeds the next decision into sm's sampler.
func (a *Autopilot) Steer(sm *Sim) {
	if sm.session.State != StateRunning {
		return
	}
	if sm.cfg.Topology == TopologyGrid {
		a.steerGrid(sm)
		return
	}
	a.steerFree(sm)
}

// steerGrid picks, once per move, the safe direction closest to the nearest
// pickup.
func (a *Autopilot) steerGrid(sm *Sim) {
	if sm.session.Moves == a.lastMove && sm.session.Moves > 0 {
		return
	}
	a.lastMove = sm.session.Moves
	s := sm.reg.Snake
	target, ok := sm.nearestPickup(s.Head())

	best, bestScore := DirNone, math.Inf(1)
	for _, d := range [...]Direction{DirUp, DirDown, DirLeft, DirRight} {
		if d == s.Dir.Opposite() {
			continue
		}
		next, legal := gridStep(&sm.cfg, s.Head(), d)
		if !legal || s.gridSelfHit(next) {
			continue
		}
		score := float64(len(s.Segments)) * 4
		if ok {
			score = sm.gridDistance(next, target)
		}
		score += sm.threat(next) * 100
		if d == s.Dir {
			score -= 0.1
		}
		if score < bestScore {
			best, bestScore = d, score
		}
	}
	if best != DirNone && best != s.Dir {
		sm.input.QueueDirection(best)
	}
	if sm.enemyAhead(s.Head(), s.Heading) {
		sm.input.Press(KeyShake)
		sm.input.Release(KeyShake)
	}
}

// steerFree points the steering vector at the nearest pickup, bending away
// from fatal entities.
func (a *Autopilot) steerFree(sm *Sim) {
	s := sm.reg.Snake
	head := s.Head()
	var want Vec
	if target, ok := sm.nearestPickup(head); ok {
		want = displacement(&sm.cfg, head, target).Norm()
	} else {
		want = s.Heading
	}
	for _, e := range sm.reg.entities {
		if sm.cfg.Kinds[e.Kind].Outcome != OutcomeFatal {
			continue
		}
		away := displacement(&sm.cfg, e.Pos, head)
		if d := away.Len(); d < dangerRadius+e.Radius && d > 0 {
			want = want.Add(away.Scale(2 / d))
		}
	}
	if sm.cfg.Topology == TopologySphere {
		east, north := TangentBasis(head)
		want = V2(want.Dot(east), -want.Dot(north))
	}
	want = want.Norm()
	sm.input.ApplyIntent(Intent{
		X:     want.X,
		Y:     want.Y,
		Accel: 0.4,
		Shake: sm.enemyAhead(head, s.Heading),
	})
}

func (sm *Sim) nearestPickup(from Vec) (Vec, bool) {
	best, bestD := Vec{}, math.Inf(1)
	for _, e := range sm.reg.entities {
		if sm.cfg.Kinds[e.Kind].Class != ClassPickup {
			continue
		}
		if sm.cfg.Topology != TopologySphere && !sm.inWorld(e.Pos) {
			continue
		}
		if d := displacement(&sm.cfg, from, e.Pos).Len(); d < bestD {
			best, bestD = e.Pos, d
		}
	}
	return best, !math.IsInf(bestD, 1)
}

func (sm *Sim) inWorld(p Vec) bool {
	return p.X >= 0 && p.X < sm.cfg.Width && p.Y >= 0 && p.Y < sm.cfg.Height
}

// gridDistance is the Manhattan distance, the short way round on a
// wrapping grid.
func (sm *Sim) gridDistance(a, b Vec) float64 {
	dx, dy := math.Abs(a.X-b.X), math.Abs(a.Y-b.Y)
	if sm.cfg.PlayerBoundary == BoundaryWrap {
		dx = math.Min(dx, sm.cfg.Width-dx)
		dy = math.Min(dy, sm.cfg.Height-dy)
	}
	return dx + dy
}

// threat is 1 when a fatal entity or enemy beam is close to p.
func (sm *Sim) threat(p Vec) float64 {
	for _, e := range sm.reg.entities {
		if sm.cfg.Kinds[e.Kind].Outcome != OutcomeFatal {
			continue
		}
		if CirclesOverlap(p, sm.cfg.PlayerRadius+1, e.Pos, e.Radius) {
			return 1
		}
	}
	for _, l := range sm.reg.lasers {
		if l.Owner == OwnerEnemy && PointNearSegment(p, l.Origin, l.End(), l.Radius+sm.cfg.PlayerRadius) {
			return 1
		}
	}
	return 0
}

// enemyAhead reports whether the beam would strike something from head
// along heading.
func (sm *Sim) enemyAhead(head, heading Vec) bool {
	if heading.Len() == 0 || sm.cfg.BeamLength <= 0 {
		return false
	}
	end := head.Add(heading.Norm().Scale(sm.cfg.BeamLength))
	for _, e := range sm.reg.entities {
		if sm.cfg.Kinds[e.Kind].Class == ClassPickup {
			continue
		}
		if PointNearSegment(e.Pos, head, end, sm.cfg.LaserRadius+e.Radius) {
			return true
		}
	}
	return false
}
