package sim

import (
	"fmt"
	"image/color"
	"math"
	"time"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Cause records why a session ended.
type Cause int

const (
	CauseNone Cause = iota
	CauseWall
	CauseSelf
	CauseEnemy
	CauseLaser
)

func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseWall:
		return "wall"
	case CauseSelf:
		return "self"
	case CauseEnemy:
		return "enemy"
	case CauseLaser:
		return "laser"
	default:
		return "unknown"
	}
}

const popupLife = 900 * time.Millisecond

// Session is the scoreboard and lifecycle of one run.
type Session struct {
	State        State
	Score        int
	Level        int
	Eliminations int
	Eaten        int
	Planet       int
	Cause        Cause
	Killer       Kind // set when Cause is CauseEnemy or CauseLaser

	Tick    int           // pipeline passes run while Running
	Moves   int           // committed grid moves
	Elapsed time.Duration // sim time while Running

	lastHiss  time.Duration
	bossLevel int // highest boss level already spawned
}

func newSession() Session {
	return Session{State: StateIdle, Level: 1}
}

// LevelFor is floor(score/divisor)+1.
func LevelFor(score, divisor int) int {
	if divisor <= 0 || score < 0 {
		return 1
	}
	return score/divisor + 1
}

// FinalScore returns the score and whether the session has ended.
func (s Session) FinalScore() (int, bool) {
	return s.Score, s.State == StateGameOver
}

// addScore adds n and reports whether the level went up.
func (sm *Sim) addScore(n int) bool {
	ses := &sm.session
	ses.Score += n
	lvl := LevelFor(ses.Score, sm.cfg.LevelDivisor)
	if lvl <= ses.Level {
		return false
	}
	ses.Level = lvl
	sm.emit(Event{Kind: EventLevelUp, Value: lvl})
	sm.log.Printf("level %d at score %d", lvl, ses.Score)
	return true
}

// applyRules resolves contacts in detection order. A contact whose entity
// or laser was already resolved this pass is skipped.
func (sm *Sim) applyRules(contacts []Contact, now time.Duration) {
	for _, c := range contacts {
		if sm.session.State != StateRunning {
			return
		}
		switch c.Kind {
		case ContactPickup:
			e := sm.reg.Entity(c.Entity)
			if e == nil {
				continue
			}
			sm.resolveOutcome(e, sm.cfg.Kinds[e.Kind].Outcome)
		case ContactEnemy:
			e := sm.reg.Entity(c.Entity)
			if e == nil {
				continue
			}
			sm.resolveOutcome(e, sm.cfg.Kinds[e.Kind].Outcome)
		case ContactLaser:
			l := sm.reg.Laser(c.Laser)
			if l == nil {
				continue
			}
			killer := KindUFO
			if e := sm.reg.Entity(l.Shooter); e != nil {
				killer = e.Kind
			}
			sm.reg.RemoveLaser(l.ID)
			sm.session.Killer = killer
			sm.gameOver(CauseLaser)
		case ContactBeam:
			e := sm.reg.Entity(c.Entity)
			if e == nil {
				continue
			}
			sm.beamHit(e)
		}
	}
	sm.hiss(now)
}

func (sm *Sim) resolveOutcome(e *Entity, o Outcome) {
	spec := &sm.cfg.Kinds[e.Kind]
	switch o {
	case OutcomeConsume:
		sm.reg.RemoveEntity(e.ID)
		sm.reg.Snake.GrowthPending += spec.Growth
		sm.session.Eaten++
		sm.burst(e.Pos, spec.Color)
		sm.popup(e.Pos, fmt.Sprintf("+%d", spec.Score), spec.Color)
		sm.emit(Event{Kind: EventPickupEaten, Pos: e.Pos, Entity: e.ID, EntityKind: e.Kind, Value: spec.Score})
		sm.addScore(spec.Score)
		if e.Kind == KindAnomaly {
			sm.shiftPlanet()
		}
	case OutcomeEliminate:
		sm.eliminate(e)
	case OutcomeFatal:
		sm.session.Killer = e.Kind
		sm.gameOver(CauseEnemy)
	}
}

func (sm *Sim) eliminate(e *Entity) {
	spec := &sm.cfg.Kinds[e.Kind]
	sm.reg.RemoveEntity(e.ID)
	sm.session.Eliminations++
	sm.burst(e.Pos, spec.Color)
	sm.popup(e.Pos, fmt.Sprintf("+%d", spec.Score), spec.Color)
	sm.emit(Event{Kind: EventElimination, Pos: e.Pos, Entity: e.ID, EntityKind: e.Kind, Value: spec.Score})
	sm.addScore(spec.Score)
}

// beamHit damages a boss or eliminates any other enemy.
func (sm *Sim) beamHit(e *Entity) {
	if sm.cfg.Kinds[e.Kind].Class != ClassBoss {
		sm.eliminate(e)
		return
	}
	e.HP--
	sm.emit(Event{Kind: EventBossHit, Pos: e.Pos, Entity: e.ID, EntityKind: e.Kind, Value: e.HP})
	if e.HP <= 0 {
		sm.log.Printf("boss %d down", e.ID)
		sm.eliminate(e)
	}
}

func (sm *Sim) shiftPlanet() {
	n := len(sm.cfg.Planets)
	sm.session.Planet = (sm.session.Planet + 1) % n
	p := sm.cfg.Planets[sm.session.Planet]
	sm.emit(Event{Kind: EventPlanetShift, Value: sm.session.Planet, Detail: p.Name})
}

// burst spawns BurstSize particles at p and emits one particle_burst event.
func (sm *Sim) burst(p Vec, c color.RGBA) {
	n := sm.cfg.BurstSize
	if n <= 0 {
		return
	}
	for i := 0; i < n; i++ {
		a := sm.rng.Float64() * 2 * math.Pi
		speed := 3 + sm.rng.Float64()*5
		v := V2(math.Cos(a)*speed, math.Sin(a)*speed)
		if sm.cfg.Topology == TopologySphere {
			east, north := TangentBasis(p)
			v = east.Scale(v.X).Add(north.Scale(v.Y))
		}
		sm.reg.AddParticle(&Particle{
			Pos:   p,
			Vel:   v,
			Life:  1,
			Decay: 1.2 + sm.rng.Float64()*0.8,
			Size:  0.15 + sm.rng.Float64()*0.15,
			Color: c,
		})
	}
	sm.emit(Event{Kind: EventParticleBurst, Pos: p, Value: n})
}

func (sm *Sim) popup(p Vec, text string, c color.RGBA) {
	sm.reg.AddPopup(&Popup{Pos: p, Text: text, Life: popupLife, Total: popupLife, Color: c})
}

// hiss emits the ambient cue on a fixed cadence while the snake lives.
func (sm *Sim) hiss(now time.Duration) {
	if sm.cfg.HissInterval <= 0 || sm.session.State != StateRunning {
		return
	}
	if now-sm.session.lastHiss >= sm.cfg.HissInterval {
		sm.session.lastHiss = now
		sm.emit(Event{Kind: EventHiss})
	}
}

func (sm *Sim) gameOver(c Cause) {
	ses := &sm.session
	if ses.State == StateGameOver {
		return
	}
	ses.State = StateGameOver
	ses.Cause = c
	sm.reg.Snake.Alive = false
	sm.emit(Event{Kind: EventGameOver, Pos: sm.reg.Snake.Head(), Value: ses.Score, Detail: c.String()})
	sm.log.Printf("game over: %s score=%d level=%d", c, ses.Score, ses.Level)
}
