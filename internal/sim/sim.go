// Package sim is the Spacecoco game loop and entity simulation. One Sim
// drives every variant; the topology, boundaries and entity table come from
// Config.
package sim

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"
)

// ErrBadTransition is returned for a lifecycle call that is not valid in the
// current state.
var ErrBadTransition = errors.New("invalid state transition")

// Sim owns one session: registry, scoreboard, spawner and event queue.
// It is driven from a single goroutine; only the Sampler is safe to touch
// from others.
type Sim struct {
	cfg   Config
	log   *log.Logger
	input *Sampler
	seed  int64
	rng   *rand.Rand

	reg       *Registry
	session   Session
	spawner   spawner
	events    EventQueue
	moveAccum time.Duration
	faults    int

	faultHook func() // called at the start of each pass; tests inject panics here
}

// New validates cfg and returns an idle simulation.
func New(cfg Config) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sm := &Sim{
		cfg:   cfg,
		log:   cfg.logger(),
		input: NewSampler(DirRight),
		seed:  cfg.Seed,
	}
	sm.reset(cfg.Seed)
	return sm, nil
}

// reset rebuilds the world for a fresh session. The sampler and event queue
// survive.
func (sm *Sim) reset(seed int64) {
	sm.seed = seed
	sm.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay randomness, not security
	sm.reg = newRegistry(newSnake(&sm.cfg))
	sm.session = newSession()
	sm.spawner.reset()
	sm.moveAccum = 0
	sm.input.Reset(DirRight)
}

// Start moves an idle session to Running.
func (sm *Sim) Start() error {
	if sm.session.State != StateIdle {
		return fmt.Errorf("%w: start from %s", ErrBadTransition, sm.session.State)
	}
	sm.session.State = StateRunning
	sm.log.Printf("session start seed=%d variant=%s", sm.seed, sm.cfg.Topology)
	return nil
}

// Pause freezes a running session. It reports whether the state changed.
func (sm *Sim) Pause() bool {
	if sm.session.State != StateRunning {
		return false
	}
	sm.session.State = StatePaused
	sm.emit(Event{Kind: EventPaused})
	return true
}

// Resume continues a paused session. It reports whether the state changed.
func (sm *Sim) Resume() bool {
	if sm.session.State != StatePaused {
		return false
	}
	sm.session.State = StateRunning
	sm.emit(Event{Kind: EventResumed})
	return true
}

// TogglePause flips between Running and Paused.
func (sm *Sim) TogglePause() {
	if !sm.Pause() {
		sm.Resume()
	}
}

// Restart discards the session and starts a new one with the same seed.
// Calling it twice in a row yields the same state as calling it once.
func (sm *Sim) Restart() {
	sm.RestartWithSeed(sm.seed)
}

// RestartWithSeed discards the session and starts a new one with seed.
func (sm *Sim) RestartWithSeed(seed int64) {
	sm.reset(seed)
	sm.session.State = StateRunning
	sm.emit(Event{Kind: EventRestarted, Value: int(seed)})
	sm.log.Printf("session restart seed=%d", seed)
}

// SetSpawning turns the spawner timers and boss cadence on or off.
func (sm *Sim) SetSpawning(on bool) { sm.spawner.disabled = !on }

// Frame runs one frame of dt. Input is always sampled so pause and restart
// work from any state. A dt above MaxFrameDelta is dropped.
func (sm *Sim) Frame(dt time.Duration) {
	in := sm.input.Sample()
	switch {
	case in.Restart && sm.session.State == StateIdle:
		_ = sm.Start()
	case in.Restart:
		sm.Restart()
		return
	case in.Pause:
		sm.TogglePause()
	}
	if sm.session.State != StateRunning || dt <= 0 {
		return
	}
	if dt > sm.cfg.MaxFrameDelta {
		sm.emit(Event{Kind: EventFrameDropped, Value: int(dt.Milliseconds())})
		sm.log.Printf("frame dropped: dt=%s", dt)
		return
	}
	sm.advance(dt, in)
}

type snapshot struct {
	reg       *Registry
	session   Session
	spawner   spawner
	moveAccum time.Duration
	events    int
}

// advance runs the pipeline, restoring the pre-frame state if any stage
// panics.
func (sm *Sim) advance(dt time.Duration, in InputFrame) {
	snap := snapshot{
		reg:       sm.reg.clone(),
		session:   sm.session,
		spawner:   sm.spawner,
		moveAccum: sm.moveAccum,
		events:    sm.events.Len(),
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		sm.reg = snap.reg
		sm.session = snap.session
		sm.spawner = snap.spawner
		sm.moveAccum = snap.moveAccum
		sm.events.truncate(snap.events)
		sm.faults++
		sm.log.Printf("tick %d: recovered fault: %v", sm.session.Tick, r)
		sm.emit(Event{Kind: EventFault, Detail: fmt.Sprint(r)})
	}()
	sm.pipeline(dt, in)
}

// pipeline splits a grid frame at each due move so collisions are checked
// after every cell step. Continuous topologies run one pass.
func (sm *Sim) pipeline(dt time.Duration, in InputFrame) {
	if sm.cfg.Topology != TopologyGrid {
		sm.pass(dt, in, false)
		return
	}
	remaining := dt
	moves := 0
	for {
		period := sm.cfg.moveInterval(sm.session.Level)
		sub, move := remaining, false
		if until := period - sm.moveAccum; until <= remaining && moves < sm.cfg.MaxMovesPerFrame {
			sub, move = max(until, 0), true
		}
		sm.moveAccum += sub
		if move {
			sm.moveAccum = 0
			moves++
		} else if sm.moveAccum > period {
			sm.moveAccum = period
		}
		sm.pass(sub, in, move)
		in.Shake, in.Brake = false, false
		remaining -= sub
		if remaining <= 0 || sm.session.State != StateRunning {
			return
		}
	}
}

// pass is one Motion, Spawn, Collision, Rule, Prune sweep.
func (sm *Sim) pass(dt time.Duration, in InputFrame, move bool) {
	ses := &sm.session
	now := ses.Elapsed + dt
	ses.Elapsed = now
	ses.Tick++
	if sm.faultHook != nil {
		sm.faultHook()
	}
	if c := sm.motionStep(dt, now, in, move); c != CauseNone {
		sm.gameOver(c)
		return
	}
	sm.spawnStep(dt, now, in)
	sm.applyRules(detect(&sm.cfg, sm.reg, now), now)
	sm.prune(now)
}

func (sm *Sim) motionStep(dt, now time.Duration, in InputFrame, move bool) Cause {
	secs := dt.Seconds()
	for _, e := range sm.reg.Entities() {
		e.Pos = applyEnemyBoundary(&sm.cfg, MotionPos(&sm.cfg, e, now))
	}
	integrateVFX(sm.reg, secs)

	s := sm.reg.Snake
	if sm.cfg.Topology == TopologyGrid {
		if move {
			return sm.gridMove()
		}
		return CauseNone
	}
	if in.Brake {
		s.brakeUntil = now + sm.cfg.BrakeTapWindow
	}
	in.Braking = in.Braking || now < s.brakeUntil
	if !steerContinuous(&sm.cfg, s, in, secs) {
		return CauseWall
	}
	if continuousSelfHit(&sm.cfg, s) {
		return CauseSelf
	}
	return CauseNone
}

// gridMove applies one buffered turn and steps the head one cell.
func (sm *Sim) gridMove() Cause {
	s := sm.reg.Snake
	if d := sm.input.NextTurn(); d != DirNone && d != s.Dir.Opposite() {
		s.Dir = d
	}
	sm.input.SyncHeading(s.Dir)
	next, ok := gridStep(&sm.cfg, s.Head(), s.Dir)
	if !ok {
		return CauseWall
	}
	if s.gridSelfHit(next) {
		return CauseSelf
	}
	s.commitGridMove(next)
	d := s.Dir.Delta()
	s.Heading = V2(float64(d.X), float64(d.Y))
	sm.session.Moves++
	return CauseNone
}

func (sm *Sim) emit(e Event) {
	e.Tick = sm.session.Tick
	e.At = sm.session.Elapsed
	sm.events.push(e)
}

// Drain returns and clears the pending events.
func (sm *Sim) Drain() []Event { return sm.events.Drain() }

// DroppedEvents reports how many events overflowed the queue.
func (sm *Sim) DroppedEvents() int { return sm.events.Dropped() }

// Input is the sampler hosts feed.
func (sm *Sim) Input() *Sampler { return sm.input }

// Session returns a copy of the scoreboard.
func (sm *Sim) Session() Session { return sm.session }

// Registry exposes the live objects for read-only use.
func (sm *Sim) Registry() *Registry { return sm.reg }

// Config returns the active configuration.
func (sm *Sim) Config() *Config { return &sm.cfg }

// Seed is the seed of the current session.
func (sm *Sim) Seed() int64 { return sm.seed }

// Faults counts recovered pipeline panics.
func (sm *Sim) Faults() int { return sm.faults }

// Now is the sim time of the current session.
func (sm *Sim) Now() time.Duration { return sm.session.Elapsed }

// Planet is the active world modifier.
func (sm *Sim) Planet() Planet { return sm.planet() }
