package sim

import (
	"fmt"
	"time"
)

// DefaultFrameDelta is the harness frame step, one 60 Hz frame rounded to
// whole milliseconds.
const DefaultFrameDelta = 16 * time.Millisecond

// TestSim is a headless harness around Sim used by tests and the headless
// report. It runs frames with a fixed delta, records drained events in a
// SimLog and can steer with the autopilot.
type TestSim struct {
	Sim        *Sim
	SimLog     *SimLog
	Frames     int
	FrameDelta time.Duration

	cfg       Config
	spawns    bool
	autopilot *Autopilot
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptConfig simOptionKind = iota // preset selection, applied first
	simOptTune                        // seed, length and other config tweaks
	simOptPlace                       // entities placed after the sim exists
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithConfig selects the variant preset.
func WithConfig(cfg Config) SimOption {
	return SimOption{simOptConfig, func(ts *TestSim) {
		ts.cfg = cfg
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptTune, func(ts *TestSim) {
		ts.cfg.Seed = seed
	}}
}

// WithInitialLength sets the starting snake length.
func WithInitialLength(n int) SimOption {
	return SimOption{simOptTune, func(ts *TestSim) {
		ts.cfg.InitialLength = n
	}}
}

// WithVerbose keeps bursts and hiss cues in the SimLog.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptTune, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithSpawns enables or disables timer and boss spawning.
func WithSpawns(on bool) SimOption {
	return SimOption{simOptTune, func(ts *TestSim) {
		ts.spawns = on
	}}
}

// WithFrameDelta sets the per-frame step.
func WithFrameDelta(d time.Duration) SimOption {
	return SimOption{simOptTune, func(ts *TestSim) {
		ts.FrameDelta = d
	}}
}

// WithAutopilot steers the snake before every frame.
func WithAutopilot() SimOption {
	return SimOption{simOptTune, func(ts *TestSim) {
		ts.autopilot = &Autopilot{}
	}}
}

// WithTune applies an arbitrary config tweak.
func WithTune(fn func(*Config)) SimOption {
	return SimOption{simOptTune, func(ts *TestSim) {
		fn(&ts.cfg)
	}}
}

// WithPickupAt places a stationary point drop on a grid cell.
func WithPickupAt(c Cell) SimOption {
	return SimOption{simOptPlace, func(ts *TestSim) {
		ts.Place(KindPointDrop, c.Vec())
	}}
}

// WithEntityAt places a stationary entity of kind k at p.
func WithEntityAt(k Kind, p Vec) SimOption {
	return SimOption{simOptPlace, func(ts *TestSim) {
		ts.Place(k, p)
	}}
}

// NewTestSim builds and starts a simulation in three ordered passes:
//  1. Preset (defaults to GridConfig)
//  2. Tweaks (seed, length, spawning, logging)
//  3. Placements
//
// It panics if the resulting config is invalid.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		cfg:        GridConfig(),
		SimLog:     NewSimLog(false),
		FrameDelta: DefaultFrameDelta,
		spawns:     true,
	}
	for _, o := range opts {
		if o.kind == simOptConfig {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptTune {
			o.fn(ts)
		}
	}
	sm, err := New(ts.cfg)
	if err != nil {
		panic(fmt.Sprintf("test sim: %v", err))
	}
	ts.Sim = sm
	sm.SetSpawning(ts.spawns)
	if err := sm.Start(); err != nil {
		panic(fmt.Sprintf("test sim: %v", err))
	}
	for _, o := range opts {
		if o.kind == simOptPlace {
			o.fn(ts)
		}
	}
	return ts
}

// Place registers a stationary entity of kind k at p.
func (ts *TestSim) Place(k Kind, p Vec) *Entity {
	sm := ts.Sim
	spec := &sm.cfg.Kinds[k]
	now := sm.Now()
	e := &Entity{
		Kind:      k,
		Origin:    p,
		Pos:       p,
		SpawnedAt: now,
		Radius:    spec.Radius,
		HP:        spec.HP,
		LastShot:  now,
		Anchored:  true,
	}
	sm.reg.AddEntity(e)
	return e
}

// Session returns the scoreboard.
func (ts *TestSim) Session() Session { return ts.Sim.Session() }

// Snake returns the player.
func (ts *TestSim) Snake() *Snake { return ts.Sim.reg.Snake }

// Frame runs one frame and records its events.
func (ts *TestSim) Frame() {
	if ts.autopilot != nil {
		ts.autopilot.Steer(ts.Sim)
	}
	ts.Sim.Frame(ts.FrameDelta)
	ts.SimLog.Record(ts.Sim.Drain())
	ts.Frames++
}

// RunFrames advances n frames.
func (ts *TestSim) RunFrames(n int) {
	for i := 0; i < n; i++ {
		ts.Frame()
	}
}

// RunFor advances frames until d of frame time has passed.
func (ts *TestSim) RunFor(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += ts.FrameDelta {
		ts.Frame()
	}
}

// RunMoves advances until n more grid moves have committed or the session
// stops running. It returns the number of moves made.
func (ts *TestSim) RunMoves(n int) int {
	start := ts.Sim.session.Moves
	limit := n*int(ts.Sim.cfg.BaseMoveInterval/ts.FrameDelta+1) + 1
	for i := 0; i < limit && ts.Sim.session.Moves-start < n; i++ {
		if ts.Sim.session.State != StateRunning {
			break
		}
		ts.Frame()
	}
	return ts.Sim.session.Moves - start
}

// RunUntil advances up to maxFrames, stopping early if predicate returns
// true. It returns the frame at which the predicate held, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxFrames int) int {
	for i := 0; i < maxFrames; i++ {
		ts.Frame()
		if predicate(ts) {
			return ts.Frames
		}
	}
	return -1
}
