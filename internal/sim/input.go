package sim

import (
	"math"
	"sync"
)

// Key is a host-independent input key. Hosts map arrows and WASD onto the
// four direction keys.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyBrake
	KeyShake
	KeyPause
	KeyRestart
	keyCount
)

const (
	// DragRadius is the drag length, in host pixels, that maps to full acceleration.
	DragRadius = 80.0
	// dragDeadzone is the normalized drag magnitude below which input is neutral.
	dragDeadzone = 0.15
	// turnQueueSize bounds buffered grid turns.
	turnQueueSize = 2
)

// Intent is a remote controller update applied to the sampler.
type Intent struct {
	Dir   Direction
	X, Y  float64 // steering vector, any length; zero leaves steering unchanged
	Accel float64 // [0,1]
	Brake bool
	Shake bool
	Pause bool
}

// InputFrame is what one tick reads from the sampler.
type InputFrame struct {
	Vector  Vec     // unit steering vector, zero when neutral
	Accel   float64 // [0,1]
	Braking bool    // brake held
	Brake   bool    // brake pressed since last frame
	Shake   bool
	Pause   bool
	Restart bool
}

// Sampler normalizes keyboard, drag and remote input into queued intent.
// Writers may run on any goroutine; the simulation reads once per tick.
type Sampler struct {
	mu sync.Mutex

	held    [keyCount]bool
	heading Direction

	turns  [turnQueueSize]Direction
	nTurns int

	dragging bool
	drag     Vec
	dragDir  Direction

	remote      Vec
	remoteAccel float64

	// sticky hosts cannot report key-up, so taps latch a steering vector.
	sticky bool
	latch  Vec

	brake, shake, pause, restart bool
}

// NewSampler returns a sampler whose reference heading is dir.
func NewSampler(dir Direction) *Sampler {
	return &Sampler{heading: dir}
}

// Reset drops all queued intent and sets the reference heading.
func (s *Sampler) Reset(dir Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = [keyCount]bool{}
	s.heading = dir
	s.turns = [turnQueueSize]Direction{}
	s.nTurns = 0
	s.dragging, s.drag, s.dragDir = false, Vec{}, DirNone
	s.remote, s.remoteAccel = Vec{}, 0
	s.latch = Vec{}
	s.brake, s.shake, s.pause, s.restart = false, false, false, false
}

// Press records a key going down. Direction keys also queue a turn.
func (s *Sampler) Press(k Key) {
	if k <= KeyNone || k >= keyCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wasHeld := s.held[k]
	s.held[k] = true
	if wasHeld {
		return
	}
	switch k {
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		d := keyDirection(k)
		s.queueLocked(d)
		if s.sticky {
			s.latchLocked(d)
		}
	case KeyBrake:
		s.brake = true
	case KeyShake:
		s.shake = true
	case KeyPause:
		s.pause = true
	case KeyRestart:
		s.restart = true
	}
}

// SetSticky makes tapped direction keys latch a steering direction until the
// opposite key is tapped or a drag ends. Hosts without key-up events use it.
func (s *Sampler) SetSticky(on bool) {
	s.mu.Lock()
	s.sticky = on
	if !on {
		s.latch = Vec{}
	}
	s.mu.Unlock()
}

func keyDirection(k Key) Direction {
	switch k {
	case KeyUp:
		return DirUp
	case KeyDown:
		return DirDown
	case KeyLeft:
		return DirLeft
	case KeyRight:
		return DirRight
	}
	return DirNone
}

// latchLocked steers toward d, or clears the latch when d reverses it.
func (s *Sampler) latchLocked(d Direction) {
	c := d.Delta()
	v := V2(float64(c.X), float64(c.Y))
	if s.latch.Add(v).Len() < 1e-9 {
		s.latch = Vec{}
		return
	}
	s.latch = v
}

// Release records a key going up.
func (s *Sampler) Release(k Key) {
	if k <= KeyNone || k >= keyCount {
		return
	}
	s.mu.Lock()
	s.held[k] = false
	s.mu.Unlock()
}

// QueueDirection buffers a grid turn. A turn equal to or the reverse of the
// previously queued (or current) direction is rejected.
func (s *Sampler) QueueDirection(d Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queueLocked(d)
}

func (s *Sampler) queueLocked(d Direction) bool {
	if d == DirNone {
		return false
	}
	ref := s.heading
	if s.nTurns > 0 {
		ref = s.turns[s.nTurns-1]
	}
	if d == ref || (ref != DirNone && d == ref.Opposite()) {
		return false
	}
	if s.nTurns == turnQueueSize {
		return false
	}
	s.turns[s.nTurns] = d
	s.nTurns++
	return true
}

// Drag sets the current touch/pointer drag vector in host pixels.
func (s *Sampler) Drag(dx, dy float64) {
	v := V2(dx, dy)
	if !v.Finite() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = true
	s.drag = v
	mag := math.Min(v.Len()/DragRadius, 1)
	if mag < dragDeadzone {
		return
	}
	if d := DirectionOf(v); d != s.dragDir {
		if s.queueLocked(d) {
			s.dragDir = d
		}
	}
}

// EndDrag releases the drag.
func (s *Sampler) EndDrag() {
	s.mu.Lock()
	s.dragging = false
	s.drag = Vec{}
	s.dragDir = DirNone
	s.latch = Vec{}
	s.mu.Unlock()
}

// ApplyIntent merges a remote controller update.
func (s *Sampler) ApplyIntent(in Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Dir > DirNone && in.Dir <= DirRight {
		s.queueLocked(in.Dir)
	}
	v := V2(in.X, in.Y)
	if v.Finite() && v.Len() > 0 {
		s.remote = v.Norm()
		a := in.Accel
		if math.IsNaN(a) {
			a = 0
		}
		s.remoteAccel = clampF(a, 0, 1)
	}
	s.brake = s.brake || in.Brake
	s.shake = s.shake || in.Shake
	s.pause = s.pause || in.Pause
}

// CurrentDirection is the cardinal direction of the current steering input,
// or the reference heading when input is neutral.
func (s *Sampler) CurrentDirection() Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.vectorLocked()
	if d := DirectionOf(v); d != DirNone {
		return d
	}
	return s.heading
}

// Vector returns the normalized steering vector.
func (s *Sampler) Vector() Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.vectorLocked()
	return v
}

// AccelerationMagnitude returns the steering magnitude in [0,1].
func (s *Sampler) AccelerationMagnitude() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, a := s.vectorLocked()
	return a
}

// BrakeRequested reports, once, that brake was pressed.
func (s *Sampler) BrakeRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.brake
	s.brake = false
	return b
}

// ShakeRequested reports, once, that shake was pressed.
func (s *Sampler) ShakeRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.shake
	s.shake = false
	return b
}

// PauseRequested reports, once, that pause was pressed.
func (s *Sampler) PauseRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.pause
	s.pause = false
	return b
}

// RestartRequested reports, once, that restart was pressed.
func (s *Sampler) RestartRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.restart
	s.restart = false
	return b
}

// Sample snapshots steering and consumes the edge-triggered flags.
func (s *Sampler) Sample() InputFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, a := s.vectorLocked()
	f := InputFrame{
		Vector:  v,
		Accel:   a,
		Braking: s.held[KeyBrake],
		Brake:   s.brake,
		Shake:   s.shake,
		Pause:   s.pause,
		Restart: s.restart,
	}
	s.brake, s.shake, s.pause, s.restart = false, false, false, false
	return f
}

// NextTurn pops one buffered turn, or DirNone.
func (s *Sampler) NextTurn() Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nTurns == 0 {
		return DirNone
	}
	d := s.turns[0]
	copy(s.turns[:], s.turns[1:s.nTurns])
	s.nTurns--
	s.turns[s.nTurns] = DirNone
	return d
}

// SyncHeading tells the sampler which way the snake is now moving.
func (s *Sampler) SyncHeading(d Direction) {
	s.mu.Lock()
	s.heading = d
	s.mu.Unlock()
}

// vectorLocked resolves drag first, then held keys, then a latched tap, then
// the remote vector.
func (s *Sampler) vectorLocked() (Vec, float64) {
	if s.dragging {
		mag := math.Min(s.drag.Len()/DragRadius, 1)
		if mag < dragDeadzone {
			return Vec{}, 0
		}
		return s.drag.Norm(), mag
	}
	var v Vec
	if s.held[KeyLeft] {
		v.X--
	}
	if s.held[KeyRight] {
		v.X++
	}
	if s.held[KeyUp] {
		v.Y--
	}
	if s.held[KeyDown] {
		v.Y++
	}
	if v.Len() > 0 {
		return v.Norm(), 1
	}
	if s.latch.Len() > 0 {
		return s.latch, 1
	}
	if s.remote.Len() > 0 {
		return s.remote, s.remoteAccel
	}
	return Vec{}, 0
}
