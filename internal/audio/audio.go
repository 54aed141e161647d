// Package audio turns simulation event names into short synthesized sound
// effects played through ebiten's audio context.
package audio

import (
	"log"
	"sync"
	"time"

	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// DefaultMinGap is the shortest interval between two plays of one clip.
const DefaultMinGap = 70 * time.Millisecond

// Engine implements sim.Notifier. Notify never blocks on playback.
type Engine struct {
	mu     sync.Mutex
	clips  map[string][]byte
	last   map[string]time.Time
	gaps   map[string]time.Duration
	minGap time.Duration
	muted  bool
	played int

	now  func() time.Time
	play func(name string, pcm []byte)
}

// Names lists the events with a clip.
var Names = []string{
	"pickup_eaten", "laser_fired", "elimination", "hiss",
	"level_up", "boss_spawned", "boss_hit", "game_over",
}

// New synthesizes every clip and plays them on ctx. ctx must run at
// SampleRate.
func New(ctx *ebaudio.Context, logger *log.Logger) *Engine {
	e := newEngine(func(name string, pcm []byte) {
		p := ctx.NewPlayerFromBytes(pcm)
		p.Play()
	})
	if ctx.SampleRate() != SampleRate && logger != nil {
		logger.Printf("audio: context rate %d, clips rendered at %d", ctx.SampleRate(), SampleRate)
	}
	return e
}

func newEngine(play func(name string, pcm []byte)) *Engine {
	e := &Engine{
		clips:  make(map[string][]byte, len(Names)),
		last:   make(map[string]time.Time),
		gaps:   map[string]time.Duration{"hiss": time.Second, "laser_fired": 40 * time.Millisecond},
		minGap: DefaultMinGap,
		now:    time.Now,
		play:   play,
	}
	for _, n := range Names {
		e.clips[n] = Render(Clip(n))
	}
	return e
}

// Notify plays the clip for name unless it is unknown, muted or throttled.
func (e *Engine) Notify(name string) {
	e.mu.Lock()
	pcm, ok := e.clips[name]
	if !ok || e.muted {
		e.mu.Unlock()
		return
	}
	now := e.now()
	gap, ok := e.gaps[name]
	if !ok {
		gap = e.minGap
	}
	if t, seen := e.last[name]; seen && now.Sub(t) < gap {
		e.mu.Unlock()
		return
	}
	e.last[name] = now
	e.played++
	play := e.play
	e.mu.Unlock()
	play(name, pcm)
}

// SetMuted silences or restores playback.
func (e *Engine) SetMuted(m bool) {
	e.mu.Lock()
	e.muted = m
	e.mu.Unlock()
}

// Muted reports whether playback is silenced.
func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// Played counts clips started since creation.
func (e *Engine) Played() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.played
}
