package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate is the rate every clip is synthesized at.
const SampleRate = 44100

var (
	rate   = beep.SampleRate(SampleRate)
	format = beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// sweep is an oscillator gliding linearly from one frequency to another.
type sweep struct {
	from, to float64
	wave     Wave
	phase    float64
	pos, n   int
	rng      *rand.Rand
}

// Tone returns a fixed-frequency oscillator of length d.
func Tone(freq float64, d time.Duration, w Wave) beep.Streamer {
	return Sweep(freq, freq, d, w)
}

// Sweep returns an oscillator that glides from one frequency to another over d.
func Sweep(from, to float64, d time.Duration, w Wave) beep.Streamer {
	return &sweep{
		from: from,
		to:   to,
		wave: w,
		n:    rate.N(d),
		rng:  rand.New(rand.NewSource(int64(from*1000 + to))), // #nosec G404 -- noise timbre only
	}
}

func (s *sweep) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if s.pos >= s.n {
			return i, i > 0
		}
		var v float64
		switch s.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * s.phase)
		case WaveSquare:
			v = -1
			if s.phase < 0.5 {
				v = 1
			}
		case WaveSaw:
			v = 2 * (s.phase - 0.5)
		case WaveNoise:
			v = s.rng.Float64()*2 - 1
		}
		samples[i] = [2]float64{v, v}
		f := s.from + (s.to-s.from)*float64(s.pos)/float64(s.n)
		s.phase += f / float64(rate)
		s.phase -= math.Floor(s.phase)
		s.pos++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// envelope ramps a streamer in over attack and out over the last release.
type envelope struct {
	src            beep.Streamer
	pos            int
	attack, length int
	release        int
}

// Shape applies a linear attack/release envelope to s, which lasts d.
func Shape(s beep.Streamer, d, attack, release time.Duration) beep.Streamer {
	return &envelope{src: s, length: rate.N(d), attack: rate.N(attack), release: rate.N(release)}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.src.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1.0
		if e.attack > 0 && e.pos < e.attack {
			g = float64(e.pos) / float64(e.attack)
		}
		if left := e.length - e.pos; e.release > 0 && left < e.release {
			g = math.Max(float64(left)/float64(e.release), 0)
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.src.Err() }

// gain scales s linearly; zero or less is silent.
func gain(s beep.Streamer, g float64) beep.Streamer {
	if g <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(g)}
}

func note(freq float64, d time.Duration, w Wave) beep.Streamer {
	return Shape(Tone(freq, d, w), d, 4*time.Millisecond, d/2)
}

// Clip builds the sound for an event name, or nil when it has none.
func Clip(name string) beep.Streamer {
	switch name {
	case "pickup_eaten":
		return gain(beep.Seq(
			note(660, 60*time.Millisecond, WaveSine),
			note(990, 80*time.Millisecond, WaveSine),
		), 0.5)
	case "laser_fired":
		d := 140 * time.Millisecond
		return gain(Shape(Sweep(1400, 260, d, WaveSquare), d, 2*time.Millisecond, 60*time.Millisecond), 0.18)
	case "elimination":
		d := 200 * time.Millisecond
		return gain(beep.Mix(
			Shape(Tone(0, d, WaveNoise), d, time.Millisecond, 150*time.Millisecond),
			gain(Shape(Sweep(180, 60, d, WaveSaw), d, time.Millisecond, 120*time.Millisecond), 0.6),
		), 0.4)
	case "hiss":
		d := 380 * time.Millisecond
		return gain(Shape(Tone(0, d, WaveNoise), d, 120*time.Millisecond, 200*time.Millisecond), 0.12)
	case "level_up":
		return gain(beep.Seq(
			note(523.25, 70*time.Millisecond, WaveSquare),
			note(659.25, 70*time.Millisecond, WaveSquare),
			note(783.99, 70*time.Millisecond, WaveSquare),
			note(1046.5, 140*time.Millisecond, WaveSquare),
		), 0.25)
	case "boss_spawned":
		d := 700 * time.Millisecond
		return gain(beep.Mix(
			Shape(Tone(80, d, WaveSaw), d, 80*time.Millisecond, 300*time.Millisecond),
			Shape(Tone(83, d, WaveSaw), d, 80*time.Millisecond, 300*time.Millisecond),
		), 0.3)
	case "boss_hit":
		return gain(note(220, 110*time.Millisecond, WaveSquare), 0.35)
	case "game_over":
		return gain(beep.Seq(
			note(440, 180*time.Millisecond, WaveSaw),
			note(330, 180*time.Millisecond, WaveSaw),
			note(220, 400*time.Millisecond, WaveSaw),
		), 0.35)
	default:
		return nil
	}
}

// Render drains s into 16-bit little-endian stereo PCM, the layout
// ebiten/audio plays.
func Render(s beep.Streamer) []byte {
	var out []byte
	buf := make([][2]float64, 512)
	frame := make([]byte, format.Width())
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			format.EncodeSigned(frame, smp)
			out = append(out, frame...)
		}
		if !ok {
			return out
		}
	}
}
