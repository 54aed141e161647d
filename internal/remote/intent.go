// Package remote relays controller intents from a phone or second device to
// a running simulation over a websocket. Frames are msgpack-encoded Intents.
package remote

import (
	"errors"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Garsondee/spacecoco/internal/sim"
)

// ErrMalformed is returned by Decode for a frame that is not an Intent.
var ErrMalformed = errors.New("malformed intent")

// Intent is one controller update on the wire.
type Intent struct {
	Seq     uint64  `msgpack:"s,omitempty"`
	Dir     string  `msgpack:"d,omitempty"` // "up", "down", "left", "right"
	X       float64 `msgpack:"x,omitempty"`
	Y       float64 `msgpack:"y,omitempty"`
	Accel   float64 `msgpack:"a,omitempty"`
	Brake   bool    `msgpack:"b,omitempty"`
	Shake   bool    `msgpack:"k,omitempty"`
	Pause   bool    `msgpack:"p,omitempty"`
	Restart bool    `msgpack:"r,omitempty"`
}

// Encode marshals in for a binary websocket frame.
func Encode(in Intent) ([]byte, error) {
	data, err := msgpack.Marshal(&in)
	if err != nil {
		return nil, fmt.Errorf("encode intent: %w", err)
	}
	return data, nil
}

// Decode unmarshals a binary frame. Unknown direction names and non-finite
// numbers are rejected.
func Decode(data []byte) (Intent, error) {
	var in Intent
	if err := msgpack.Unmarshal(data, &in); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, ok := parseDir(in.Dir); !ok {
		return Intent{}, fmt.Errorf("%w: direction %q", ErrMalformed, in.Dir)
	}
	for _, f := range [...]float64{in.X, in.Y, in.Accel} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Intent{}, fmt.Errorf("%w: non-finite value", ErrMalformed)
		}
	}
	return in, nil
}

func parseDir(s string) (sim.Direction, bool) {
	switch s {
	case "":
		return sim.DirNone, true
	case "up":
		return sim.DirUp, true
	case "down":
		return sim.DirDown, true
	case "left":
		return sim.DirLeft, true
	case "right":
		return sim.DirRight, true
	default:
		return sim.DirNone, false
	}
}

// Apply feeds in to the sampler. Restart is delivered as a key tap.
func Apply(s *sim.Sampler, in Intent) {
	d, _ := parseDir(in.Dir)
	s.ApplyIntent(sim.Intent{
		Dir:   d,
		X:     in.X,
		Y:     in.Y,
		Accel: in.Accel,
		Brake: in.Brake,
		Shake: in.Shake,
		Pause: in.Pause,
	})
	if in.Restart {
		s.Press(sim.KeyRestart)
		s.Release(sim.KeyRestart)
	}
}
