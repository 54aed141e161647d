package sim

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RunReport is the end-of-run snapshot used by the headless report and the
// clipboard export.
type RunReport struct {
	Seed         int64
	Variant      string
	State        State
	Cause        Cause
	Killer       Kind
	Score        int
	Level        int
	Eliminations int
	Eaten        int
	Moves        int
	Ticks        int
	Length       int
	Elapsed      time.Duration
	Faults       int
	Dropped      int            // events lost to queue overflow
	Events       map[string]int // event name → count from the SimLog
}

// NewRunReport summarises sm. lg may be nil.
func NewRunReport(sm *Sim, lg *SimLog) RunReport {
	ses := sm.session
	r := RunReport{
		Seed:         sm.seed,
		Variant:      VariantName(&sm.cfg),
		State:        ses.State,
		Cause:        ses.Cause,
		Killer:       ses.Killer,
		Score:        ses.Score,
		Level:        ses.Level,
		Eliminations: ses.Eliminations,
		Eaten:        ses.Eaten,
		Moves:        ses.Moves,
		Ticks:        ses.Tick,
		Length:       sm.reg.Snake.Len(),
		Elapsed:      ses.Elapsed,
		Faults:       sm.faults,
		Dropped:      sm.DroppedEvents(),
		Events:       map[string]int{},
	}
	if lg != nil {
		for _, e := range lg.Entries() {
			r.Events[e.Key]++
		}
	}
	return r
}

// VariantName labels a config for reports and flags.
func VariantName(cfg *Config) string {
	switch {
	case cfg.Topology == TopologyGrid && cfg.PlayerBoundary == BoundaryFatal:
		return "grid-walls"
	case cfg.Topology == TopologySphere && cfg.WorldMode == WorldInner:
		return "sphere-inner"
	default:
		return cfg.Topology.String()
	}
}

// ConfigForVariant returns the preset named by VariantName.
func ConfigForVariant(name string) (Config, error) {
	switch name {
	case "grid":
		return GridConfig(), nil
	case "grid-walls":
		return GridWallsConfig(), nil
	case "plane":
		return PlaneConfig(), nil
	case "sphere":
		return SphereConfig(), nil
	case "sphere-inner":
		return SphereInnerConfig(), nil
	default:
		return Config{}, fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, name)
	}
}

// String formats the report as a block of text.
func (r RunReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Spacecoco run (%s, seed %d) ===\n", r.Variant, r.Seed)
	fmt.Fprintf(&sb, "state=%s", r.State)
	if r.State == StateGameOver {
		fmt.Fprintf(&sb, " cause=%s", r.Cause)
		if r.Cause == CauseEnemy || r.Cause == CauseLaser {
			fmt.Fprintf(&sb, " by=%s", r.Killer)
		}
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "score=%d level=%d eliminations=%d eaten=%d length=%d\n",
		r.Score, r.Level, r.Eliminations, r.Eaten, r.Length)
	fmt.Fprintf(&sb, "moves=%d ticks=%d elapsed=%s faults=%d dropped_events=%d\n",
		r.Moves, r.Ticks, r.Elapsed.Round(time.Millisecond), r.Faults, r.Dropped)
	if len(r.Events) > 0 {
		keys := make([]string, 0, len(r.Events))
		for k := range r.Events {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("events:")
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%d", k, r.Events[k])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
