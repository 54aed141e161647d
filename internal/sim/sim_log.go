package sim

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded line of a headless run.
type SimLogEntry struct {
	Tick     int
	Subject  string  // entity label e.g. "ufo#12", or "--" for session events
	Category string  // score, combat, world, session, fault
	Key      string  // event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=0042] ufo#12       combat   elimination      +30
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%04d] %-12s %-8s %-16s %s",
		e.Tick, e.Subject, e.Category, e.Key, e.Value)
}

// SimLog collects structured entries from drained events. Unlike the
// on-screen feed it is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. Verbose logs also keep particle bursts and hiss
// cues.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, subject, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Subject:  subject,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// Record turns events into entries.
func (sl *SimLog) Record(events []Event) {
	for _, e := range events {
		cat := eventCategory(e.Kind)
		if !sl.verbose && (e.Kind == EventParticleBurst || e.Kind == EventHiss) {
			continue
		}
		subject := "--"
		if e.Entity != 0 {
			subject = fmt.Sprintf("%s#%d", e.EntityKind, e.Entity)
		}
		value := e.Detail
		if value == "" {
			value = fmt.Sprintf("%d", e.Value)
		}
		sl.Add(e.Tick, subject, cat, e.Kind.String(), value, float64(e.Value))
	}
}

func eventCategory(k EventKind) string {
	switch k {
	case EventPickupEaten, EventLevelUp:
		return "score"
	case EventLaserFired, EventElimination, EventBossSpawned, EventBossHit:
		return "combat"
	case EventHiss, EventParticleBurst, EventPlanetShift:
		return "world"
	case EventFault, EventFrameDropped:
		return "fault"
	default:
		return "session"
	}
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match the given category and key.
func (sl *SimLog) Count(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of a session.
func (sl *SimLog) Summary(ses Session, reg *Registry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%04d ---\n", ses.Tick)
	fmt.Fprintf(&sb, "State: %s  score=%d  level=%d  eliminations=%d\n",
		ses.State, ses.Score, ses.Level, ses.Eliminations)
	if reg != nil && reg.Snake != nil {
		fmt.Fprintf(&sb, "Snake: len=%d  head=(%.1f,%.1f)  pending=%d\n",
			reg.Snake.Len(), reg.Snake.Head().X, reg.Snake.Head().Y, reg.Snake.GrowthPending)
		fmt.Fprintf(&sb, "Live: entities=%d lasers=%d particles=%d popups=%d\n",
			len(reg.entities), len(reg.lasers), len(reg.particles), len(reg.popups))
	}
	if ses.State == StateGameOver {
		fmt.Fprintf(&sb, "Cause: %s\n", ses.Cause)
	}
	return sb.String()
}
