package sim

import (
	"fmt"
	"time"
)

// EventKind names something collaborators may react to.
type EventKind int

const (
	EventLaserFired EventKind = iota
	EventPickupEaten
	EventElimination
	EventHiss
	EventParticleBurst
	EventLevelUp
	EventBossSpawned
	EventBossHit
	EventPlanetShift
	EventGameOver
	EventFrameDropped
	EventFault
	EventPaused
	EventResumed
	EventRestarted
	eventKindCount
)

var eventNames = [eventKindCount]string{
	EventLaserFired:    "laser_fired",
	EventPickupEaten:   "pickup_eaten",
	EventElimination:   "elimination",
	EventHiss:          "hiss",
	EventParticleBurst: "particle_burst",
	EventLevelUp:       "level_up",
	EventBossSpawned:   "boss_spawned",
	EventBossHit:       "boss_hit",
	EventPlanetShift:   "planet_shift",
	EventGameOver:      "game_over",
	EventFrameDropped:  "frame_dropped",
	EventFault:         "fault",
	EventPaused:        "paused",
	EventResumed:       "resumed",
	EventRestarted:     "restarted",
}

func (k EventKind) String() string {
	if k < 0 || k >= eventKindCount {
		return "unknown"
	}
	return eventNames[k]
}

// Event is one entry of the per-session event queue.
type Event struct {
	Kind       EventKind
	Tick       int
	At         time.Duration // sim time
	Pos        Vec
	Entity     ID
	EntityKind Kind
	Value      int
	Detail     string
}

func (e Event) String() string {
	if e.Detail != "" {
		return fmt.Sprintf("[T=%04d] %-14s %s", e.Tick, e.Kind, e.Detail)
	}
	return fmt.Sprintf("[T=%04d] %-14s %d", e.Tick, e.Kind, e.Value)
}

// eventQueueCap bounds undrained events; the oldest are dropped past it.
const eventQueueCap = 1024

// EventQueue is the session-owned FIFO drained once per frame by the host.
// It is only touched from the tick goroutine.
type EventQueue struct {
	events  []Event
	dropped int
}

func (q *EventQueue) push(e Event) {
	if len(q.events) >= eventQueueCap {
		copy(q.events, q.events[1:])
		q.events = q.events[:len(q.events)-1]
		q.dropped++
	}
	q.events = append(q.events, e)
}

// truncate drops events pushed after the queue held n.
func (q *EventQueue) truncate(n int) {
	if n < len(q.events) {
		q.events = q.events[:n]
	}
}

// Drain returns pending events in order and empties the queue.
func (q *EventQueue) Drain() []Event {
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int { return len(q.events) }

// Dropped returns how many events were discarded for overflow.
func (q *EventQueue) Dropped() int { return q.dropped }

// Notifier receives event names; the audio layer implements it.
type Notifier interface {
	Notify(name string)
}

// audibleEvents are forwarded to a Notifier by Forward.
var audibleEvents = map[EventKind]bool{
	EventLaserFired:  true,
	EventPickupEaten: true,
	EventElimination: true,
	EventHiss:        true,
	EventLevelUp:     true,
	EventBossSpawned: true,
	EventBossHit:     true,
	EventGameOver:    true,
}

// Forward notifies n of every audible event. It never blocks on n beyond the call.
func Forward(events []Event, n Notifier) {
	if n == nil {
		return
	}
	for _, e := range events {
		if audibleEvents[e.Kind] {
			n.Notify(e.Kind.String())
		}
	}
}
