package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/spacecoco/internal/sim"
)

const (
	feedPanelWidth = 320
	feedMaxEntries = 60
	feedLineHeight = 16
)

// FeedEntry is a single line in the event feed.
type FeedEntry struct {
	Tick    int
	Label   string // event name or host tag such as "best"
	Message string
}

// EventFeed is a ring buffer of recent gameplay events rendered beside the
// playfield.
type EventFeed struct {
	entries []FeedEntry
	head    int
	count   int
}

// NewEventFeed creates a feed with a fixed capacity.
func NewEventFeed() *EventFeed {
	return &EventFeed{
		entries: make([]FeedEntry, feedMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest when full.
func (f *EventFeed) Add(tick int, label, msg string) {
	f.entries[f.head] = FeedEntry{Tick: tick, Label: label, Message: msg}
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// AddEvents appends the events worth reading. Cosmetic and per-frame noise
// is skipped.
func (f *EventFeed) AddEvents(events []sim.Event) {
	for _, e := range events {
		if msg, ok := feedMessage(e); ok {
			f.Add(e.Tick, e.Kind.String(), msg)
		}
	}
}

// feedMessage renders one event, or reports false for events the feed hides.
func feedMessage(e sim.Event) (string, bool) {
	switch e.Kind {
	case sim.EventPickupEaten:
		return fmt.Sprintf("ate %s +%d", e.EntityKind, e.Value), true
	case sim.EventElimination:
		return fmt.Sprintf("%s down +%d", e.EntityKind, e.Value), true
	case sim.EventLevelUp:
		return fmt.Sprintf("level %d", e.Value), true
	case sim.EventBossSpawned:
		return fmt.Sprintf("%s incoming", e.EntityKind), true
	case sim.EventBossHit:
		return fmt.Sprintf("%s hit, hp %d", e.EntityKind, e.Value), true
	case sim.EventPlanetShift:
		return "planet shift: " + e.Detail, true
	case sim.EventGameOver:
		return fmt.Sprintf("game over (%s) score %d", e.Detail, e.Value), true
	case sim.EventFault:
		return "fault: " + e.Detail, true
	case sim.EventPaused, sim.EventResumed, sim.EventRestarted:
		return e.Kind.String(), true
	default:
		return "", false
	}
}

// Recent returns entries in chronological order (oldest first).
func (f *EventFeed) Recent() []FeedEntry {
	result := make([]FeedEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedMaxEntries) % feedMaxEntries
		result[i] = f.entries[idx]
	}
	return result
}

// labelColor groups feed entries the same way the SimLog categories do.
func labelColor(label string) color.RGBA {
	switch label {
	case "pickup_eaten", "level_up", "best":
		return color.RGBA{R: 60, G: 255, B: 140, A: 255}
	case "elimination", "boss_spawned", "boss_hit":
		return color.RGBA{R: 255, G: 80, B: 200, A: 255}
	case "game_over", "fault":
		return color.RGBA{R: 255, G: 60, B: 60, A: 255}
	default:
		return color.RGBA{R: 120, G: 140, B: 255, A: 255}
	}
}

// Draw renders the feed panel at panelX.
func (f *EventFeed) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), float32(panelH), color.RGBA{R: 8, G: 4, B: 18, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 90, G: 40, B: 160, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), 16, color.RGBA{R: 24, G: 10, B: 48, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 0)

	entries := f.Recent()
	maxVisible := (panelH - 24) / feedLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	y := 20
	for i, e := range entries {
		if i >= len(entries)-3 {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(feedPanelWidth-4), float32(feedLineHeight), color.RGBA{R: 30, G: 16, B: 56, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+5), 3, 6, labelColor(e.Label), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d %s", e.Tick, e.Message), panelX+12, y)
		y += feedLineHeight
	}
}
