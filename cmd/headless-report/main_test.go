package main

import (
	"testing"

	"github.com/Garsondee/spacecoco/internal/sim"
)

func testLog() *sim.SimLog {
	lg := sim.NewSimLog(false)
	lg.Add(3, "point-drop#4", "score", "pickup_eaten", "10", 10)
	lg.Add(12, "--", "world", "planet_shift", "1", 1)
	lg.Add(7, "point-drop#9", "score", "pickup_eaten", "10", 10)
	lg.Add(40, "--", "session", "game_over", "wall", 0)
	lg.Add(41, "--", "session", "game_over", "self", 0)
	return lg
}

func TestFirstAndLastTick(t *testing.T) {
	lg := testLog()
	if got := firstTick(lg, "score", "pickup_eaten", ""); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := firstTick(lg, "session", "game_over", "self"); got != 41 {
		t.Fatalf("expected 41, got %d", got)
	}
	if got := firstTick(lg, "combat", "elimination", ""); got != -1 {
		t.Fatalf("expected -1 for a missing marker, got %d", got)
	}
	if got := lastTick(lg, "score", "pickup_eaten"); got != 7 {
		t.Fatalf("expected the last pickup at 7, got %d", got)
	}
	if got := lastTick(lg, "combat", "boss_spawned"); got != -1 {
		t.Fatalf("expected -1 for a missing marker, got %d", got)
	}
}

func TestFinale_WindowBeforeGameOver(t *testing.T) {
	lg := testLog()
	got := finale(lg, 40)
	if len(got) != 2 || got[0].Tick != 12 || got[1].Tick != 40 {
		t.Fatalf("expected ticks 12 and 40 in the last %d ticks, got %v", finaleTicks, got)
	}
	if got := finale(lg, 4); len(got) != 1 || got[0].Tick != 3 {
		t.Fatalf("expected the window to clamp at tick 0, got %v", got)
	}
	if finale(lg, -1) != nil {
		t.Fatal("expected no finale for a surviving run")
	}
}

func TestTopKey_StableOnTies(t *testing.T) {
	if got := topKey(map[string]int{"ufo": 2, "crocodile": 2, "cow": 1}); got != "crocodile(2)" {
		t.Fatalf("expected crocodile(2), got %s", got)
	}
	if got := topKey(nil); got != "none" {
		t.Fatalf("expected none, got %s", got)
	}
}

func TestJoinCountsAndAverages(t *testing.T) {
	m := map[string]int{"wall": 2, "self": 1}
	if got := joinCounts(m); got != "self=1 wall=2" {
		t.Fatalf("expected sorted counts, got %q", got)
	}
	if got := joinAverages(m, 2); got != "self=0.5 wall=1.0" {
		t.Fatalf("expected per-run averages, got %q", got)
	}
	if got := avgTickString(nil); got != "n/a" {
		t.Fatalf("expected n/a, got %s", got)
	}
}

func TestParseVariants(t *testing.T) {
	if vs, err := parseVariants("all"); err != nil || len(vs) != 5 {
		t.Fatalf("expected five variants, got %v %v", vs, err)
	}
	if _, err := parseVariants("torus"); err == nil {
		t.Fatal("expected an unknown variant to fail")
	}
}

func TestRunAutopilot_Deterministic(t *testing.T) {
	cfg := sim.GridConfig()
	a := runAutopilot(1, cfg, 7, 600)
	b := runAutopilot(1, cfg, 7, 600)
	if a.report.String() != b.report.String() || a.gameOverTick != b.gameOverTick {
		t.Fatalf("expected identical runs for the same seed:\n%s\n%s", a.report, b.report)
	}
	if a.report.Seed != 7 || a.variant != "grid" {
		t.Fatalf("expected seed 7 on grid, got %d on %s", a.report.Seed, a.variant)
	}
}
