package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/spacecoco/internal/sim"
)

type runStats struct {
	runIndex int
	seed     int64
	variant  string
	report   sim.RunReport

	firstPickupTick int
	firstElimTick   int
	firstLevelTick  int
	firstBossTick   int
	lastPickupTick  int
	gameOverTick    int

	finale []sim.SimLogEntry
}

// finaleTicks is how much history before game over each run prints.
const finaleTicks = 30

func main() {
	var runs int
	var frames int
	var seedBase int64
	var seedStep int64
	var variant string

	flag.IntVar(&runs, "runs", 5, "number of headless runs per variant")
	flag.IntVar(&frames, "frames", 3600, "maximum frames per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&variant, "variant", "grid", "grid, grid-walls, plane, sphere, sphere-inner or all")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if frames <= 0 {
		fmt.Println("error: -frames must be > 0")
		return
	}
	variants, err := parseVariants(variant)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Spacecoco Report ===\n")
	fmt.Printf("variants=%s runs=%d frames=%d seed_base=%d seed_step=%d\n\n",
		strings.Join(variants, ","), runs, frames, seedBase, seedStep)

	for _, v := range variants {
		cfg, _ := sim.ConfigForVariant(v)
		all := make([]runStats, 0, runs)
		for i := 0; i < runs; i++ {
			seed := seedBase + int64(i)*seedStep
			stats := runAutopilot(i+1, cfg, seed, frames)
			all = append(all, stats)
			printRun(stats)
		}
		printAggregate(v, all)
	}
}

var allVariants = []string{"grid", "grid-walls", "plane", "sphere", "sphere-inner"}

func parseVariants(s string) ([]string, error) {
	if s == "all" {
		return allVariants, nil
	}
	if _, err := sim.ConfigForVariant(s); err != nil {
		return nil, err
	}
	return []string{s}, nil
}

// runAutopilot plays one seeded session with the autopilot until game over
// or the frame limit.
func runAutopilot(runIndex int, cfg sim.Config, seed int64, frames int) runStats {
	ts := sim.NewTestSim(
		sim.WithConfig(cfg),
		sim.WithSeed(seed),
		sim.WithAutopilot(),
	)
	ts.RunUntil(func(ts *sim.TestSim) bool {
		return ts.Session().State != sim.StateRunning
	}, frames)

	lg := ts.SimLog
	overTick := firstTick(lg, "session", "game_over", "")
	return runStats{
		runIndex:        runIndex,
		seed:            seed,
		variant:         sim.VariantName(ts.Sim.Config()),
		report:          sim.NewRunReport(ts.Sim, lg),
		firstPickupTick: firstTick(lg, "score", "pickup_eaten", ""),
		firstElimTick:   firstTick(lg, "combat", "elimination", ""),
		firstLevelTick:  firstTick(lg, "score", "level_up", ""),
		firstBossTick:   firstTick(lg, "combat", "boss_spawned", ""),
		lastPickupTick:  lastTick(lg, "score", "pickup_eaten"),
		gameOverTick:    overTick,
		finale:          finale(lg, overTick),
	}
}

func firstTick(lg *sim.SimLog, category, key, contains string) int {
	for _, e := range lg.Filter(category, key) {
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func lastTick(lg *sim.SimLog, category, key string) int {
	if e, ok := lg.LastOf(category, key); ok {
		return e.Tick
	}
	return -1
}

// finale is the log leading up to game over, or nil for a run that survived.
func finale(lg *sim.SimLog, overTick int) []sim.SimLogEntry {
	if overTick < 0 {
		return nil
	}
	return lg.FilterTickRange(max(overTick-finaleTicks, 0), overTick)
}

func printRun(rs runStats) {
	r := rs.report
	fmt.Printf("--- Run %d (%s, seed=%d) ---\n", rs.runIndex, rs.variant, rs.seed)
	fmt.Printf("phase_markers: first_pickup=%d last_pickup=%d first_elimination=%d first_level_up=%d first_boss=%d game_over=%d\n",
		rs.firstPickupTick, rs.lastPickupTick, rs.firstElimTick, rs.firstLevelTick, rs.firstBossTick, rs.gameOverTick)
	fmt.Print(r.String())
	if len(rs.finale) > 0 {
		fmt.Println("final_moments:")
		for _, e := range rs.finale {
			fmt.Printf("  %s\n", e)
		}
	}
	fmt.Println()
}

func printAggregate(variant string, all []runStats) {
	totalScore := 0
	totalLevel := 0
	totalElims := 0
	totalEaten := 0
	totalLength := 0
	totalFaults := 0
	survived := 0
	causes := map[string]int{}
	killers := map[string]int{}
	events := map[string]int{}

	pickupTicks := make([]int, 0, len(all))
	elimTicks := make([]int, 0, len(all))
	levelTicks := make([]int, 0, len(all))
	bossTicks := make([]int, 0, len(all))
	overTicks := make([]int, 0, len(all))

	for _, rs := range all {
		r := rs.report
		totalScore += r.Score
		totalLevel += r.Level
		totalElims += r.Eliminations
		totalEaten += r.Eaten
		totalLength += r.Length
		totalFaults += r.Faults
		if r.State == sim.StateGameOver {
			causes[r.Cause.String()]++
			if r.Cause == sim.CauseEnemy || r.Cause == sim.CauseLaser {
				killers[r.Killer.String()]++
			}
		} else {
			survived++
		}
		for k, n := range r.Events {
			events[k] += n
		}
		pickupTicks = appendMarker(pickupTicks, rs.firstPickupTick)
		elimTicks = appendMarker(elimTicks, rs.firstElimTick)
		levelTicks = appendMarker(levelTicks, rs.firstLevelTick)
		bossTicks = appendMarker(bossTicks, rs.firstBossTick)
		overTicks = appendMarker(overTicks, rs.gameOverTick)
	}

	n := len(all)
	fmt.Printf("=== Aggregate (%s) ===\n", variant)
	fmt.Printf("runs=%d survived=%d (%.0f%%) faults=%d\n", n, survived, pct(survived, n), totalFaults)
	fmt.Printf("avg_per_run: score=%.1f level=%.1f eliminations=%.1f eaten=%.1f length=%.1f\n",
		avg(totalScore, n), avg(totalLevel, n), avg(totalElims, n), avg(totalEaten, n), avg(totalLength, n))
	fmt.Printf("phase_marker_avg_ticks: first_pickup=%s first_elimination=%s first_level_up=%s first_boss=%s game_over=%s\n",
		avgTickString(pickupTicks), avgTickString(elimTicks), avgTickString(levelTicks), avgTickString(bossTicks), avgTickString(overTicks))
	fmt.Printf("causes: %s\n", joinCounts(causes))
	fmt.Printf("killers: %s  top=%s\n", joinCounts(killers), topKey(killers))
	fmt.Printf("avg_events_per_run: %s\n\n", joinAverages(events, n))
}

func appendMarker(ticks []int, t int) []int {
	if t < 0 {
		return ticks
	}
	return append(ticks, t)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func pct(part, n int) float64 {
	return avg(part*100, n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func topKey(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	best := ""
	bestN := 0
	for k, v := range counts {
		// Ties break alphabetically so output is stable.
		if v > bestN || (v == bestN && k < best) {
			best = k
			bestN = v
		}
	}
	return fmt.Sprintf("%s(%d)", best, bestN)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func joinAverages(m map[string]int, n int) string {
	if len(m) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s=%.1f", k, avg(m[k], n)))
	}
	return strings.Join(parts, " ")
}
