package sim

import (
	"math"
	"testing"
	"time"
)

func TestMotionPos_Reproducible(t *testing.T) {
	cfg := GridConfig()
	for k := Kind(0); k < KindCount; k++ {
		e := &Entity{Kind: k, Origin: V2(-3, 12), Velocity: V2(3, 1), Phase: 0.7, SpawnedAt: time.Second}
		orig := *e
		a := MotionPos(&cfg, e, 4*time.Second)
		b := MotionPos(&cfg, e, 4*time.Second)
		if a != b {
			t.Fatalf("%s: expected identical positions, got %v and %v", k, a, b)
		}
		if *e != orig {
			t.Fatalf("%s: expected MotionPos not to mutate the entity", k)
		}
		if p := MotionPos(&cfg, e, 0); p.Sub(MotionPos(&cfg, e, time.Second)).Len() > 1e-9 {
			t.Fatalf("%s: expected negative age to clamp to spawn position", k)
		}
	}
}

func TestMotionPos_OrbitStaysOnShell(t *testing.T) {
	cfg := SphereConfig()
	e := &Entity{Kind: KindUFO, Origin: Vec{X: 20}, Velocity: Vec{Z: 1}, Phase: 1}
	for i := 0; i < 200; i++ {
		p := MotionPos(&cfg, e, time.Duration(i)*50*time.Millisecond)
		if math.Abs(p.Len()-20) > 1e-9 {
			t.Fatalf("step %d: expected radius 20, got %.6f", i, p.Len())
		}
	}
}

func TestPlane_CruisesWithoutInput(t *testing.T) {
	ts := NewTestSim(WithConfig(PlaneConfig()), WithSpawns(false))
	start := ts.Snake().Head()
	ts.RunFrames(60)
	moved := ts.Snake().Head().Sub(start)
	want := 6 * 0.96
	if math.Abs(moved.X-want) > 0.01 || math.Abs(moved.Y) > 1e-9 {
		t.Fatalf("expected cruise of %.2f along +X, got %+v", want, moved)
	}
}

func TestPlane_BrakeSlows(t *testing.T) {
	ts := NewTestSim(WithConfig(PlaneConfig()), WithSpawns(false))
	ts.Sim.Input().Press(KeyBrake)
	ts.RunFrames(60)
	if sp := ts.Snake().Speed; sp > 0.1 {
		t.Fatalf("expected the brake to nearly stop the snake, got speed %.3f", sp)
	}
	ts.Sim.Input().Release(KeyBrake)
	ts.RunFrames(120)
	if sp := ts.Snake().Speed; math.Abs(sp-6) > 0.5 {
		t.Fatalf("expected the snake to return to cruise, got %.3f", sp)
	}
}

func TestPlane_BrakePressOpensWindow(t *testing.T) {
	press := map[string]func(*Sampler){
		"remote": func(s *Sampler) { s.ApplyIntent(Intent{Brake: true}) },
		"tap": func(s *Sampler) {
			s.Press(KeyBrake)
			s.Release(KeyBrake)
		},
	}
	for name, brake := range press {
		ts := NewTestSim(WithConfig(PlaneConfig()), WithSpawns(false))
		brake(ts.Sim.Input())
		ts.RunFrames(20)
		if sp := ts.Snake().Speed; sp > 0.5 {
			t.Fatalf("%s: expected a single brake press to slow the snake, got %.3f", name, sp)
		}
		ts.RunFrames(120)
		if sp := ts.Snake().Speed; math.Abs(sp-6) > 0.5 {
			t.Fatalf("%s: expected cruise after the brake window, got %.3f", name, sp)
		}
	}
}

func TestPlane_SteerTowardIntent(t *testing.T) {
	ts := NewTestSim(WithConfig(PlaneConfig()), WithSpawns(false))
	ts.Sim.Input().ApplyIntent(Intent{X: 0, Y: 1, Accel: 1})
	ts.RunFrames(60)
	s := ts.Snake()
	if s.Heading.Y < 0.95 {
		t.Fatalf("expected heading to turn toward +Y, got %+v", s.Heading)
	}
	if s.Speed < 12 {
		t.Fatalf("expected full acceleration toward max speed, got %.2f", s.Speed)
	}
}

func TestSphere_SegmentsStayOnShell(t *testing.T) {
	ts := NewTestSim(WithConfig(SphereConfig()), WithSpawns(false))
	ts.Sim.Input().ApplyIntent(Intent{X: 1, Y: -1})
	ts.RunFrames(240)
	r := ts.Sim.Config().ShellRadius()
	for i, p := range ts.Snake().Segments {
		if math.Abs(p.Len()-r) > 1e-6 {
			t.Fatalf("segment %d off the shell: %.6f", i, p.Len())
		}
	}
	if ts.Session().State != StateRunning {
		t.Fatalf("expected the snake to survive steering on the shell, got %s", ts.Session().State)
	}
}

func TestSphereInner_EverythingOnInnerShell(t *testing.T) {
	cfg := SphereInnerConfig()
	ts := NewTestSim(WithConfig(cfg), WithSeed(3), WithTune(func(c *Config) {
		c.Spawns[CategoryPickup].Interval = 100 * time.Millisecond
		c.Spawns[CategoryEnemy].Interval = 100 * time.Millisecond
	}))
	ts.Sim.Input().ApplyIntent(Intent{X: -1, Y: 1, Accel: 0.3})
	ts.RunFrames(120)

	for i, p := range ts.Snake().Segments {
		if math.Abs(p.Len()-cfg.ShellInner) > 1e-6 {
			t.Fatalf("segment %d at radius %.6f, expected %.1f", i, p.Len(), cfg.ShellInner)
		}
	}
	ents := ts.Sim.Registry().Entities()
	if len(ents) == 0 {
		t.Fatal("expected entities to have spawned")
	}
	for _, e := range ents {
		if math.Abs(e.Pos.Len()-cfg.ShellInner) > 1e-6 {
			t.Fatalf("%s at radius %.6f, expected %.1f", e.Kind, e.Pos.Len(), cfg.ShellInner)
		}
	}
}

func TestSettlePlayer_Policies(t *testing.T) {
	cfg := PlaneConfig()
	if p, ok := settlePlayer(&cfg, V2(-1, 65)); !ok || p != V2(95, 1) {
		t.Fatalf("expected wrap to (95,1), got %+v ok=%v", p, ok)
	}
	cfg.PlayerBoundary = BoundaryFatal
	if _, ok := settlePlayer(&cfg, V2(96, 10)); ok {
		t.Fatal("expected the right wall to be fatal")
	}
	if _, ok := settlePlayer(&cfg, V2(95.9, 10)); !ok {
		t.Fatal("expected a point inside the wall to be fine")
	}
	cfg.PlayerBoundary = BoundaryClamp
	if p, _ := settlePlayer(&cfg, V2(-4, 70)); p != V2(0, 64) {
		t.Fatalf("expected clamp to (0,64), got %+v", p)
	}
}

func TestPlane_WallEndsSession(t *testing.T) {
	ts := NewTestSim(WithConfig(PlaneConfig()), WithSpawns(false), WithTune(func(c *Config) {
		c.PlayerBoundary = BoundaryFatal
	}))
	ts.RunUntil(func(ts *TestSim) bool { return ts.Session().State == StateGameOver }, 2000)
	if ses := ts.Session(); ses.State != StateGameOver || ses.Cause != CauseWall {
		t.Fatalf("expected a wall death, got %s cause=%s", ses.State, ses.Cause)
	}
}

func TestContinuousSelfHit_IgnoresNeck(t *testing.T) {
	cfg := PlaneConfig()
	s := &Snake{Segments: []Vec{V2(10, 10), V2(10.5, 10), V2(11, 10), V2(11.5, 10), V2(12, 10), V2(20, 20)}}
	if continuousSelfHit(&cfg, s) {
		t.Fatal("expected the neck to be ignored")
	}
	s.Segments = append(s.Segments, V2(10.3, 10.2))
	if !continuousSelfHit(&cfg, s) {
		t.Fatal("expected a hit against a segment past the neck")
	}
}

func TestFollowChain_KeepsSpacingAndGrows(t *testing.T) {
	cfg := PlaneConfig()
	s := &Snake{Segments: []Vec{V2(13, 10), V2(10, 10), V2(9.2, 10)}, GrowthPending: 2}
	followChain(&cfg, s)
	for i := 1; i < len(s.Segments); i++ {
		if d := s.Segments[i-1].Sub(s.Segments[i]).Len(); d > cfg.SegmentSpacing+1e-9 {
			t.Fatalf("link %d stretched to %.3f", i, d)
		}
	}
	if s.Len() != 4 || s.GrowthPending != 1 {
		t.Fatalf("expected one segment grown on a stretched tail, got len=%d pending=%d", s.Len(), s.GrowthPending)
	}

	// The new tail sits on the old one; nothing more grows until it unrolls.
	followChain(&cfg, s)
	if s.Len() != 4 || s.GrowthPending != 1 {
		t.Fatalf("expected growth to wait for the tail to move, got len=%d pending=%d", s.Len(), s.GrowthPending)
	}
	s.Segments[0] = s.Segments[0].Add(V2(cfg.SegmentSpacing, 0))
	followChain(&cfg, s)
	if s.Len() != 5 || s.GrowthPending != 0 {
		t.Fatalf("expected the second segment after one spacing step, got len=%d pending=%d", s.Len(), s.GrowthPending)
	}
}

func TestPlane_GrowthUnrollsAlongPath(t *testing.T) {
	ts := NewTestSim(WithConfig(PlaneConfig()), WithSpawns(false))
	start := ts.Snake().Len()
	ts.Snake().GrowthPending = 3
	ts.RunFrames(3)
	if got := ts.Snake().Len(); got != start+1 {
		t.Fatalf("expected a single new segment after three frames, got %d", got-start)
	}
	ts.RunFrames(60)
	segs := ts.Snake().Segments
	if len(segs) != start+3 {
		t.Fatalf("expected all three segments grown, got %d", len(segs)-start)
	}
	spacing := ts.Sim.Config().SegmentSpacing
	for i := len(segs) - 3; i < len(segs); i++ {
		if d := segs[i-1].Sub(segs[i]).Len(); d < spacing*0.95 {
			t.Fatalf("link %d is %.3f, expected new segments spread out", i, d)
		}
	}
}

func TestVFX_LifeOnlyDecreases(t *testing.T) {
	r := newRegistry(&Snake{Segments: []Vec{{}}})
	p := &Particle{Vel: V2(10, 0), Life: 1, Decay: 2}
	r.AddParticle(p)
	pp := &Popup{Life: popupLife, Total: popupLife}
	r.AddPopup(pp)
	prev, prevPop := p.Life, pp.Life
	for i := 0; i < 30; i++ {
		integrateVFX(r, 1.0/60)
		if p.Life >= prev || pp.Life >= prevPop {
			t.Fatalf("step %d: expected life to decrease", i)
		}
		prev, prevPop = p.Life, pp.Life
	}
	if p.Vel.X >= 10 {
		t.Fatal("expected particle drag")
	}
}
