package sim

import "testing"

// checkHead fails unless the snake's head is on cell c.
func checkHead(t *testing.T, ts *TestSim, c Cell) {
	t.Helper()
	if got := CellOf(ts.Snake().Head()); got != c {
		t.Fatalf("expected head at %v, got %v", c, got)
	}
}

func TestGrid_InitialLayout(t *testing.T) {
	ts := NewTestSim(WithSpawns(false))
	s := ts.Snake()
	if s.Len() != 5 {
		t.Fatalf("expected length 5, got %d", s.Len())
	}
	for i, c := range s.Cells() {
		want := Cell{X: 30 - i, Y: 20}
		if c != want {
			t.Fatalf("segment %d: expected %v, got %v", i, want, c)
		}
	}
	if s.Dir != DirRight {
		t.Fatalf("expected to start moving right, got %s", s.Dir)
	}
}

func TestGrid_FiveMovesRight(t *testing.T) {
	ts := NewTestSim(WithSpawns(false))
	if n := ts.RunMoves(5); n != 5 {
		t.Fatalf("expected 5 moves, got %d", n)
	}
	checkHead(t, ts, Cell{X: 35, Y: 20})
	if ts.Snake().Len() != 5 {
		t.Fatalf("expected length to stay 5, got %d", ts.Snake().Len())
	}
	// 96ms per move at 16ms per frame.
	if ts.Frames != 30 {
		t.Fatalf("expected 30 frames for 5 moves, got %d", ts.Frames)
	}
}

func TestGrid_PickupOnNextCell(t *testing.T) {
	ts := NewTestSim(
		WithSpawns(false),
		WithVerbose(true),
		WithPickupAt(Cell{X: 31, Y: 20}),
	)
	ts.RunMoves(1)

	ses := ts.Session()
	if ses.Score != 10 {
		t.Fatalf("expected score 10, got %d", ses.Score)
	}
	if n := ts.SimLog.Count("world", "particle_burst"); n != 1 {
		t.Fatalf("expected exactly one particle burst, got %d\n%s", n, ts.SimLog.Format())
	}
	if n := ts.SimLog.Count("score", "pickup_eaten"); n != 1 {
		t.Fatalf("expected one pickup_eaten, got %d", n)
	}
	if ts.Sim.Registry().CountClass(ts.Sim.Config(), ClassPickup) != 0 {
		t.Fatal("expected the pickup to be removed")
	}
	if len(ts.Sim.Registry().Popups()) != 1 {
		t.Fatalf("expected one score popup, got %d", len(ts.Sim.Registry().Popups()))
	}
}

func TestGrid_GrowthOneSegmentPerMove(t *testing.T) {
	ts := NewTestSim(WithSpawns(false), WithEntityAt(KindAnomaly, Cell{X: 32, Y: 20}.Vec()))
	ts.RunMoves(1)
	if got := ts.Snake().GrowthPending; got != 3 {
		t.Fatalf("expected 3 segments owed, got %d", got)
	}
	for want := 6; want <= 8; want++ {
		ts.RunMoves(1)
		if got := ts.Snake().Len(); got != want {
			t.Fatalf("expected length %d, got %d", want, got)
		}
	}
	ts.RunMoves(1)
	if got := ts.Snake().Len(); got != 8 {
		t.Fatalf("expected growth to stop at 8, got %d", got)
	}
}

func TestGrid_TightLoopSelfCollision(t *testing.T) {
	ts := NewTestSim(WithSpawns(false))
	in := ts.Sim.Input()

	in.QueueDirection(DirDown)
	ts.RunMoves(1)
	in.QueueDirection(DirLeft)
	ts.RunMoves(1)
	in.QueueDirection(DirUp)
	if n := ts.RunMoves(1); n != 0 {
		t.Fatalf("expected the move into the body not to commit, got %d moves", n)
	}

	ses := ts.Session()
	if ses.State != StateGameOver || ses.Cause != CauseSelf {
		t.Fatalf("expected self collision game over, got state=%s cause=%s", ses.State, ses.Cause)
	}
	if ts.Frames != 18 {
		t.Fatalf("expected game over on the third move tick (frame 18), got frame %d", ts.Frames)
	}
	checkHead(t, ts, Cell{X: 29, Y: 21})
}

func TestGrid_ChasingTailIsLegal(t *testing.T) {
	ts := NewTestSim(WithSpawns(false), WithInitialLength(4))
	in := ts.Sim.Input()
	for _, d := range []Direction{DirDown, DirLeft, DirUp, DirRight, DirDown} {
		in.QueueDirection(d)
		if n := ts.RunMoves(1); n != 1 {
			t.Fatalf("expected move %s to commit, state=%s", d, ts.Session().State)
		}
	}
	if ts.Session().State != StateRunning {
		t.Fatalf("expected to keep running, got %s", ts.Session().State)
	}
}

func TestGridStep_WrapAtEveryEdge(t *testing.T) {
	cfg := GridConfig()
	cases := []struct {
		from Cell
		d    Direction
		want Cell
	}{
		{Cell{59, 20}, DirRight, Cell{0, 20}},
		{Cell{0, 20}, DirLeft, Cell{59, 20}},
		{Cell{30, 0}, DirUp, Cell{30, 39}},
		{Cell{30, 39}, DirDown, Cell{30, 0}},
	}
	for _, tc := range cases {
		next, ok := gridStep(&cfg, tc.from.Vec(), tc.d)
		if !ok {
			t.Fatalf("%v %s: expected wrap, got wall", tc.from, tc.d)
		}
		if got := CellOf(next); got != tc.want {
			t.Fatalf("%v %s: expected %v, got %v", tc.from, tc.d, tc.want, got)
		}
	}
}

func TestGridStep_FatalAtEveryEdge(t *testing.T) {
	cfg := GridWallsConfig()
	cases := []struct {
		from Cell
		d    Direction
	}{
		{Cell{59, 20}, DirRight},
		{Cell{0, 20}, DirLeft},
		{Cell{30, 0}, DirUp},
		{Cell{30, 39}, DirDown},
	}
	for _, tc := range cases {
		if _, ok := gridStep(&cfg, tc.from.Vec(), tc.d); ok {
			t.Fatalf("%v %s: expected a fatal wall", tc.from, tc.d)
		}
	}
	if _, ok := gridStep(&cfg, Cell{58, 20}.Vec(), DirRight); !ok {
		t.Fatal("expected the last inner cell to be reachable")
	}
}

func TestGrid_WallEndsSessionWithoutCommit(t *testing.T) {
	ts := NewTestSim(WithConfig(GridWallsConfig()), WithSpawns(false))
	moves := ts.RunMoves(40)
	if moves != 29 {
		t.Fatalf("expected 29 moves before the wall, got %d", moves)
	}
	ses := ts.Session()
	if ses.State != StateGameOver || ses.Cause != CauseWall {
		t.Fatalf("expected wall game over, got state=%s cause=%s", ses.State, ses.Cause)
	}
	checkHead(t, ts, Cell{X: 59, Y: 20})
}

func TestGrid_WrapKeepsRunning(t *testing.T) {
	ts := NewTestSim(WithSpawns(false))
	ts.RunMoves(30)
	if ts.Session().State != StateRunning {
		t.Fatalf("expected wrap to keep running, got %s", ts.Session().State)
	}
	checkHead(t, ts, Cell{X: 0, Y: 20})
}

func TestGrid_SpeedScalesWithLevel(t *testing.T) {
	cfg := GridConfig()
	cases := []struct {
		level int
		want  int64 // milliseconds
	}{
		{1, 96}, {2, 48}, {3, 32}, {5, 32},
	}
	for _, tc := range cases {
		if got := cfg.moveInterval(tc.level).Milliseconds(); got != tc.want {
			t.Errorf("level %d: expected %dms, got %dms", tc.level, tc.want, got)
		}
	}
}
