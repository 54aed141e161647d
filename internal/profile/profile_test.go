package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := Open(filepath.Join(t.TempDir(), "nested", "profile.json"))
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestGet_DefaultsWhenMissing(t *testing.T) {
	s := newStore(t)
	p, err := s.GetCallerUserProfile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "player" || p.Skin != "neon-coco" || p.BestScore != 0 {
		t.Fatalf("expected a default profile, got %+v", p)
	}
	if _, err := os.Stat(s.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected reading not to create the file")
	}
}

func TestSave_RoundTripsAndCreatesDir(t *testing.T) {
	s := newStore(t)
	if err := s.SaveCallerUserProfile(Profile{Name: "coco", Skin: "gold"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, err := s.GetCallerUserProfile()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "coco" || p.Skin != "gold" {
		t.Fatalf("expected the saved profile, got %+v", p)
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected no temp file left behind")
	}
}

func TestSubmitScore_TracksBestAndTotals(t *testing.T) {
	s := newStore(t)
	steps := []struct {
		score int
		best  bool
	}{
		{120, true},
		{80, false},
		{120, false},
		{300, true},
		{0, false},
	}
	for i, st := range steps {
		best, err := s.SubmitScore(st.score, "grid", int64(i))
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if best != st.best {
			t.Fatalf("submit %d (%d): expected best=%v, got %v", i, st.score, st.best, best)
		}
	}
	p, _ := s.GetCallerUserProfile()
	if p.BestScore != 300 || p.Games != 5 || p.TotalScore != 620 {
		t.Fatalf("expected best 300, 5 games, total 620, got %+v", p)
	}
	if len(p.Scores) != 4 || p.Scores[0].Score != 300 || p.Scores[3].Score != 80 {
		t.Fatalf("expected a sorted leaderboard without the zero, got %+v", p.Scores)
	}
}

func TestSubmitScore_KeepsTopTen(t *testing.T) {
	s := newStore(t)
	for i := 1; i <= 15; i++ {
		if _, err := s.SubmitScore(i*10, "plane", 1); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	p, _ := s.GetCallerUserProfile()
	if len(p.Scores) != 10 || p.Scores[9].Score != 60 {
		t.Fatalf("expected the ten best scores, got %+v", p.Scores)
	}
}

func TestGet_CorruptFile(t *testing.T) {
	s := newStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetCallerUserProfile(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if _, err := s.SubmitScore(10, "grid", 1); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected SubmitScore to refuse to overwrite a corrupt file, got %v", err)
	}
}
