// Package profile keeps the local player's profile and best scores in a JSON
// file under the user config directory.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ErrCorrupt is returned when the profile file exists but cannot be parsed.
var ErrCorrupt = errors.New("corrupt profile")

const (
	defaultName = "player"
	defaultSkin = "neon-coco"
	// topScores bounds the leaderboard, shared by all variants.
	topScores = 10
)

// Score is one leaderboard entry.
type Score struct {
	Score   int       `json:"score"`
	Variant string    `json:"variant"`
	Seed    int64     `json:"seed"`
	At      time.Time `json:"at"`
}

// Profile is the caller's persisted state.
type Profile struct {
	Name       string  `json:"name"`
	Skin       string  `json:"skin"`
	BestScore  int     `json:"best_score"`
	Games      int     `json:"games"`
	TotalScore int     `json:"total_score"`
	Scores     []Score `json:"scores,omitempty"`
}

// Store reads and writes one profile file. Methods are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// DefaultPath is spacecoco/profile.json under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "spacecoco", "profile.json"), nil
}

// Open returns a store backed by path. The file is created on first save.
func Open(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path is the backing file.
func (s *Store) Path() string { return s.path }

// GetCallerUserProfile loads the profile, or a fresh default if none was saved.
func (s *Store) GetCallerUserProfile() (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// SaveCallerUserProfile writes p atomically.
func (s *Store) SaveCallerUserProfile(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p)
}

// SubmitScore records a finished run and reports whether it beat the best.
// A non-positive score still counts as a game played.
func (s *Store) SubmitScore(score int, variant string, seed int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load()
	if err != nil {
		return false, err
	}
	p.Games++
	if score < 0 {
		score = 0
	}
	p.TotalScore += score
	best := score > p.BestScore
	if best {
		p.BestScore = score
	}
	if score > 0 {
		p.Scores = append(p.Scores, Score{Score: score, Variant: variant, Seed: seed, At: s.now().UTC()})
		sort.SliceStable(p.Scores, func(i, j int) bool { return p.Scores[i].Score > p.Scores[j].Score })
		if len(p.Scores) > topScores {
			p.Scores = p.Scores[:topScores]
		}
	}
	return best, s.save(p)
}

func (s *Store) load() (Profile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Profile{Name: defaultName, Skin: defaultSkin}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if p.Name == "" {
		p.Name = defaultName
	}
	if p.Skin == "" {
		p.Skin = defaultSkin
	}
	return p, nil
}

func (s *Store) save(p Profile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}
