package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)

	id, err := s.StartSession()
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero session id")
	}

	// Unfinished sessions must not appear on the scoreboard.
	top, err := s.TopSessions(10)
	if err != nil {
		t.Fatalf("TopSessions failed: %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("expected no finished sessions, got %d", len(top))
	}

	if err := s.FinishSession(id, 123.5, 42, 840, 3, 7, 3600); err != nil {
		t.Fatalf("FinishSession failed: %v", err)
	}

	top, err = s.TopSessions(10)
	if err != nil {
		t.Fatalf("TopSessions failed: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("expected 1 finished session, got %d", len(top))
	}

	row := top[0]
	if row.ID != id {
		t.Errorf("expected session id %d, got %d", id, row.ID)
	}
	if row.Kills != 42 || row.Score != 840 || row.Unlocks != 3 || row.PartsLost != 7 {
		t.Errorf("unexpected counters: %+v", row)
	}
	if row.Duration != 123.5 {
		t.Errorf("expected duration 123.5, got %v", row.Duration)
	}
	if row.Ticks != 3600 {
		t.Errorf("expected 3600 ticks, got %d", row.Ticks)
	}
	if row.EndedAt.Before(row.StartedAt) {
		t.Errorf("ended_at %v before started_at %v", row.EndedAt, row.StartedAt)
	}
}

func TestTopSessionsOrdering(t *testing.T) {
	s := openTestStore(t)

	scores := []int{300, 900, 100, 500}
	for _, score := range scores {
		id, err := s.StartSession()
		if err != nil {
			t.Fatalf("StartSession failed: %v", err)
		}
		if err := s.FinishSession(id, 60, score/20, score, 0, 0, 1800); err != nil {
			t.Fatalf("FinishSession failed: %v", err)
		}
	}

	top, err := s.TopSessions(3)
	if err != nil {
		t.Fatalf("TopSessions failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 sessions with limit 3, got %d", len(top))
	}
	want := []int{900, 500, 300}
	for i, row := range top {
		if row.Score != want[i] {
			t.Errorf("position %d: expected score %d, got %d", i, want[i], row.Score)
		}
	}
}

func TestRecordKill(t *testing.T) {
	s := openTestStore(t)

	id, err := s.StartSession()
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	kills := []struct {
		tick       int64
		zombieType string
	}{
		{10, "walker"},
		{25, "walker"},
		{40, "brute"},
		{55, "walker"},
		{70, "exploder"},
	}
	for _, k := range kills {
		if err := s.RecordKill(id, k.tick, k.zombieType, "player"); err != nil {
			t.Fatalf("RecordKill failed: %v", err)
		}
	}

	counts, err := s.KillCountByType(id)
	if err != nil {
		t.Fatalf("KillCountByType failed: %v", err)
	}
	if counts["walker"] != 3 {
		t.Errorf("expected 3 walker kills, got %d", counts["walker"])
	}
	if counts["brute"] != 1 {
		t.Errorf("expected 1 brute kill, got %d", counts["brute"])
	}
	if counts["exploder"] != 1 {
		t.Errorf("expected 1 exploder kill, got %d", counts["exploder"])
	}

	// Kills are scoped to their session.
	other, err := s.StartSession()
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	counts, err = s.KillCountByType(other)
	if err != nil {
		t.Fatalf("KillCountByType failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("expected no kills for fresh session, got %v", counts)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id, err := s.StartSession()
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := s.FinishSession(id, 30, 5, 100, 1, 0, 900); err != nil {
		t.Fatalf("FinishSession failed: %v", err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	top, err := s2.TopSessions(5)
	if err != nil {
		t.Fatalf("TopSessions failed: %v", err)
	}
	if len(top) != 1 || top[0].Score != 100 {
		t.Fatalf("expected persisted session with score 100, got %+v", top)
	}
}
