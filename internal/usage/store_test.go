package usage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestModeValid(t *testing.T) {
	t.Parallel()

	if !ModeDirect.Valid() || !ModeTerminal.Valid() {
		t.Error("known modes must be valid")
	}
	for _, m := range []Mode{"", "tty", "DIRECT"} {
		if m.Valid() {
			t.Errorf("mode %q should be invalid", m)
		}
	}
}

func TestGet_NeverLaunched(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	rec, err := s.Get(context.Background(), "app:unknown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Errorf("rec = %+v, want nil for unknown key", rec)
	}
}

func TestRecordLaunch_RoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RecordLaunch(ctx, "app:editor", ModeDirect); err != nil {
		t.Fatalf("RecordLaunch: %v", err)
	}
	if err := s.RecordLaunch(ctx, "app:editor", ModeTerminal); err != nil {
		t.Fatalf("RecordLaunch: %v", err)
	}

	rec, err := s.Get(ctx, "app:editor")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec == nil {
		t.Fatal("record missing after RecordLaunch")
	}
	if rec.LaunchCount != 2 {
		t.Errorf("LaunchCount = %d, want 2", rec.LaunchCount)
	}
	if rec.LastLaunchMode != ModeTerminal {
		t.Errorf("LastLaunchMode = %q, want the most recent mode", rec.LastLaunchMode)
	}
	if rec.LastUsedAt == 0 {
		t.Error("LastUsedAt not set")
	}

	n, err := s.EventCount(ctx)
	if err != nil {
		t.Fatalf("EventCount: %v", err)
	}
	if n != 2 {
		t.Errorf("EventCount = %d, want 2", n)
	}
}

func TestRecordLaunch_InvalidMode(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	if err := s.RecordLaunch(context.Background(), "app:x", Mode("detached")); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestAll(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	keys := []string{"app:a", "app:b", "/home/u/notes.md"}
	for _, k := range keys {
		if err := s.RecordLaunch(ctx, k, ModeDirect); err != nil {
			t.Fatalf("RecordLaunch(%s): %v", k, err)
		}
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != len(keys) {
		t.Fatalf("len(all) = %d, want %d", len(all), len(keys))
	}
	for _, k := range keys {
		if all[k].LaunchCount != 1 {
			t.Errorf("all[%q].LaunchCount = %d, want 1", k, all[k].LaunchCount)
		}
	}
}

func TestSetPreferredMode(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RecordLaunch(ctx, "app:term", ModeDirect); err != nil {
		t.Fatalf("RecordLaunch: %v", err)
	}
	if err := s.SetPreferredMode(ctx, "app:term", ModeTerminal); err != nil {
		t.Fatalf("SetPreferredMode: %v", err)
	}

	rec, err := s.Get(ctx, "app:term")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.LastLaunchMode != ModeTerminal {
		t.Errorf("LastLaunchMode = %q, want terminal", rec.LastLaunchMode)
	}
	if rec.LaunchCount != 1 {
		t.Errorf("LaunchCount = %d, setting a preference must not count a launch", rec.LaunchCount)
	}
}

func TestSetPreferredMode_NewKey(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SetPreferredMode(ctx, "app:fresh", ModeTerminal); err != nil {
		t.Fatalf("SetPreferredMode: %v", err)
	}

	rec, err := s.Get(ctx, "app:fresh")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec == nil || rec.LaunchCount != 0 || rec.LastLaunchMode != ModeTerminal {
		t.Errorf("rec = %+v, want zero-count record with terminal mode", rec)
	}
}

func TestReopen_PreservesData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "usage.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.RecordLaunch(ctx, "app:durable", ModeTerminal); err != nil {
		t.Fatalf("RecordLaunch: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	rec, err := s2.Get(ctx, "app:durable")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec == nil || rec.LaunchCount != 1 || rec.LastLaunchMode != ModeTerminal {
		t.Errorf("rec = %+v, want the pre-restart record", rec)
	}
}

func TestOpen_MigrationIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "usage.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i, err)
		}
	}
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	s, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
