package scheduler

import (
	"testing"
	"time"
)

func TestDailyAndNext(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	if !s.Next().IsZero() {
		t.Error("expected zero next time before scheduling")
	}
	if err := s.Daily("07:30", func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Start()

	if n := len(s.cron.Entries()); n != 1 {
		t.Fatalf("expected 1 cron entry, got %d", n)
	}
	next := s.Next()
	if next.Hour() != 7 || next.Minute() != 30 {
		t.Errorf("expected next run at 07:30, got %v", next)
	}
	if !next.After(time.Now()) {
		t.Errorf("expected next run in the future, got %v", next)
	}
}

func TestDailyReplacesJob(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	s.Daily("07:30", func() {})
	s.Daily("18:00", func() {})
	if n := len(s.cron.Entries()); n != 1 {
		t.Errorf("expected job to be replaced, got %d entries", n)
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("23:05")
	if err != nil || h != 23 || m != 5 {
		t.Errorf("ParseClock(23:05) = %d, %d, %v", h, m, err)
	}
	for _, bad := range []string{"", "invalid", "24:00", "12:60", "9:00", "12:0"} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := New(nil)
	s.Stop()
	if s.location != time.Local {
		t.Errorf("expected local timezone default, got %v", s.location)
	}
}
