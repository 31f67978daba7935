package attendance

import (
	"errors"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	end := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	grace := 30 * time.Minute

	cases := []struct {
		name    string
		now     time.Time
		want    Status
		wantErr error
	}{
		{"well inside", end.Add(-5 * time.Minute), StatusPresent, nil},
		{"boundary", end, StatusPresent, nil},
		{"one second late", end.Add(time.Second), StatusLate, nil},
		{"grace boundary", end.Add(grace), StatusLate, nil},
		{"beyond grace", end.Add(grace + time.Second), "", ErrWindowExpired},
	}
	for _, tc := range cases {
		got, err := Classify(tc.now, end, grace)
		if !errors.Is(err, tc.wantErr) || got != tc.want {
			t.Errorf("%s: Classify = (%s, %v), want (%s, %v)", tc.name, got, err, tc.want, tc.wantErr)
		}
	}
}

func TestTransition(t *testing.T) {
	t0 := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	seeded := Record{Status: StatusAbsent, ScannedAt: t0}

	cases := []struct {
		name       string
		rec        Record
		status     Status
		wantStatus Status
		wantAt     time.Time
	}{
		{"absent takes present", seeded, StatusPresent, StatusPresent, t1},
		{"absent takes late", seeded, StatusLate, StatusLate, t1},
		{"present refreshes on present", Record{Status: StatusPresent, ScannedAt: t0}, StatusPresent, StatusPresent, t1},
		{"present ignores late", Record{Status: StatusPresent, ScannedAt: t0}, StatusLate, StatusPresent, t0},
		{"late stays late", Record{Status: StatusLate, ScannedAt: t0}, StatusLate, StatusLate, t0},
	}
	for _, tc := range cases {
		got := Transition(tc.rec, tc.status, t1)
		if got.Status != tc.wantStatus || !got.ScannedAt.Equal(tc.wantAt) {
			t.Errorf("%s: got (%s, %v), want (%s, %v)", tc.name, got.Status, got.ScannedAt, tc.wantStatus, tc.wantAt)
		}
	}
}

func TestSplitDuration(t *testing.T) {
	cases := []struct {
		d       time.Duration
		h, m, s int
	}{
		{3661 * time.Second, 1, 1, 1},
		{3600 * time.Second, 1, 0, 0},
		{3599 * time.Second, 0, 59, 59},
		{59 * time.Second, 0, 0, 59},
		{0, 0, 0, 0},
		{-5 * time.Second, 0, 0, 0},
		{26*time.Hour + 2*time.Minute + 3*time.Second, 26, 2, 3},
	}
	for _, tc := range cases {
		h, m, s := SplitDuration(tc.d)
		if h != tc.h || m != tc.m || s != tc.s {
			t.Errorf("SplitDuration(%v) = %d:%d:%d, want %d:%d:%d", tc.d, h, m, s, tc.h, tc.m, tc.s)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPresent, StatusLate, StatusAbsent} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("Excused").Valid() {
		t.Error("unknown status should be invalid")
	}
}
