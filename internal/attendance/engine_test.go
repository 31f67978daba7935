package attendance

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memStore struct {
	sessions  map[string]Session
	byToken   map[string]string
	records   map[string]Record
	conflicts int
	seedErr   error
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[string]Session),
		byToken:  make(map[string]string),
		records:  make(map[string]Record),
	}
}

func recKey(sessionID, studentID string) string { return sessionID + "|" + studentID }

func (m *memStore) CreateSession(_ context.Context, sess Session, records []Record) error {
	if m.conflicts > 0 {
		m.conflicts--
		return ErrTokenConflict
	}
	if m.seedErr != nil {
		return m.seedErr
	}
	m.sessions[sess.ID] = sess
	m.byToken[sess.QRToken] = sess.ID
	for _, rec := range records {
		m.records[recKey(rec.SessionID, rec.StudentID)] = rec
	}
	return nil
}

func (m *memStore) SessionByID(_ context.Context, id string) (Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (m *memStore) SessionByToken(_ context.Context, token string) (Session, error) {
	id, ok := m.byToken[token]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return m.sessions[id], nil
}

func (m *memStore) RecordFor(_ context.Context, sessionID, studentID string) (Record, error) {
	rec, ok := m.records[recKey(sessionID, studentID)]
	if !ok {
		return Record{}, ErrNotEnrolled
	}
	return rec, nil
}

func (m *memStore) MarkScanned(_ context.Context, sessionID, studentID string, status Status, at time.Time) (Record, error) {
	rec, ok := m.records[recKey(sessionID, studentID)]
	if !ok {
		return Record{}, ErrNotEnrolled
	}
	rec = Transition(rec, status, at)
	m.records[recKey(sessionID, studentID)] = rec
	return rec, nil
}

type memCourses struct {
	enrolled map[string][]string
}

func (m *memCourses) CourseExists(_ context.Context, courseID string) (bool, error) {
	_, ok := m.enrolled[courseID]
	return ok, nil
}

func (m *memCourses) ListEnrolledStudents(_ context.Context, courseID string) ([]string, error) {
	return m.enrolled[courseID], nil
}

func fakeRender(payload string) (string, error) { return "img:" + payload, nil }

func newTestEngine(st *memStore, courses *memCourses, at time.Time, grace time.Duration) *Engine {
	e := NewEngine(st, courses, fakeRender, grace)
	e.now = func() time.Time { return at }
	return e
}

var base = time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)

func TestCreateSessionSeedsEnrolledStudents(t *testing.T) {
	st := newMemStore()
	courses := &memCourses{enrolled: map[string][]string{"C1": {"S1", "S2", "S3"}}}
	e := newTestEngine(st, courses, base, 30*time.Minute)

	sess, err := e.CreateSession(context.Background(), "C1", base.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.QRToken == "" || sess.QRImage != "img:"+sess.QRToken {
		t.Fatalf("qr image not derived from token: %+v", sess)
	}
	if !sess.WindowStart.Equal(base) || !sess.Active {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if got := len(st.records); got != 3 {
		t.Fatalf("seeded %d records, want 3", got)
	}
	for _, id := range []string{"S1", "S2", "S3"} {
		rec, err := st.RecordFor(context.Background(), sess.ID, id)
		if err != nil {
			t.Fatalf("record for %s: %v", id, err)
		}
		if rec.Status != StatusAbsent {
			t.Fatalf("seeded status for %s = %s, want Absent", id, rec.Status)
		}
	}
}

func TestCreateSessionRejectsPastWindow(t *testing.T) {
	st := newMemStore()
	courses := &memCourses{enrolled: map[string][]string{"C1": nil}}
	e := newTestEngine(st, courses, base, 30*time.Minute)

	for _, end := range []time.Time{base, base.Add(-time.Second)} {
		if _, err := e.CreateSession(context.Background(), "C1", end); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("windowEnd %v: got %v, want ErrInvalidWindow", end, err)
		}
	}
	if len(st.sessions) != 0 {
		t.Fatal("rejected creation left a session behind")
	}
}

func TestCreateSessionUnknownCourse(t *testing.T) {
	e := newTestEngine(newMemStore(), &memCourses{enrolled: map[string][]string{}}, base, 30*time.Minute)
	if _, err := e.CreateSession(context.Background(), "nope", base.Add(time.Hour)); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("got %v, want ErrCourseNotFound", err)
	}
}

func TestCreateSessionRetriesTokenCollision(t *testing.T) {
	st := newMemStore()
	st.conflicts = 2
	courses := &memCourses{enrolled: map[string][]string{"C1": {"S1"}}}
	e := newTestEngine(st, courses, base, 30*time.Minute)

	if _, err := e.CreateSession(context.Background(), "C1", base.Add(time.Hour)); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}

	st2 := newMemStore()
	st2.conflicts = 100
	e2 := newTestEngine(st2, courses, base, 30*time.Minute)
	if _, err := e2.CreateSession(context.Background(), "C1", base.Add(time.Hour)); !errors.Is(err, ErrTokenConflict) {
		t.Fatalf("got %v, want ErrTokenConflict after bounded retries", err)
	}
}

func TestCreateSessionSeedFailureSurfaces(t *testing.T) {
	st := newMemStore()
	st.seedErr = errors.New("insert failed")
	courses := &memCourses{enrolled: map[string][]string{"C1": {"S1"}}}
	e := newTestEngine(st, courses, base, 30*time.Minute)

	if _, err := e.CreateSession(context.Background(), "C1", base.Add(time.Hour)); err == nil {
		t.Fatal("expected seed failure to surface")
	}
	if len(st.sessions) != 0 || len(st.records) != 0 {
		t.Fatal("failed seed left partial state")
	}
}

func TestScanClassificationBoundaries(t *testing.T) {
	grace := 30 * time.Minute
	end := base.Add(10 * time.Minute)

	cases := []struct {
		name    string
		at      time.Time
		want    Status
		wantErr error
	}{
		{"just inside window", end.Add(-time.Second), StatusPresent, nil},
		{"exactly at end", end, StatusPresent, nil},
		{"just past end", end.Add(time.Second), StatusLate, nil},
		{"at grace boundary", end.Add(grace), StatusLate, nil},
		{"past grace", end.Add(grace + time.Second), "", ErrWindowExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newMemStore()
			courses := &memCourses{enrolled: map[string][]string{"C1": {"S1"}}}
			e := newTestEngine(st, courses, base, grace)
			sess, err := e.CreateSession(context.Background(), "C1", end)
			if err != nil {
				t.Fatalf("CreateSession: %v", err)
			}

			e.now = func() time.Time { return tc.at }
			rec, err := e.Scan(context.Background(), sess.QRToken, "S1")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got err %v, want %v", err, tc.wantErr)
				}
				got, _ := st.RecordFor(context.Background(), sess.ID, "S1")
				if got.Status != StatusAbsent {
					t.Fatalf("rejected scan changed status to %s", got.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if rec.Status != tc.want {
				t.Fatalf("status = %s, want %s", rec.Status, tc.want)
			}
			if !rec.ScannedAt.Equal(tc.at) {
				t.Fatalf("scannedAt = %v, want %v", rec.ScannedAt, tc.at)
			}
		})
	}
}

func TestScanIsIdempotentWithinWindow(t *testing.T) {
	st := newMemStore()
	courses := &memCourses{enrolled: map[string][]string{"C1": {"S1"}}}
	e := newTestEngine(st, courses, base, 30*time.Minute)
	sess, _ := e.CreateSession(context.Background(), "C1", base.Add(10*time.Minute))

	e.now = func() time.Time { return base.Add(time.Minute) }
	if _, err := e.Scan(context.Background(), sess.QRToken, "S1"); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second := base.Add(2 * time.Minute)
	e.now = func() time.Time { return second }
	rec, err := e.Scan(context.Background(), sess.QRToken, "S1")
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if rec.Status != StatusPresent || !rec.ScannedAt.Equal(second) {
		t.Fatalf("got %+v, want Present at %v", rec, second)
	}
	if len(st.records) != 1 {
		t.Fatalf("duplicate record created: %d records", len(st.records))
	}
}

func TestLateRescanDoesNotDowngradePresent(t *testing.T) {
	st := newMemStore()
	courses := &memCourses{enrolled: map[string][]string{"C1": {"S1"}}}
	e := newTestEngine(st, courses, base, 30*time.Minute)
	end := base.Add(10 * time.Minute)
	sess, _ := e.CreateSession(context.Background(), "C1", end)

	inWindow := base.Add(time.Minute)
	e.now = func() time.Time { return inWindow }
	if _, err := e.Scan(context.Background(), sess.QRToken, "S1"); err != nil {
		t.Fatalf("first scan: %v", err)
	}

	e.now = func() time.Time { return end.Add(5 * time.Minute) }
	rec, err := e.Scan(context.Background(), sess.QRToken, "S1")
	if err != nil {
		t.Fatalf("late rescan: %v", err)
	}
	if rec.Status != StatusPresent {
		t.Fatalf("late rescan downgraded status to %s", rec.Status)
	}
	if !rec.ScannedAt.Equal(inWindow) {
		t.Fatalf("late rescan moved scannedAt to %v", rec.ScannedAt)
	}
}

func TestScanUnknownStudentAndToken(t *testing.T) {
	st := newMemStore()
	courses := &memCourses{enrolled: map[string][]string{"C1": {"S1"}}}
	e := newTestEngine(st, courses, base, 30*time.Minute)
	sess, _ := e.CreateSession(context.Background(), "C1", base.Add(10*time.Minute))

	if _, err := e.Scan(context.Background(), sess.QRToken, "ghost"); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("got %v, want ErrNotEnrolled", err)
	}
	if _, ok := st.records[recKey(sess.ID, "ghost")]; ok {
		t.Fatal("scan for unenrolled student created a record")
	}
	if _, err := e.Scan(context.Background(), "bogus-token", "S1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("got %v, want ErrSessionNotFound", err)
	}
}

func TestRemainingWindow(t *testing.T) {
	st := newMemStore()
	courses := &memCourses{enrolled: map[string][]string{"C1": nil}}
	e := newTestEngine(st, courses, base, 30*time.Minute)
	sess, _ := e.CreateSession(context.Background(), "C1", base.Add(3661*time.Second))

	d, err := e.RemainingWindow(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("RemainingWindow: %v", err)
	}
	h, m, s := SplitDuration(d)
	if h != 1 || m != 1 || s != 1 {
		t.Fatalf("decomposed %v as %d:%d:%d, want 1:1:1", d, h, m, s)
	}

	e.now = func() time.Time { return sess.WindowEnd.Add(time.Second) }
	if _, err := e.RemainingWindow(context.Background(), sess.ID); !errors.Is(err, ErrWindowExpired) {
		t.Fatalf("got %v, want ErrWindowExpired", err)
	}
	if _, err := e.RemainingWindow(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("got %v, want ErrSessionNotFound", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	st := newMemStore()
	courses := &memCourses{enrolled: map[string][]string{"C1": {"S1", "S2", "S3"}}}
	e := newTestEngine(st, courses, base, 1800*time.Second)

	sess, err := e.CreateSession(context.Background(), "C1", base.Add(600*time.Second))
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if len(st.records) != 3 {
		t.Fatalf("seeded %d records, want 3", len(st.records))
	}

	e.now = func() time.Time { return base.Add(10 * time.Second) }
	if rec, err := e.Scan(context.Background(), sess.QRToken, "S2"); err != nil || rec.Status != StatusPresent {
		t.Fatalf("S2 scan: rec=%+v err=%v, want Present", rec, err)
	}

	e.now = func() time.Time { return base.Add(650 * time.Second) }
	if rec, err := e.Scan(context.Background(), sess.QRToken, "S3"); err != nil || rec.Status != StatusLate {
		t.Fatalf("S3 scan: rec=%+v err=%v, want Late", rec, err)
	}

	s1, _ := st.RecordFor(context.Background(), sess.ID, "S1")
	if s1.Status != StatusAbsent {
		t.Fatalf("S1 status = %s, want Absent", s1.Status)
	}
}
