package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists sessions and records. CreateSession must write the session
// and its seeded records atomically, and MarkScanned must apply Transition
// semantics under row-level serialization for the (session, student) key.
type Store interface {
	CreateSession(ctx context.Context, sess Session, records []Record) error
	SessionByID(ctx context.Context, id string) (Session, error)
	SessionByToken(ctx context.Context, token string) (Session, error)
	RecordFor(ctx context.Context, sessionID, studentID string) (Record, error)
	MarkScanned(ctx context.Context, sessionID, studentID string, status Status, at time.Time) (Record, error)
}

// CourseSource answers which students a session must seed. The enrollment
// list is authoritative: a student absent from it never gets a record.
type CourseSource interface {
	CourseExists(ctx context.Context, courseID string) (bool, error)
	ListEnrolledStudents(ctx context.Context, courseID string) ([]string, error)
}

// RenderFunc turns a QR payload into a stored image representation.
type RenderFunc func(payload string) (string, error)

const tokenAttempts = 3

// Engine coordinates the QR attendance workflow: session creation with
// absentee seeding, window queries and scan classification.
type Engine struct {
	store   Store
	courses CourseSource
	render  RenderFunc
	grace   time.Duration
	now     func() time.Time
}

// NewEngine creates an engine. grace is how long past the window end a scan
// is still accepted as Late.
func NewEngine(store Store, courses CourseSource, render RenderFunc, grace time.Duration) *Engine {
	if grace <= 0 {
		grace = 30 * time.Minute
	}
	return &Engine{
		store:   store,
		courses: courses,
		render:  render,
		grace:   grace,
		now:     time.Now,
	}
}

// CreateSession opens an attendance window for a course and seeds one Absent
// record per enrolled student. The whole seed is atomic: a failed insert
// rolls the session back. QR token collisions are retried a bounded number
// of times before surfacing ErrTokenConflict.
func (e *Engine) CreateSession(ctx context.Context, courseID string, windowEnd time.Time) (Session, error) {
	now := e.now()
	if !windowEnd.After(now) {
		return Session{}, ErrInvalidWindow
	}

	ok, err := e.courses.CourseExists(ctx, courseID)
	if err != nil {
		return Session{}, fmt.Errorf("check course: %w", err)
	}
	if !ok {
		return Session{}, ErrCourseNotFound
	}

	students, err := e.courses.ListEnrolledStudents(ctx, courseID)
	if err != nil {
		return Session{}, fmt.Errorf("list enrollments: %w", err)
	}

	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token := uuid.NewString()
		image, err := e.render(token)
		if err != nil {
			return Session{}, fmt.Errorf("render qr: %w", err)
		}

		sess := Session{
			ID:          uuid.NewString(),
			CourseID:    courseID,
			QRToken:     token,
			QRImage:     image,
			WindowStart: now,
			WindowEnd:   windowEnd,
			Active:      true,
		}

		records := make([]Record, 0, len(students))
		for _, studentID := range students {
			records = append(records, Record{
				ID:        uuid.NewString(),
				SessionID: sess.ID,
				StudentID: studentID,
				Status:    StatusAbsent,
				ScannedAt: now,
			})
		}

		err = e.store.CreateSession(ctx, sess, records)
		if errors.Is(err, ErrTokenConflict) {
			continue
		}
		if err != nil {
			return Session{}, fmt.Errorf("seed session: %w", err)
		}
		return sess, nil
	}
	return Session{}, ErrTokenConflict
}

// SessionByID fetches a session, e.g. to re-serve its QR image.
func (e *Engine) SessionByID(ctx context.Context, sessionID string) (Session, error) {
	return e.store.SessionByID(ctx, sessionID)
}

// RemainingWindow returns how long the session's window stays open, as a
// whole-second duration. Expired sessions yield ErrWindowExpired.
func (e *Engine) RemainingWindow(ctx context.Context, sessionID string) (time.Duration, error) {
	sess, err := e.store.SessionByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	now := e.now()
	if now.After(sess.WindowEnd) {
		return 0, ErrWindowExpired
	}
	return sess.WindowEnd.Sub(now).Truncate(time.Second), nil
}

// Scan records a student's check-in. The session is resolved from the
// decoded QR payload, never from a client-supplied session id. Scans beyond
// the grace period are refused and leave the seeded Absent record untouched.
func (e *Engine) Scan(ctx context.Context, qrToken, studentID string) (Record, error) {
	sess, err := e.store.SessionByToken(ctx, qrToken)
	if err != nil {
		return Record{}, err
	}

	rec, err := e.store.RecordFor(ctx, sess.ID, studentID)
	if err != nil {
		return Record{}, err
	}

	now := e.now()
	status, err := Classify(now, sess.WindowEnd, e.grace)
	if err != nil {
		return rec, err
	}
	return e.store.MarkScanned(ctx, sess.ID, studentID, status, now)
}
