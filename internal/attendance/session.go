package attendance

import (
	"errors"
	"time"
)

// Status of a student's attendance record within a session.
type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	default:
		return false
	}
}

// Session is one QR-backed attendance window for a course.
type Session struct {
	ID          string    `json:"session_id"`
	CourseID    string    `json:"course_id"`
	QRToken     string    `json:"-"`
	QRImage     string    `json:"qr_image"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Active      bool      `json:"active"`
}

// Record is the single authoritative attendance row for one student in one
// session. Seeded as Absent at session creation; ScannedAt tracks the last
// status-affecting event.
type Record struct {
	ID        string    `json:"record_id"`
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	Status    Status    `json:"status"`
	ScannedAt time.Time `json:"scanned_at"`
}

var (
	ErrSessionNotFound = errors.New("attendance: session not found")
	ErrCourseNotFound  = errors.New("attendance: course not found")
	ErrInvalidWindow   = errors.New("attendance: window end must be in the future")
	ErrWindowExpired   = errors.New("attendance: window expired")
	ErrNotEnrolled     = errors.New("attendance: student not enrolled in course")
	ErrTokenConflict   = errors.New("attendance: qr token already in use")
)

// Classify maps a scan time onto a status. Scans inside the window are
// Present; scans past the window but within the grace period are Late;
// anything later is refused with ErrWindowExpired.
func Classify(now, windowEnd time.Time, grace time.Duration) (Status, error) {
	if !now.After(windowEnd) {
		return StatusPresent, nil
	}
	if now.Sub(windowEnd) <= grace {
		return StatusLate, nil
	}
	return "", ErrWindowExpired
}

// Transition applies a classified scan to a record. The first terminal
// classification wins: an Absent record takes the new status, a Present
// record only refreshes its scan time on another Present, and nothing ever
// moves back to Absent.
func Transition(rec Record, status Status, at time.Time) Record {
	switch {
	case rec.Status == StatusAbsent:
		rec.Status = status
		rec.ScannedAt = at
	case rec.Status == StatusPresent && status == StatusPresent:
		rec.ScannedAt = at
	}
	return rec
}

// SplitDuration decomposes a duration into whole hours, minutes and seconds
// using integer arithmetic on total seconds.
func SplitDuration(d time.Duration) (hours, minutes, seconds int) {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	return total / 3600, total % 3600 / 60, total % 60
}
