package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists attendance data in Postgres. It implements Store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const uniqueViolation = "23505"

// CreateSession inserts a session and its seeded records in one transaction.
// A qr_token collision surfaces as ErrTokenConflict; any other failure rolls
// the whole seed back so no partially-seeded session becomes visible.
func (r *Repository) CreateSession(ctx context.Context, sess Session, records []Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance_sessions (session_id, course_id, qr_token, qr_image, window_start, window_end, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sess.ID, sess.CourseID, sess.QRToken, sess.QRImage, sess.WindowStart, sess.WindowEnd, sess.Active)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrTokenConflict
		}
		return err
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_records (record_id, session_id, student_id, status, scanned_at)
			VALUES ($1, $2, $3, $4, $5)
		`, rec.ID, rec.SessionID, rec.StudentID, rec.Status, rec.ScannedAt); err != nil {
			return fmt.Errorf("seed record for student %s: %w", rec.StudentID, err)
		}
	}
	return tx.Commit()
}

// SessionByID returns a session by id.
func (r *Repository) SessionByID(ctx context.Context, id string) (Session, error) {
	return r.scanSession(r.db.QueryRowContext(ctx, `
		SELECT session_id, course_id, qr_token, qr_image, window_start, window_end, active
		FROM attendance_sessions WHERE session_id = $1
	`, id))
}

// SessionByToken resolves a session from a decoded QR payload.
func (r *Repository) SessionByToken(ctx context.Context, token string) (Session, error) {
	return r.scanSession(r.db.QueryRowContext(ctx, `
		SELECT session_id, course_id, qr_token, qr_image, window_start, window_end, active
		FROM attendance_sessions WHERE qr_token = $1
	`, token))
}

func (r *Repository) scanSession(row *sql.Row) (Session, error) {
	var sess Session
	err := row.Scan(&sess.ID, &sess.CourseID, &sess.QRToken, &sess.QRImage, &sess.WindowStart, &sess.WindowEnd, &sess.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// RecordFor returns the seeded record for a (session, student) pair. A
// missing row means the student was not enrolled when the session was made.
func (r *Repository) RecordFor(ctx context.Context, sessionID, studentID string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT record_id, session_id, student_id, status, scanned_at
		FROM attendance_records
		WHERE session_id = $1 AND student_id = $2
	`, sessionID, studentID)
	var rec Record
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.ScannedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotEnrolled
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// MarkScanned applies Transition semantics in a single conditional update:
// only an Absent record takes a new status, a Present record refreshes its
// scan time on another Present, everything else is left as-is. The row-level
// lock taken by UPDATE serializes concurrent scans for the same student.
func (r *Repository) MarkScanned(ctx context.Context, sessionID, studentID string, status Status, at time.Time) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_records
		SET status = CASE WHEN status = 'Absent' THEN $3 ELSE status END,
		    scanned_at = CASE
		        WHEN status = 'Absent' THEN $4
		        WHEN status = 'Present' AND $3 = 'Present' THEN $4
		        ELSE scanned_at
		    END
		WHERE session_id = $1 AND student_id = $2
		RETURNING record_id, session_id, student_id, status, scanned_at
	`, sessionID, studentID, string(status), at)
	var rec Record
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.ScannedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotEnrolled
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListRecords returns all records for a session ordered by student id.
func (r *Repository) ListRecords(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT record_id, session_id, student_id, status, scanned_at
		FROM attendance_records
		WHERE session_id = $1
		ORDER BY student_id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.ScannedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// InsertAudit appends an audit row for a processed scan event. Used by the
// worker, never by the request path.
func (r *Repository) InsertAudit(ctx context.Context, id string, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_audit (id, session_id, student_id, status, scanned_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, rec.SessionID, rec.StudentID, rec.Status, rec.ScannedAt)
	return err
}
