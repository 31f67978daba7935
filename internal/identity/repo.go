package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists identity data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const uniqueViolation = "23505"

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrUsernameTaken
	}
	return err
}

// UserByUsername returns the account matching a login name.
func (r *Repository) UserByUsername(ctx context.Context, username string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, last_name, role, username, password, created_at
		FROM users WHERE username = $1
	`, username)
	return scanUser(row)
}

// UserByID returns the account for a user id.
func (r *Repository) UserByID(ctx context.Context, userID string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, last_name, role, username, password, created_at
		FROM users WHERE user_id = $1
	`, userID)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.UserID, &u.FirstName, &u.LastName, &u.Role, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// AdminExists reports whether any admin account is present.
func (r *Repository) AdminExists(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateStudent inserts the user row and the student row atomically, issuing
// the next sequential student id inside the same transaction.
func (r *Repository) CreateStudent(ctx context.Context, user User, student Student) (Student, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Student{}, err
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, user); err != nil {
		return Student{}, mapUniqueViolation(err)
	}

	var last sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT student_id FROM students ORDER BY student_id DESC LIMIT 1 FOR UPDATE
	`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Student{}, err
	}

	student.StudentID = NextStudentID(last.String, time.Now())
	student.UserID = user.UserID
	_, err = tx.ExecContext(ctx, `
		INSERT INTO students (student_id, user_id, program_id, section_id, current_gpa, gpax, year_level, course_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, student.StudentID, student.UserID, student.ProgramID, student.SectionID,
		student.CurrentGPA, student.GPAX, student.YearLevel, student.CourseCount, student.Status)
	if err != nil {
		return Student{}, err
	}
	return student, tx.Commit()
}

// CreateTeacher inserts the user row and the teacher row atomically.
func (r *Repository) CreateTeacher(ctx context.Context, user User, teacher Teacher) (Teacher, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Teacher{}, err
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, user); err != nil {
		return Teacher{}, mapUniqueViolation(err)
	}

	var last sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT teacher_id FROM teachers ORDER BY teacher_id DESC LIMIT 1 FOR UPDATE
	`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Teacher{}, err
	}

	teacher.TeacherID = NextTeacherID(last.String, time.Now())
	teacher.UserID = user.UserID
	_, err = tx.ExecContext(ctx, `
		INSERT INTO teachers (teacher_id, user_id, program_id, num_courses_owned)
		VALUES ($1, $2, $3, $4)
	`, teacher.TeacherID, teacher.UserID, teacher.ProgramID, teacher.NumCoursesOwned)
	if err != nil {
		return Teacher{}, err
	}
	return teacher, tx.Commit()
}

// CreateAdmin inserts the user row and the admin row atomically. The admin
// id reuses the user id.
func (r *Repository) CreateAdmin(ctx context.Context, user User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, user); err != nil {
		return mapUniqueViolation(err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO admins (admin_id, user_id) VALUES ($1, $1)
	`, user.UserID); err != nil {
		return err
	}
	return tx.Commit()
}

func insertUser(ctx context.Context, tx *sql.Tx, user User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (user_id, first_name, last_name, role, username, password)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.UserID, user.FirstName, user.LastName, user.Role, user.Username, user.PasswordHash)
	return err
}

// ListStudents returns the joined dashboard view of every student.
func (r *Repository) ListStudents(ctx context.Context) ([]StudentView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.student_id, u.first_name || ' ' || u.last_name, p.program_name,
		       s.year_level, sec.section_name, u.username,
		       s.current_gpa, s.gpax, s.course_count, s.status
		FROM students s
		JOIN users u ON u.user_id = s.user_id
		JOIN programs p ON p.program_id = s.program_id
		JOIN sections sec ON sec.section_id = s.section_id
		ORDER BY s.student_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []StudentView
	for rows.Next() {
		var v StudentView
		if err := rows.Scan(&v.StudentID, &v.Name, &v.Program, &v.YearLevel, &v.Section,
			&v.Email, &v.CurrentGPA, &v.GPAX, &v.CourseCount, &v.Status); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

// ListTeachers returns the joined dashboard view of every teacher.
func (r *Repository) ListTeachers(ctx context.Context) ([]TeacherView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.teacher_id, u.first_name || ' ' || u.last_name, p.program_name, u.username
		FROM teachers t
		JOIN users u ON u.user_id = t.user_id
		JOIN programs p ON p.program_id = t.program_id
		ORDER BY t.teacher_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []TeacherView
	for rows.Next() {
		var v TeacherView
		if err := rows.Scan(&v.TeacherID, &v.Name, &v.Program, &v.Email); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

// UpdateStudent applies a partial update across the student and user rows.
func (r *Repository) UpdateStudent(ctx context.Context, studentID string, upd StudentUpdate) error {
	if upd.Status != nil && !ValidStudentStatus(*upd.Status) {
		return ErrInvalidStatus
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM students WHERE student_id = $1 FOR UPDATE`, studentID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStudentNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			username   = COALESCE($4, username)
		WHERE user_id = $1
	`, userID, upd.FirstName, upd.LastName, upd.Email)
	if err != nil {
		return mapUniqueViolation(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE students SET
			program_id  = COALESCE($2, program_id),
			section_id  = COALESCE($3, section_id),
			current_gpa = COALESCE($4, current_gpa),
			year_level  = COALESCE($5, year_level),
			status      = COALESCE($6, status)
		WHERE student_id = $1
	`, studentID, upd.ProgramID, upd.SectionID, upd.CurrentGPA, upd.YearLevel, upd.Status)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTeacher applies a partial update across the teacher and user rows.
func (r *Repository) UpdateTeacher(ctx context.Context, teacherID string, upd TeacherUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM teachers WHERE teacher_id = $1 FOR UPDATE`, teacherID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTeacherNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			username   = COALESCE($4, username)
		WHERE user_id = $1
	`, userID, upd.FirstName, upd.LastName, upd.Email)
	if err != nil {
		return mapUniqueViolation(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE teachers SET program_id = COALESCE($2, program_id) WHERE teacher_id = $1
	`, teacherID, upd.ProgramID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteStudent removes the student and its backing user account.
func (r *Repository) DeleteStudent(ctx context.Context, studentID string) error {
	return r.deleteRole(ctx, `students`, `student_id`, studentID, ErrStudentNotFound)
}

// DeleteTeacher removes the teacher and its backing user account.
func (r *Repository) DeleteTeacher(ctx context.Context, teacherID string) error {
	return r.deleteRole(ctx, `teachers`, `teacher_id`, teacherID, ErrTeacherNotFound)
}

func (r *Repository) deleteRole(ctx context.Context, table, idCol, id string, notFound error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM `+table+` WHERE `+idCol+` = $1`, id).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return err
	}

	// The role row goes with the user via ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	return err
}

// ConsumeRefreshToken revokes a live refresh token, failing when it is
// unknown, revoked or expired.
func (r *Repository) ConsumeRefreshToken(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE
		WHERE token = $1 AND NOT revoked AND expires_at > NOW()
	`, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenRevoked
	}
	return nil
}
