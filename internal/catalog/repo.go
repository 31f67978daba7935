package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists catalog data in Postgres. It also implements the
// attendance engine's CourseSource boundary.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const uniqueViolation = "23505"

// CreateProgram inserts a program with a fresh id.
func (r *Repository) CreateProgram(ctx context.Context, p Program) (Program, error) {
	p.ProgramID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO programs (program_id, program_name, program_details, required_credits)
		VALUES ($1, $2, $3, $4)
	`, p.ProgramID, p.Name, p.Details, p.RequiredCredits)
	return p, err
}

// ListPrograms returns all programs.
func (r *Repository) ListPrograms(ctx context.Context) ([]Program, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT program_id, program_name, program_details, required_credits
		FROM programs ORDER BY program_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Program
	for rows.Next() {
		var p Program
		if err := rows.Scan(&p.ProgramID, &p.Name, &p.Details, &p.RequiredCredits); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// ProgramExists reports whether a program id is known.
func (r *Repository) ProgramExists(ctx context.Context, programID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM programs WHERE program_id = $1`, programID).Scan(&n)
	return n > 0, err
}

// CreateSection inserts a section after validating its program.
func (r *Repository) CreateSection(ctx context.Context, s Section) (Section, error) {
	ok, err := r.ProgramExists(ctx, s.ProgramID)
	if err != nil {
		return Section{}, err
	}
	if !ok {
		return Section{}, ErrProgramNotFound
	}
	s.SectionID = uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sections (section_id, section_name, program_id, year_level, current_students, schedule)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.SectionID, s.Name, s.ProgramID, s.YearLevel, s.CurrentStudents, s.Schedule)
	return s, err
}

// ListSections returns all sections.
func (r *Repository) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT section_id, section_name, program_id, year_level, current_students, schedule
		FROM sections ORDER BY section_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.SectionID, &s.Name, &s.ProgramID, &s.YearLevel, &s.CurrentStudents, &s.Schedule); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// UpdateSection applies a partial section update.
func (r *Repository) UpdateSection(ctx context.Context, sectionID string, upd SectionUpdate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sections SET
			section_name     = COALESCE($2, section_name),
			program_id       = COALESCE($3, program_id),
			year_level       = COALESCE($4, year_level),
			current_students = COALESCE($5, current_students),
			schedule         = COALESCE($6, schedule)
		WHERE section_id = $1
	`, sectionID, upd.Name, upd.ProgramID, upd.YearLevel, upd.CurrentStudents, upd.Schedule)
	if err != nil {
		return err
	}
	return requireRow(res, ErrSectionNotFound)
}

// DeleteSection removes a section.
func (r *Repository) DeleteSection(ctx context.Context, sectionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE section_id = $1`, sectionID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrSectionNotFound)
}

// CreateCourse inserts an active course with a fresh id.
func (r *Repository) CreateCourse(ctx context.Context, c Course) (Course, error) {
	c.CourseID = uuid.NewString()
	c.Active = true
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (course_id, course_code, program_id, course_name, units, course_detail, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.CourseID, c.Code, c.ProgramID, c.Name, c.Units, c.Detail, c.Active)
	return c, err
}

// CourseByID returns a single course.
func (r *Repository) CourseByID(ctx context.Context, courseID string) (Course, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT course_id, course_code, program_id, course_name, units, course_detail, active
		FROM courses WHERE course_id = $1
	`, courseID)
	var c Course
	err := row.Scan(&c.CourseID, &c.Code, &c.ProgramID, &c.Name, &c.Units, &c.Detail, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrCourseNotFound
	}
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

// ListCourses returns all courses joined with their program name.
func (r *Repository) ListCourses(ctx context.Context) ([]CourseView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.course_id, c.course_code, c.program_id, c.course_name, c.units, c.course_detail, c.active,
		       p.program_name
		FROM courses c
		JOIN programs p ON p.program_id = c.program_id
		ORDER BY c.course_code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []CourseView
	for rows.Next() {
		var v CourseView
		if err := rows.Scan(&v.CourseID, &v.Code, &v.ProgramID, &v.Name, &v.Units, &v.Detail, &v.Active, &v.ProgramName); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

// UpdateCourse replaces the editable fields of a course.
func (r *Repository) UpdateCourse(ctx context.Context, courseID string, c Course) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE courses SET
			course_name = $2, course_code = $3, program_id = $4, units = $5, course_detail = $6
		WHERE course_id = $1
	`, courseID, c.Name, c.Code, c.ProgramID, c.Units, c.Detail)
	if err != nil {
		return err
	}
	return requireRow(res, ErrCourseNotFound)
}

// DeleteCourse removes a course and, via cascade, its enrollments.
func (r *Repository) DeleteCourse(ctx context.Context, courseID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE course_id = $1`, courseID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrCourseNotFound)
}

// Enroll registers a student in a course. Duplicate enrollment is rejected
// by the (course_id, student_id) unique key.
func (r *Repository) Enroll(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	ok, err := r.CourseExists(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if !ok {
		return Enrollment{}, ErrCourseNotFound
	}

	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE student_id = $1`, studentID).Scan(&n); err != nil {
		return Enrollment{}, err
	}
	if n == 0 {
		return Enrollment{}, ErrStudentNotFound
	}

	e := Enrollment{
		EnrollmentID: uuid.NewString(),
		CourseID:     courseID,
		StudentID:    studentID,
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO enrollments (enrollment_id, course_id, student_id, midterm_grade, final_grade, total_grade, gpa)
		VALUES ($1, $2, $3, 0, 0, 0, 0)
	`, e.EnrollmentID, e.CourseID, e.StudentID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Enrollment{}, ErrAlreadyEnrolled
		}
		return Enrollment{}, err
	}
	return e, nil
}

// CourseExists reports whether a course id is known.
func (r *Repository) CourseExists(ctx context.Context, courseID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM courses WHERE course_id = $1`, courseID).Scan(&n)
	return n > 0, err
}

// ListEnrolledStudents returns the ids of every student enrolled in a
// course, in a stable order.
func (r *Repository) ListEnrolledStudents(ctx context.Context, courseID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT student_id FROM enrollments WHERE course_id = $1 ORDER BY student_id
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Totals returns the admin dashboard counters.
func (r *Repository) Totals(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM teachers),
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM sections)
	`).Scan(&s.Students, &s.Teachers, &s.Courses, &s.Sections)
	return s, err
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
