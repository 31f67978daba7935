package store

import "database/sql"

// Migrate applies the idempotent schema. Tables mirror the registrar data
// model: identity (users plus per-role tables), catalog (programs, sections,
// courses, enrollments) and the QR attendance workflow.
func Migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id     TEXT PRIMARY KEY,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL,
		role        TEXT NOT NULL CHECK (role IN ('student', 'teacher', 'admin')),
		username    TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS admins (
		admin_id  TEXT PRIMARY KEY,
		user_id   TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS programs (
		program_id       TEXT PRIMARY KEY,
		program_name     TEXT NOT NULL,
		program_details  TEXT NOT NULL DEFAULT '',
		required_credits INT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sections (
		section_id       TEXT PRIMARY KEY,
		section_name     TEXT NOT NULL,
		program_id       TEXT NOT NULL REFERENCES programs(program_id),
		year_level       INT NOT NULL,
		current_students INT NOT NULL DEFAULT 0,
		schedule         TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS teachers (
		teacher_id        TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		program_id        TEXT NOT NULL REFERENCES programs(program_id),
		num_courses_owned INT NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS students (
		student_id    TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		program_id    TEXT NOT NULL REFERENCES programs(program_id),
		section_id    TEXT NOT NULL REFERENCES sections(section_id),
		current_gpa   DOUBLE PRECISION NOT NULL DEFAULT 0,
		gpax          DOUBLE PRECISION NOT NULL DEFAULT 0,
		year_level    INT NOT NULL,
		course_count  INT NOT NULL DEFAULT 0,
		status        TEXT NOT NULL DEFAULT 'Active'
			CHECK (status IN ('Active', 'Inactive', 'Graduated', 'Suspended', 'Expelled'))
	);

	CREATE TABLE IF NOT EXISTS courses (
		course_id     TEXT PRIMARY KEY,
		course_code   TEXT NOT NULL DEFAULT '',
		program_id    TEXT NOT NULL REFERENCES programs(program_id),
		course_name   TEXT NOT NULL,
		units         INT NOT NULL,
		course_detail TEXT NOT NULL DEFAULT '',
		active        BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS enrollments (
		enrollment_id TEXT PRIMARY KEY,
		course_id     TEXT NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
		student_id    TEXT NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
		midterm_grade INT NOT NULL DEFAULT 0,
		final_grade   INT NOT NULL DEFAULT 0,
		total_grade   INT NOT NULL DEFAULT 0,
		gpa           DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (course_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS attendance_sessions (
		session_id   TEXT PRIMARY KEY,
		course_id    TEXT NOT NULL REFERENCES courses(course_id),
		qr_token     TEXT NOT NULL UNIQUE,
		qr_image     TEXT NOT NULL,
		window_start TIMESTAMPTZ NOT NULL,
		window_end   TIMESTAMPTZ NOT NULL,
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		CHECK (window_end > window_start)
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		record_id  TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES attendance_sessions(session_id) ON DELETE CASCADE,
		student_id TEXT NOT NULL REFERENCES students(student_id),
		status     TEXT NOT NULL CHECK (status IN ('Present', 'Late', 'Absent')),
		scanned_at TIMESTAMPTZ NOT NULL,
		UNIQUE (session_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS attendance_audit (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		status     TEXT NOT NULL,
		scanned_at TIMESTAMPTZ NOT NULL,
		logged_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS refresh_tokens (
		token      TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked    BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments(course_id);
	CREATE INDEX IF NOT EXISTS idx_records_session    ON attendance_records(session_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_course    ON attendance_sessions(course_id);
	`
	_, err := db.Exec(schema)
	return err
}
