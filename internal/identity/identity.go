// Package identity manages user accounts and their role records: students,
// teachers and admins.
package identity

import (
	"errors"
	"time"
)

// User is the shared account row behind every role.
type User struct {
	UserID       string    `json:"user_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Student statuses.
const (
	StudentActive    = "Active"
	StudentInactive  = "Inactive"
	StudentGraduated = "Graduated"
	StudentSuspended = "Suspended"
	StudentExpelled  = "Expelled"
)

// ValidStudentStatus reports whether s is a supported student status.
func ValidStudentStatus(s string) bool {
	switch s {
	case StudentActive, StudentInactive, StudentGraduated, StudentSuspended, StudentExpelled:
		return true
	default:
		return false
	}
}

// Student links a user to a program and section under a registrar-issued id.
type Student struct {
	StudentID   string  `json:"student_id"`
	UserID      string  `json:"user_id"`
	ProgramID   string  `json:"program_id"`
	SectionID   string  `json:"section_id"`
	CurrentGPA  float64 `json:"current_gpa"`
	GPAX        float64 `json:"gpax"`
	YearLevel   int     `json:"year_level"`
	CourseCount int     `json:"course_count"`
	Status      string  `json:"status"`
}

// Teacher links a user to the program they teach in.
type Teacher struct {
	TeacherID       string `json:"teacher_id"`
	UserID          string `json:"user_id"`
	ProgramID       string `json:"program_id"`
	NumCoursesOwned int    `json:"num_courses_owned"`
}

// StudentView is the joined row served to admin dashboards.
type StudentView struct {
	StudentID   string  `json:"student_id"`
	Name        string  `json:"name"`
	Program     string  `json:"program"`
	YearLevel   int     `json:"year_level"`
	Section     string  `json:"section"`
	Email       string  `json:"email"`
	CurrentGPA  float64 `json:"current_gpa"`
	GPAX        float64 `json:"gpax"`
	CourseCount int     `json:"course_count"`
	Status      string  `json:"status"`
}

// TeacherView is the joined row served to admin dashboards.
type TeacherView struct {
	TeacherID string `json:"teacher_id"`
	Name      string `json:"name"`
	Program   string `json:"program"`
	Email     string `json:"email"`
}

// StudentUpdate carries optional fields for a partial student update; nil
// fields are left unchanged.
type StudentUpdate struct {
	FirstName  *string  `json:"firstname"`
	LastName   *string  `json:"lastname"`
	Email      *string  `json:"email"`
	ProgramID  *string  `json:"program_id"`
	SectionID  *string  `json:"section_id"`
	CurrentGPA *float64 `json:"current_gpa"`
	YearLevel  *int     `json:"year_level"`
	Status     *string  `json:"status"`
}

// TeacherUpdate carries optional fields for a partial teacher update.
type TeacherUpdate struct {
	FirstName *string `json:"firstname"`
	LastName  *string `json:"lastname"`
	Email     *string `json:"email"`
	ProgramID *string `json:"program_id"`
}

var (
	ErrUserNotFound    = errors.New("identity: user not found")
	ErrStudentNotFound = errors.New("identity: student not found")
	ErrTeacherNotFound = errors.New("identity: teacher not found")
	ErrUsernameTaken   = errors.New("identity: username already taken")
	ErrInvalidStatus   = errors.New("identity: invalid student status")
	ErrTokenRevoked    = errors.New("identity: refresh token revoked or unknown")
)
