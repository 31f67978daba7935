// Package catalog manages programs, sections, courses and course
// enrollments. Its enrollment list is the authoritative source for which
// students get seeded attendance records.
package catalog

import "errors"

// Program groups sections and courses under a curriculum.
type Program struct {
	ProgramID       string `json:"program_id"`
	Name            string `json:"program_name"`
	Details         string `json:"program_details"`
	RequiredCredits int    `json:"required_credits"`
}

// Section is a class group within a program.
type Section struct {
	SectionID       string `json:"section_id"`
	Name            string `json:"section_name"`
	ProgramID       string `json:"program_id"`
	YearLevel       int    `json:"year_level"`
	CurrentStudents int    `json:"current_students"`
	Schedule        string `json:"schedule"`
}

// SectionUpdate carries optional fields for a partial section update.
type SectionUpdate struct {
	Name            *string `json:"section_name"`
	ProgramID       *string `json:"program_id"`
	YearLevel       *int    `json:"year_level"`
	CurrentStudents *int    `json:"current_students"`
	Schedule        *string `json:"schedule"`
}

// Course is a teachable unit within a program.
type Course struct {
	CourseID  string `json:"course_id"`
	Code      string `json:"course_code"`
	ProgramID string `json:"program_id"`
	Name      string `json:"course_name"`
	Units     int    `json:"units"`
	Detail    string `json:"course_detail"`
	Active    bool   `json:"active"`
}

// CourseView is a course joined with its program name for listings.
type CourseView struct {
	Course
	ProgramName string `json:"program_name"`
}

// Enrollment registers a student in a course; grades start at zero.
type Enrollment struct {
	EnrollmentID string  `json:"enrollment_id"`
	CourseID     string  `json:"course_id"`
	StudentID    string  `json:"student_id"`
	MidtermGrade int     `json:"midterm_grade"`
	FinalGrade   int     `json:"final_grade"`
	TotalGrade   int     `json:"total_grade"`
	GPA          float64 `json:"gpa"`
}

// Stats are the admin dashboard totals.
type Stats struct {
	Students int `json:"total_students"`
	Teachers int `json:"total_teachers"`
	Courses  int `json:"total_courses"`
	Sections int `json:"total_sections"`
}

var (
	ErrProgramNotFound = errors.New("catalog: program not found")
	ErrSectionNotFound = errors.New("catalog: section not found")
	ErrCourseNotFound  = errors.New("catalog: course not found")
	ErrStudentNotFound = errors.New("catalog: student not found")
	ErrAlreadyEnrolled = errors.New("catalog: student already enrolled in course")
)
