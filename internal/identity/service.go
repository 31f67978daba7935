package identity

import (
	"context"
	"log"

	"github.com/google/uuid"

	"schoolms/internal/auth"
)

// Service coordinates account creation: password hashing, user ids and the
// per-role rows.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// NewStudentInput is everything needed to register a student account.
type NewStudentInput struct {
	FirstName string
	LastName  string
	Username  string
	Password  string
	ProgramID string
	SectionID string
	YearLevel int
}

// NewTeacherInput is everything needed to register a teacher account.
type NewTeacherInput struct {
	FirstName string
	LastName  string
	Username  string
	Password  string
	ProgramID string
}

// NewAdminInput is everything needed to register an admin account.
type NewAdminInput struct {
	FirstName string
	LastName  string
	Username  string
	Password  string
}

// CreateStudent registers a user with the student role and issues the next
// sequential student id.
func (s *Service) CreateStudent(ctx context.Context, in NewStudentInput) (Student, error) {
	user, err := newUser(in.FirstName, in.LastName, in.Username, in.Password, auth.RoleStudent)
	if err != nil {
		return Student{}, err
	}
	student := Student{
		ProgramID: in.ProgramID,
		SectionID: in.SectionID,
		YearLevel: in.YearLevel,
		Status:    StudentActive,
	}
	return s.repo.CreateStudent(ctx, user, student)
}

// CreateTeacher registers a user with the teacher role.
func (s *Service) CreateTeacher(ctx context.Context, in NewTeacherInput) (Teacher, error) {
	user, err := newUser(in.FirstName, in.LastName, in.Username, in.Password, auth.RoleTeacher)
	if err != nil {
		return Teacher{}, err
	}
	return s.repo.CreateTeacher(ctx, user, Teacher{ProgramID: in.ProgramID})
}

// CreateAdmin registers a user with the admin role.
func (s *Service) CreateAdmin(ctx context.Context, in NewAdminInput) error {
	user, err := newUser(in.FirstName, in.LastName, in.Username, in.Password, auth.RoleAdmin)
	if err != nil {
		return err
	}
	return s.repo.CreateAdmin(ctx, user)
}

// EnsureAdmin seeds a default admin account when none exists yet. Called
// once at startup.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	exists, err := s.repo.AdminExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	log.Printf("no admin account found, bootstrapping %s", username)
	return s.CreateAdmin(ctx, NewAdminInput{
		FirstName: "admin",
		LastName:  "admin",
		Username:  username,
		Password:  password,
	})
}

func newUser(first, last, username, password, role string) (User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	return User{
		UserID:       uuid.NewString(),
		FirstName:    first,
		LastName:     last,
		Role:         role,
		Username:     username,
		PasswordHash: hash,
	}, nil
}
