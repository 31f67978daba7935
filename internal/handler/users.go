package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolms/internal/identity"
)

// CreateStudent registers a student account.
func (h *Handler) CreateStudent(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Username  string `json:"username" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
		ProgramID string `json:"program_id" binding:"required"`
		SectionID string `json:"section_id" binding:"required"`
		YearLevel int    `json:"year_level" binding:"required,gte=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.accounts.CreateStudent(c.Request.Context(), identity.NewStudentInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
		ProgramID: req.ProgramID,
		SectionID: req.SectionID,
		YearLevel: req.YearLevel,
	})
	if err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusCreated, student)
}

// CreateTeacher registers a teacher account.
func (h *Handler) CreateTeacher(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Username  string `json:"username" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
		ProgramID string `json:"program_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	teacher, err := h.accounts.CreateTeacher(c.Request.Context(), identity.NewTeacherInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
		ProgramID: req.ProgramID,
	})
	if err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusCreated, teacher)
}

// CreateAdmin registers an admin account. Route is gated to admins.
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Username  string `json:"username" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.accounts.CreateAdmin(c.Request.Context(), identity.NewAdminInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "successfully created a user"})
}

// ListStudents returns the joined student dashboard rows.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.users.ListStudents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if students == nil {
		students = []identity.StudentView{}
	}
	c.JSON(http.StatusOK, gin.H{"total_students": len(students), "students": students})
}

// UpdateStudent applies a partial update to a student and its user row.
func (h *Handler) UpdateStudent(c *gin.Context) {
	var upd identity.StudentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.UpdateStudent(c.Request.Context(), c.Param("id"), upd); err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student updated successfully"})
}

// DeleteStudent removes a student and its user account.
func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.users.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted_student_id": c.Param("id")})
}

// ListTeachers returns the joined teacher dashboard rows.
func (h *Handler) ListTeachers(c *gin.Context) {
	teachers, err := h.users.ListTeachers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if teachers == nil {
		teachers = []identity.TeacherView{}
	}
	c.JSON(http.StatusOK, gin.H{"total_teachers": len(teachers), "teachers": teachers})
}

// UpdateTeacher applies a partial update to a teacher and its user row.
func (h *Handler) UpdateTeacher(c *gin.Context) {
	var upd identity.TeacherUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.UpdateTeacher(c.Request.Context(), c.Param("id"), upd); err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "teacher updated successfully"})
}

// DeleteTeacher removes a teacher and its user account.
func (h *Handler) DeleteTeacher(c *gin.Context) {
	if err := h.users.DeleteTeacher(c.Request.Context(), c.Param("id")); err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted_teacher_id": c.Param("id")})
}

func (h *Handler) userError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, identity.ErrStudentNotFound),
		errors.Is(err, identity.ErrTeacherNotFound),
		errors.Is(err, identity.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, identity.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, identity.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
