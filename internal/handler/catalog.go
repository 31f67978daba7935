package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolms/internal/catalog"
)

// CreateProgram adds a program.
func (h *Handler) CreateProgram(c *gin.Context) {
	var req struct {
		Name            string `json:"program_name" binding:"required"`
		Details         string `json:"program_details"`
		RequiredCredits int    `json:"required_credits" binding:"required,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	program, err := h.catalog.CreateProgram(c.Request.Context(), catalog.Program{
		Name:            req.Name,
		Details:         req.Details,
		RequiredCredits: req.RequiredCredits,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, program)
}

// ListPrograms returns all programs.
func (h *Handler) ListPrograms(c *gin.Context) {
	programs, err := h.catalog.ListPrograms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if programs == nil {
		programs = []catalog.Program{}
	}
	c.JSON(http.StatusOK, gin.H{"programs": programs})
}

// CreateSection adds a class section; names are restricted to A/B/C.
func (h *Handler) CreateSection(c *gin.Context) {
	var req struct {
		Name            string `json:"section_name" binding:"required,oneof=A B C"`
		ProgramID       string `json:"program_id" binding:"required"`
		YearLevel       int    `json:"year_level" binding:"required,gte=1"`
		CurrentStudents int    `json:"current_students"`
		Schedule        string `json:"schedule" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	section, err := h.catalog.CreateSection(c.Request.Context(), catalog.Section{
		Name:            req.Name,
		ProgramID:       req.ProgramID,
		YearLevel:       req.YearLevel,
		CurrentStudents: req.CurrentStudents,
		Schedule:        req.Schedule,
	})
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

// ListSections returns all sections.
func (h *Handler) ListSections(c *gin.Context) {
	sections, err := h.catalog.ListSections(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sections == nil {
		sections = []catalog.Section{}
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// UpdateSection applies a partial section update.
func (h *Handler) UpdateSection(c *gin.Context) {
	var upd catalog.SectionUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateSection(c.Request.Context(), c.Param("id"), upd); err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "section updated successfully"})
}

// DeleteSection removes a section.
func (h *Handler) DeleteSection(c *gin.Context) {
	if err := h.catalog.DeleteSection(c.Request.Context(), c.Param("id")); err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "section deleted"})
}

// CreateCourse adds a course.
func (h *Handler) CreateCourse(c *gin.Context) {
	var req struct {
		Name      string `json:"course_name" binding:"required"`
		Code      string `json:"course_code" binding:"required"`
		ProgramID string `json:"program_id" binding:"required"`
		Units     int    `json:"units" binding:"required,gte=1"`
		Detail    string `json:"course_detail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course, err := h.catalog.CreateCourse(c.Request.Context(), catalog.Course{
		Name:      req.Name,
		Code:      req.Code,
		ProgramID: req.ProgramID,
		Units:     req.Units,
		Detail:    req.Detail,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, course)
}

// GetCourse returns one course.
func (h *Handler) GetCourse(c *gin.Context) {
	course, err := h.catalog.CourseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

// ListCourses returns all courses with their program name.
func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if courses == nil {
		courses = []catalog.CourseView{}
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// UpdateCourse replaces the editable fields of a course.
func (h *Handler) UpdateCourse(c *gin.Context) {
	var req struct {
		Name      string `json:"course_name" binding:"required"`
		Code      string `json:"course_code" binding:"required"`
		ProgramID string `json:"program_id" binding:"required"`
		Units     int    `json:"units" binding:"required,gte=1"`
		Detail    string `json:"course_detail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.catalog.UpdateCourse(c.Request.Context(), c.Param("id"), catalog.Course{
		Name:      req.Name,
		Code:      req.Code,
		ProgramID: req.ProgramID,
		Units:     req.Units,
		Detail:    req.Detail,
	})
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "course updated"})
}

// DeleteCourse removes a course.
func (h *Handler) DeleteCourse(c *gin.Context) {
	if err := h.catalog.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "course deleted"})
}

// Enroll registers a student in a course.
func (h *Handler) Enroll(c *gin.Context) {
	var req struct {
		CourseID  string `json:"course_id" binding:"required"`
		StudentID string `json:"student_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	enrollment, err := h.catalog.Enroll(c.Request.Context(), req.CourseID, req.StudentID)
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// Stats returns dashboard totals.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.catalog.Totals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) catalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrProgramNotFound),
		errors.Is(err, catalog.ErrSectionNotFound),
		errors.Is(err, catalog.ErrCourseNotFound),
		errors.Is(err, catalog.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
