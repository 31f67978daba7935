package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"schoolms/internal/attendance"
	"schoolms/internal/queue"
)

var scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "attendance_scans_total",
	Help: "Attendance scans by resulting status (including rejected).",
}, []string{"status"})

// CreateSession opens a QR attendance window for a course.
func (h *Handler) CreateSession(c *gin.Context) {
	var req struct {
		CourseID  string    `json:"course_id" binding:"required"`
		WindowEnd time.Time `json:"window_end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.engine.CreateSession(c.Request.Context(), req.CourseID, req.WindowEnd)
	switch {
	case errors.Is(err, attendance.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, attendance.ErrInvalidWindow):
		c.JSON(http.StatusNotAcceptable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID,
		"qr_image":   sess.QRImage,
		"window_end": sess.WindowEnd,
	})
}

// RemainingWindow reports how long a session stays open.
func (h *Handler) RemainingWindow(c *gin.Context) {
	d, err := h.engine.RemainingWindow(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, attendance.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, attendance.ErrWindowExpired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	hours, minutes, seconds := attendance.SplitDuration(d)
	c.JSON(http.StatusOK, gin.H{
		"seconds_remaining": int(d / time.Second),
		"hours":             hours,
		"minutes":           minutes,
		"seconds":           seconds,
	})
}

// SessionQR re-serves a session's QR image.
func (h *Handler) SessionQR(c *gin.Context) {
	sess, err := h.engine.SessionByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, attendance.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "qr_image": sess.QRImage})
}

// Scan records a student check-in from a decoded QR payload.
func (h *Handler) Scan(c *gin.Context) {
	var req struct {
		Code      string `json:"code" binding:"required"`
		StudentID string `json:"student_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.engine.Scan(c.Request.Context(), req.Code, req.StudentID)
	switch {
	case errors.Is(err, attendance.ErrSessionNotFound), errors.Is(err, attendance.ErrNotEnrolled):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, attendance.ErrWindowExpired):
		scansTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": "scan failed, time already passed"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	scansTotal.WithLabelValues(string(rec.Status)).Inc()

	msg, err := queue.NewScanMessage(queue.ScanEvent{
		RecordID:  rec.ID,
		SessionID: rec.SessionID,
		StudentID: rec.StudentID,
		Status:    string(rec.Status),
		ScannedAt: rec.ScannedAt,
	})
	if err == nil {
		if err := h.queue.Publish(c.Request.Context(), msg); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}

	c.JSON(http.StatusAccepted, gin.H{
		"record_id":  rec.ID,
		"status":     rec.Status,
		"scanned_at": rec.ScannedAt,
	})
}
