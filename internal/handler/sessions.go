package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/campus"
)

// CreateSession handles POST /api/sessions.
func (h *Handler) CreateSession(c *gin.Context) {
	var in campus.CreateSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.svc.CreateSession(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handler) GetSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sess, err := h.svc.GetSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// UpdateSession handles PATCH /api/sessions/{id}.
func (h *Handler) UpdateSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in campus.UpdateSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.svc.UpdateSession(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// LockSession handles POST /api/sessions/{id}/lock.
func (h *Handler) LockSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserID campus.FlexString `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := req.UserID.Int()
	if userID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	sess, err := h.svc.LockSession(c.Request.Context(), id, *userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// RecordAttendance handles POST /api/sessions/{id}/attendance.
func (h *Handler) RecordAttendance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in campus.RecordAttendanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.RecordAttendance(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// SessionAttendance handles GET /api/sessions/{id}/attendance.
func (h *Handler) SessionAttendance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	records, err := h.svc.ListSessionAttendance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []campus.AttendanceRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// EditAttendance handles PATCH /api/attendance/{id}.
func (h *Handler) EditAttendance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in campus.EditAttendanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.EditAttendance(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// OverviewStats handles GET /api/stats/overview.
func (h *Handler) OverviewStats(c *gin.Context) {
	stats, err := h.svc.GetOverviewStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TeacherStats handles GET /api/stats/teacher/{user_id}.
func (h *Handler) TeacherStats(c *gin.Context) {
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	stats, err := h.svc.GetTeacherStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AttendanceReports handles GET /api/reports/attendance.
func (h *Handler) AttendanceReports(c *gin.Context) {
	report, err := h.svc.GetAttendanceReport(c.Request.Context(),
		queryInt(c, "teacher_user_id"), queryInt(c, "lecture_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
