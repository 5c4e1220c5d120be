package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/campus"
)

// CreateLecture handles POST /api/lectures.
func (h *Handler) CreateLecture(c *gin.Context) {
	var in campus.CreateLectureInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.svc.CreateLecture(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// ListLectures handles GET /api/lectures.
func (h *Handler) ListLectures(c *gin.Context) {
	lectures, err := h.svc.ListLectures(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if lectures == nil {
		lectures = []campus.Lecture{}
	}
	c.JSON(http.StatusOK, lectures)
}

// GetLecture handles GET /api/lectures/{id}; enrollments ride along.
func (h *Handler) GetLecture(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	l, enrollments, err := h.svc.GetLecture(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if enrollments == nil {
		enrollments = []campus.Enrollment{}
	}
	c.JSON(http.StatusOK, gin.H{"lecture": l, "enrollments": enrollments})
}

// LectureSummary handles GET /api/lectures/summary.
func (h *Handler) LectureSummary(c *gin.Context) {
	summaries, err := h.svc.ListLectureSummaries(c.Request.Context(),
		queryInt(c, "teacher_id"), queryInt(c, "teacher_user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if summaries == nil {
		summaries = []campus.LectureSummaryRow{}
	}
	c.JSON(http.StatusOK, summaries)
}

// AssignTeacher handles POST /api/lectures/{id}/assign-teacher.
func (h *Handler) AssignTeacher(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		TeacherID campus.FlexString `json:"teacher_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	teacherID := req.TeacherID.Int()
	if teacherID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teacher_id is required"})
		return
	}
	l, err := h.svc.AssignTeacher(c.Request.Context(), id, *teacherID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// AssignCamera handles POST /api/lectures/{id}/assign-camera.
func (h *Handler) AssignCamera(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		CameraID campus.FlexString `json:"camera_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cameraID := req.CameraID.Int()
	if cameraID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "camera_id is required"})
		return
	}
	l, cam, err := h.svc.AssignCamera(c.Request.Context(), id, *cameraID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lecture": l, "camera": cam})
}

// Enroll handles POST /api/lectures/{id}/enroll.
func (h *Handler) Enroll(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserID    campus.FlexString `json:"user_id"`
		IsTeacher bool              `json:"is_teacher"`
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
	e, err := h.svc.Enroll(c.Request.Context(), id, *userID, req.IsTeacher)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// LectureStudents handles GET /api/lectures/{id}/students.
func (h *Handler) LectureStudents(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	roster, err := h.svc.ListLectureRoster(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if roster == nil {
		roster = []campus.RosterEntry{}
	}
	c.JSON(http.StatusOK, roster)
}

// RemoveLectureStudent handles DELETE /api/lectures/{id}/students/{user_id}.
func (h *Handler) RemoveLectureStudent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveLectureStudent(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Enrollment removed"})
}

// LectureAttendanceSummary handles GET /api/lectures/{id}/attendance-summary.
func (h *Handler) LectureAttendanceSummary(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	summary, err := h.svc.GetLectureAttendanceSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListEnrollments handles GET /api/enrollments.
func (h *Handler) ListEnrollments(c *gin.Context) {
	enrollments, err := h.svc.Repo().ListEnrollments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if enrollments == nil {
		enrollments = []campus.Enrollment{}
	}
	c.JSON(http.StatusOK, enrollments)
}

// CreateCamera handles POST /api/cameras.
func (h *Handler) CreateCamera(c *gin.Context) {
	var in campus.CreateCameraInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cam, err := h.svc.CreateCamera(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cam)
}

// ListCameras handles GET /api/cameras.
func (h *Handler) ListCameras(c *gin.Context) {
	cameras, err := h.svc.Repo().ListCameras(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if cameras == nil {
		cameras = []campus.Camera{}
	}
	c.JSON(http.StatusOK, cameras)
}

// GetCamera handles GET /api/cameras/{id}.
func (h *Handler) GetCamera(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	cam, err := h.svc.Repo().GetCamera(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if cam == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
		return
	}
	c.JSON(http.StatusOK, cam)
}

// UpdateCamera handles PATCH /api/cameras/{id}.
func (h *Handler) UpdateCamera(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in campus.UpdateCameraInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cam, err := h.svc.UpdateCamera(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cam)
}
