package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/campus"
)

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var in campus.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Login handles POST /api/login.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	u, err := h.svc.Login(c.Request.Context(), identifier, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ListUsers handles GET /api/users with an optional role filter.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []campus.User{}
	}
	c.JSON(http.StatusOK, users)
}

// CreateStudent handles POST /api/students.
func (h *Handler) CreateStudent(c *gin.Context) {
	var in campus.CreateStudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.svc.CreateStudent(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// ListStudents handles GET /api/students.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.svc.Repo().ListStudents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if students == nil {
		students = []campus.Student{}
	}
	c.JSON(http.StatusOK, students)
}

// StudentDashboard handles GET /api/students/{user_id}/dashboard.
func (h *Handler) StudentDashboard(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	dash, err := h.svc.GetStudentDashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// CreateTeacher handles POST /api/teachers.
func (h *Handler) CreateTeacher(c *gin.Context) {
	var in campus.CreateTeacherInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.CreateTeacher(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// ListTeachers handles GET /api/teachers.
func (h *Handler) ListTeachers(c *gin.Context) {
	teachers, err := h.svc.Repo().ListTeachers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if teachers == nil {
		teachers = []campus.Teacher{}
	}
	c.JSON(http.StatusOK, teachers)
}

// TeacherStudents handles GET /api/teachers/{user_id}/students.
func (h *Handler) TeacherStudents(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	roster, err := h.svc.TeacherRosterByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if roster == nil {
		roster = []campus.RosterEntry{}
	}
	c.JSON(http.StatusOK, roster)
}

// AddFaceImage handles POST /api/students/{id}/faces.
func (h *Handler) AddFaceImage(c *gin.Context) {
	studentID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in campus.AddFaceImageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img, err := h.svc.AddFaceImage(c.Request.Context(), studentID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

// ListFaceImages handles GET /api/students/{id}/faces.
func (h *Handler) ListFaceImages(c *gin.Context) {
	studentID, ok := idParam(c, "id")
	if !ok {
		return
	}
	images, err := h.svc.ListFaceImages(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if images == nil {
		images = []campus.FaceImage{}
	}
	c.JSON(http.StatusOK, images)
}

// CreateDepartment handles POST /api/departments.
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req struct {
		DepartmentName string `json:"department_name"`
		DepartmentCode string `json:"department_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.svc.CreateDepartment(c.Request.Context(), req.DepartmentName, req.DepartmentCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// ListDepartments handles GET /api/departments.
func (h *Handler) ListDepartments(c *gin.Context) {
	departments, err := h.svc.Repo().ListDepartments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if departments == nil {
		departments = []campus.Department{}
	}
	c.JSON(http.StatusOK, departments)
}
