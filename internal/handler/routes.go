package handler

import "github.com/gin-gonic/gin"

// Register wires every API route onto the router group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/health", h.Health)

	api.POST("/users", h.CreateUser)
	api.GET("/users", h.ListUsers)
	api.POST("/login", h.Login)

	api.POST("/students", h.CreateStudent)
	api.GET("/students", h.ListStudents)
	api.GET("/students/:id/dashboard", h.StudentDashboard)
	api.POST("/students/:id/faces", h.AddFaceImage)
	api.GET("/students/:id/faces", h.ListFaceImages)

	api.POST("/teachers", h.CreateTeacher)
	api.GET("/teachers", h.ListTeachers)
	api.GET("/teachers/:id/students", h.TeacherStudents)

	api.POST("/lectures", h.CreateLecture)
	api.GET("/lectures", h.ListLectures)
	api.GET("/lectures/summary", h.LectureSummary)
	api.GET("/lectures/:id", h.GetLecture)
	api.POST("/lectures/:id/assign-teacher", h.AssignTeacher)
	api.POST("/lectures/:id/assign-camera", h.AssignCamera)
	api.POST("/lectures/:id/enroll", h.Enroll)
	api.GET("/lectures/:id/students", h.LectureStudents)
	api.DELETE("/lectures/:id/students/:user_id", h.RemoveLectureStudent)
	api.GET("/lectures/:id/attendance-summary", h.LectureAttendanceSummary)

	api.GET("/enrollments", h.ListEnrollments)

	api.POST("/cameras", h.CreateCamera)
	api.GET("/cameras", h.ListCameras)
	api.GET("/cameras/:id", h.GetCamera)
	api.PATCH("/cameras/:id", h.UpdateCamera)

	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.PATCH("/sessions/:id", h.UpdateSession)
	api.POST("/sessions/:id/lock", h.LockSession)
	api.POST("/sessions/:id/attendance", h.RecordAttendance)
	api.GET("/sessions/:id/attendance", h.SessionAttendance)
	api.PATCH("/attendance/:id", h.EditAttendance)

	api.GET("/stats/overview", h.OverviewStats)
	api.GET("/stats/teacher/:user_id", h.TeacherStats)
	api.GET("/reports/attendance", h.AttendanceReports)

	api.GET("/departments", h.ListDepartments)
	api.POST("/departments", h.CreateDepartment)

	api.GET("/notifications", h.Notifications)
	api.POST("/uploads", h.Upload)
}
