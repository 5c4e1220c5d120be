package campus

import "time"

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleTeacher Role = "Teacher"
	RoleStudent Role = "Student"
)

// Session lifecycle states.
const (
	SessionScheduled  = "Scheduled"
	SessionInProgress = "InProgress"
	SessionCompleted  = "Completed"
)

// Attendance statuses. Comparisons are case-insensitive everywhere.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"
	StatusUnknown = "Unknown"
)

// Verification methods for attendance records.
const (
	VerifyFace   = "Face Recognition"
	VerifyManual = "Manual"
)

// CameraOffline is the camera status surfaced in the notifications feed.
const CameraOffline = "Offline"

// User is the identity record behind every actor in the system.
type User struct {
	UserID         int        `json:"user_id"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	FullName       string     `json:"full_name"`
	Email          *string    `json:"email"`
	Phone          *string    `json:"phone"`
	ProfilePicture *string    `json:"profile_picture,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// Student is the profile extension of a User with role Student.
// The embedded User projection is one hop only.
type Student struct {
	StudentID        int       `json:"student_id"`
	UserID           int       `json:"user_id"`
	RollNumber       string    `json:"roll_number"`
	Department       *string   `json:"department"`
	RegistrationDate time.Time `json:"registration_date"`
	RegisteredBy     *int      `json:"registered_by"`
	FaceEmbeddings   string    `json:"face_embeddings"`
	FaceImagePath    *string   `json:"face_image_path"`
	EnrollmentStatus string    `json:"enrollment_status"`
	User             *User     `json:"user,omitempty"`
}

// Teacher is the profile extension of a User with role Teacher.
type Teacher struct {
	TeacherID      int       `json:"teacher_id"`
	UserID         int       `json:"user_id"`
	Department     *string   `json:"department"`
	Specialization *string   `json:"specialization"`
	DateJoined     time.Time `json:"date_joined"`
	User           *User     `json:"user,omitempty"`
}

// Lecture is a course offering/section.
type Lecture struct {
	LectureID   int       `json:"lecture_id"`
	LectureName string    `json:"lecture_name"`
	CourseCode  *string   `json:"course_code"`
	Department  *string   `json:"department"`
	IsActive    bool      `json:"is_active"`
	TeacherID   *int      `json:"teacher_id"`
	Semester    *int      `json:"semester"`
	Year        *int      `json:"year"`
	Schedule    *string   `json:"schedule"`
	RoomNumber  *string   `json:"room_number"`
	Capacity    *int      `json:"capacity"`
	Credits     *int      `json:"credits"`
	CreatedAt   time.Time `json:"created_at"`
	Teacher     *Teacher  `json:"teacher,omitempty"`
}

// Enrollment joins a user to a lecture; at most one row per pair.
// IsTeacher marks a teaching assignment rather than a student enrollment.
type Enrollment struct {
	UserID           int       `json:"user_id"`
	LectureID        int       `json:"lecture_id"`
	IsTeacher        bool      `json:"is_teacher"`
	EnrolledAt       time.Time `json:"enrolled_at"`
	EnrollmentStatus string    `json:"enrollment_status"`
	Lecture          *Lecture  `json:"lecture,omitempty"`
	User             *User     `json:"user,omitempty"`
}

// Camera is a capture device optionally assigned to one lecture.
type Camera struct {
	CameraID    int        `json:"camera_id"`
	CameraName  string     `json:"camera_name"`
	Location    *string    `json:"location"`
	StreamURL   string     `json:"stream_url"`
	LectureID   *int       `json:"lecture_id"`
	Status      string     `json:"status"`
	LastChecked *time.Time `json:"last_checked"`
}

// Session is one dated occurrence of a lecture.
type Session struct {
	SessionID        int        `json:"session_id"`
	LectureID        int        `json:"lecture_id"`
	CameraID         *int       `json:"camera_id"`
	SessionDate      string     `json:"session_date"`
	StartTime        *string    `json:"start_time"`
	EndTime          *string    `json:"end_time"`
	Status           string     `json:"status"`
	AttendanceLocked bool       `json:"attendance_locked"`
	LockedBy         *int       `json:"locked_by"`
	LockedAt         *time.Time `json:"locked_at"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	Notes            *string    `json:"notes"`
	Lecture          *Lecture   `json:"lecture,omitempty"`
}

// AttendanceRecord is one attendance outcome for one user in one session.
type AttendanceRecord struct {
	AttendanceID       int        `json:"attendance_id"`
	SessionID          int        `json:"session_id"`
	UserID             int        `json:"user_id"`
	TimeIn             *time.Time `json:"time_in"`
	TimeOut            *time.Time `json:"time_out"`
	Status             string     `json:"status"`
	VerificationMethod string     `json:"verification_method"`
	VerifiedBy         *int       `json:"verified_by"`
	ConfidenceScore    *float64   `json:"confidence_score"`
	ManualOverride     bool       `json:"manual_override"`
	EditedBy           *int       `json:"edited_by"`
	EditedAt           *time.Time `json:"edited_at"`
	CreatedAt          time.Time  `json:"created_at"`
	Notes              *string    `json:"notes"`
	User               *User      `json:"user,omitempty"`
}

// FaceImage is one captured sample image for a student.
type FaceImage struct {
	ImageID       int       `json:"image_id"`
	StudentID     int       `json:"student_id"`
	ImagePath     string    `json:"image_path"`
	CaptureDevice *string   `json:"capture_device"`
	CaptureDate   time.Time `json:"capture_date"`
	QualityScore  *float64  `json:"quality_score"`
}

// Department is a simple lookup entity.
type Department struct {
	DepartmentID   int     `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	DepartmentCode *string `json:"department_code"`
}
