package campus

import (
	"context"
	"strings"
	"time"
)

// CreateLectureInput carries the create-lecture request body. Numeric
// fields accept string or number input and coerce leniently.
type CreateLectureInput struct {
	LectureName string     `json:"lecture_name"`
	CourseCode  string     `json:"course_code"`
	Department  string     `json:"department"`
	TeacherID   FlexString `json:"teacher_id"`
	Semester    FlexString `json:"semester"`
	Year        FlexString `json:"year"`
	Schedule    string     `json:"schedule"`
	RoomNumber  string     `json:"room_number"`
	Capacity    FlexString `json:"capacity"`
	Credits     FlexString `json:"credits"`
}

// CreateLecture validates and stores a lecture. An unknown teacher id is
// treated as unassigned rather than an error; unparseable numeric input
// stores as absent.
func (s *Service) CreateLecture(ctx context.Context, in CreateLectureInput) (*Lecture, error) {
	name := strings.TrimSpace(in.LectureName)
	if name == "" {
		return nil, invalid("lecture_name is required")
	}
	l := &Lecture{
		LectureName: name,
		IsActive:    true,
		Semester:    CoerceSemester(in.Semester),
		Year:        in.Year.Int(),
		Capacity:    in.Capacity.Int(),
		Credits:     in.Credits.Int(),
	}
	if code := strings.TrimSpace(in.CourseCode); code != "" {
		l.CourseCode = &code
	}
	if dept := strings.TrimSpace(in.Department); dept != "" {
		l.Department = &dept
	}
	if sched := strings.TrimSpace(in.Schedule); sched != "" {
		l.Schedule = &sched
	}
	if room := strings.TrimSpace(in.RoomNumber); room != "" {
		l.RoomNumber = &room
	}
	if teacherID := in.TeacherID.Int(); teacherID != nil {
		t, err := s.repo.GetTeacher(ctx, *teacherID)
		if err != nil {
			return nil, err
		}
		if t != nil {
			l.TeacherID = &t.TeacherID
			l.Teacher = t
		}
	}
	if err := s.repo.InsertLecture(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// GetLecture returns one lecture with its teacher and enrollments embedded.
func (s *Service) GetLecture(ctx context.Context, id int) (*Lecture, []Enrollment, error) {
	l, err := s.repo.GetLecture(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if l == nil {
		return nil, nil, notFound("Lecture not found")
	}
	if err := s.attachTeacher(ctx, l); err != nil {
		return nil, nil, err
	}
	enrollments, err := s.repo.ListEnrollments(ctx)
	if err != nil {
		return nil, nil, err
	}
	var scoped []Enrollment
	for _, e := range enrollments {
		if e.LectureID == id {
			e.Lecture = nil
			scoped = append(scoped, e)
		}
	}
	return l, scoped, nil
}

// ListLectures returns all lectures with teachers embedded.
func (s *Service) ListLectures(ctx context.Context) ([]Lecture, error) {
	lectures, err := s.repo.ListLectures(ctx)
	if err != nil {
		return nil, err
	}
	teachers, err := s.repo.ListTeachers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*Teacher, len(teachers))
	for i := range teachers {
		byID[teachers[i].TeacherID] = &teachers[i]
	}
	for i := range lectures {
		if lectures[i].TeacherID != nil {
			lectures[i].Teacher = byID[*lectures[i].TeacherID]
		}
	}
	return lectures, nil
}

func (s *Service) attachTeacher(ctx context.Context, l *Lecture) error {
	if l.TeacherID == nil {
		return nil
	}
	t, err := s.repo.GetTeacher(ctx, *l.TeacherID)
	if err != nil {
		return err
	}
	l.Teacher = t
	return nil
}

// AssignTeacher points a lecture at a teacher, replacing any prior
// assignment.
func (s *Service) AssignTeacher(ctx context.Context, lectureID, teacherID int) (*Lecture, error) {
	l, err := s.repo.GetLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, notFound("Lecture not found")
	}
	t, err := s.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound("Teacher not found")
	}
	if err := s.repo.SetLectureTeacher(ctx, lectureID, teacherID); err != nil {
		return nil, err
	}
	l.TeacherID = &t.TeacherID
	l.Teacher = t
	return l, nil
}

// AssignCamera points a camera at a lecture; reassignment is free and the
// last write wins.
func (s *Service) AssignCamera(ctx context.Context, lectureID, cameraID int) (*Lecture, *Camera, error) {
	l, err := s.repo.GetLecture(ctx, lectureID)
	if err != nil {
		return nil, nil, err
	}
	if l == nil {
		return nil, nil, notFound("Lecture not found")
	}
	c, err := s.repo.GetCamera(ctx, cameraID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, notFound("Camera not found")
	}
	if err := s.repo.AssignCameraLecture(ctx, cameraID, lectureID); err != nil {
		return nil, nil, err
	}
	c.LectureID = &l.LectureID
	return l, c, nil
}

// Enroll adds a (user, lecture) join row. The is_teacher flag marks a
// teaching assignment independent of the user's profile role.
func (s *Service) Enroll(ctx context.Context, lectureID, userID int, isTeacher bool) (*Enrollment, error) {
	l, err := s.repo.GetLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, notFound("Lecture not found")
	}
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("User not found")
	}
	if existing, err := s.repo.GetEnrollment(ctx, userID, lectureID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, conflict("User already enrolled in this lecture")
	}
	e := &Enrollment{UserID: userID, LectureID: lectureID, IsTeacher: isTeacher}
	if err := s.repo.InsertEnrollment(ctx, e); err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("User already enrolled in this lecture")
		}
		return nil, err
	}
	return e, nil
}

// RemoveLectureStudent drops an enrollment row.
func (s *Service) RemoveLectureStudent(ctx context.Context, lectureID, userID int) error {
	l, err := s.repo.GetLecture(ctx, lectureID)
	if err != nil {
		return err
	}
	if l == nil {
		return notFound("Lecture not found")
	}
	deleted, err := s.repo.DeleteEnrollment(ctx, userID, lectureID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("Enrollment not found")
	}
	return nil
}

// ListLectureRoster returns the students enrolled in a lecture.
func (s *Service) ListLectureRoster(ctx context.Context, lectureID int) ([]RosterEntry, error) {
	l, err := s.repo.GetLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, notFound("Lecture not found")
	}
	return s.repo.ListLectureRoster(ctx, lectureID)
}

// TeacherRosterByUser resolves a teacher by owning user id and returns the
// students across their lectures.
func (s *Service) TeacherRosterByUser(ctx context.Context, userID int) ([]RosterEntry, error) {
	t, err := s.repo.GetTeacherByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound("Teacher not found")
	}
	return s.repo.ListTeacherRoster(ctx, t.TeacherID)
}

// CreateCameraInput carries the create-camera request body.
type CreateCameraInput struct {
	CameraName string     `json:"name"`
	Location   string     `json:"location"`
	StreamURL  string     `json:"stream_url"`
	LectureID  FlexString `json:"lecture_id"`
	Status     string     `json:"status"`
}

// CreateCamera validates and stores a capture device.
func (s *Service) CreateCamera(ctx context.Context, in CreateCameraInput) (*Camera, error) {
	name := strings.TrimSpace(in.CameraName)
	stream := strings.TrimSpace(in.StreamURL)
	if name == "" || stream == "" {
		return nil, invalid("name and stream_url are required")
	}
	c := &Camera{CameraName: name, StreamURL: stream, Status: strings.TrimSpace(in.Status)}
	if loc := strings.TrimSpace(in.Location); loc != "" {
		c.Location = &loc
	}
	if lectureID := in.LectureID.Int(); lectureID != nil {
		l, err := s.repo.GetLecture(ctx, *lectureID)
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, notFound("Lecture not found")
		}
		c.LectureID = lectureID
	}
	if err := s.repo.InsertCamera(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCameraInput carries the camera patch body; nil fields stay untouched.
type UpdateCameraInput struct {
	CameraName *string `json:"name"`
	Location   *string `json:"location"`
	StreamURL  *string `json:"stream_url"`
	Status     *string `json:"status"`
}

// UpdateCamera applies a partial update. A status change refreshes the
// last-checked timestamp, feeding the notifications feed.
func (s *Service) UpdateCamera(ctx context.Context, id int, in UpdateCameraInput) (*Camera, error) {
	c, err := s.repo.GetCamera(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("Camera not found")
	}
	if in.CameraName != nil {
		if strings.TrimSpace(*in.CameraName) == "" {
			return nil, invalid("name cannot be empty")
		}
		c.CameraName = strings.TrimSpace(*in.CameraName)
	}
	if in.Location != nil {
		c.Location = in.Location
	}
	if in.StreamURL != nil {
		if strings.TrimSpace(*in.StreamURL) == "" {
			return nil, invalid("stream_url cannot be empty")
		}
		c.StreamURL = strings.TrimSpace(*in.StreamURL)
	}
	if in.Status != nil {
		c.Status = strings.TrimSpace(*in.Status)
		now := time.Now().UTC()
		c.LastChecked = &now
	}
	if err := s.repo.UpdateCamera(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
