package campus

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const lectureCols = `lecture_id, lecture_name, course_code, department, is_active, teacher_id, semester, year, schedule, room_number, capacity, credits, created_at`

const lectureColsL = `l.lecture_id, l.lecture_name, l.course_code, l.department, l.is_active, l.teacher_id, l.semester, l.year, l.schedule, l.room_number, l.capacity, l.credits, l.created_at`

func scanLecture(row interface{ Scan(...any) error }) (*Lecture, error) {
	var l Lecture
	err := row.Scan(&l.LectureID, &l.LectureName, &l.CourseCode, &l.Department, &l.IsActive,
		&l.TeacherID, &l.Semester, &l.Year, &l.Schedule, &l.RoomNumber, &l.Capacity, &l.Credits, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// InsertLecture writes a new lecture and fills in its id.
func (r *Repository) InsertLecture(ctx context.Context, l *Lecture) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO lectures (lecture_name, course_code, department, is_active, teacher_id, semester, year, schedule, room_number, capacity, credits, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING lecture_id
	`, l.LectureName, l.CourseCode, l.Department, l.IsActive, l.TeacherID,
		l.Semester, l.Year, l.Schedule, l.RoomNumber, l.Capacity, l.Credits, l.CreatedAt)
	return row.Scan(&l.LectureID)
}

// GetLecture returns a lecture by id, nil when absent.
func (r *Repository) GetLecture(ctx context.Context, id int) (*Lecture, error) {
	return scanLecture(r.db.QueryRowContext(ctx,
		`SELECT `+lectureCols+` FROM lectures WHERE lecture_id = $1`, id))
}

// ListLectures returns all lectures ordered by id.
func (r *Repository) ListLectures(ctx context.Context) ([]Lecture, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+lectureCols+` FROM lectures ORDER BY lecture_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lectures []Lecture
	for rows.Next() {
		l, err := scanLecture(rows)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, *l)
	}
	return lectures, rows.Err()
}

// SetLectureTeacher replaces any prior assignment; a single current
// assignment only, no history kept.
func (r *Repository) SetLectureTeacher(ctx context.Context, lectureID, teacherID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE lectures SET teacher_id = $1 WHERE lecture_id = $2`, teacherID, lectureID)
	return err
}

// InsertEnrollment writes a (user, lecture) join row. The composite primary
// key is the authoritative duplicate guard.
func (r *Repository) InsertEnrollment(ctx context.Context, e *Enrollment) error {
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().UTC()
	}
	if e.EnrollmentStatus == "" {
		e.EnrollmentStatus = "Active"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_lectures (user_id, lecture_id, is_teacher, enrolled_at, enrollment_status)
		VALUES ($1,$2,$3,$4,$5)
	`, e.UserID, e.LectureID, e.IsTeacher, e.EnrolledAt, e.EnrollmentStatus)
	return err
}

// GetEnrollment returns the join row for a (user, lecture) pair, nil when absent.
func (r *Repository) GetEnrollment(ctx context.Context, userID, lectureID int) (*Enrollment, error) {
	var e Enrollment
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, lecture_id, is_teacher, enrolled_at, enrollment_status
		FROM user_lectures WHERE user_id = $1 AND lecture_id = $2
	`, userID, lectureID).Scan(&e.UserID, &e.LectureID, &e.IsTeacher, &e.EnrolledAt, &e.EnrollmentStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// DeleteEnrollment removes a join row, reporting whether one existed.
func (r *Repository) DeleteEnrollment(ctx context.Context, userID, lectureID int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_lectures WHERE user_id = $1 AND lecture_id = $2`, userID, lectureID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListEnrollments returns every join row with its lecture and user embedded,
// ordered by the composite key.
func (r *Repository) ListEnrollments(ctx context.Context) ([]Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ul.user_id, ul.lecture_id, ul.is_teacher, ul.enrolled_at, ul.enrollment_status,
		       `+lectureColsL+`,
		       `+userColsU+`
		FROM user_lectures ul
		JOIN lectures l ON l.lecture_id = ul.lecture_id
		JOIN users u ON u.user_id = ul.user_id
		ORDER BY ul.user_id ASC, ul.lecture_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var enrollments []Enrollment
	for rows.Next() {
		var e Enrollment
		var l Lecture
		var u User
		if err := rows.Scan(&e.UserID, &e.LectureID, &e.IsTeacher, &e.EnrolledAt, &e.EnrollmentStatus,
			&l.LectureID, &l.LectureName, &l.CourseCode, &l.Department, &l.IsActive,
			&l.TeacherID, &l.Semester, &l.Year, &l.Schedule, &l.RoomNumber, &l.Capacity, &l.Credits, &l.CreatedAt,
			&u.UserID, &u.Username, &u.PasswordHash, &u.Role, &u.FullName,
			&u.Email, &u.Phone, &u.ProfilePicture, &u.IsActive, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		e.Lecture = &l
		e.User = &u
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// ListEnrollmentsByUser returns a user's join rows with lectures embedded.
func (r *Repository) ListEnrollmentsByUser(ctx context.Context, userID int) ([]Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ul.user_id, ul.lecture_id, ul.is_teacher, ul.enrolled_at, ul.enrollment_status,
		       `+lectureColsL+`
		FROM user_lectures ul
		JOIN lectures l ON l.lecture_id = ul.lecture_id
		WHERE ul.user_id = $1
		ORDER BY ul.lecture_id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var enrollments []Enrollment
	for rows.Next() {
		var e Enrollment
		var l Lecture
		if err := rows.Scan(&e.UserID, &e.LectureID, &e.IsTeacher, &e.EnrolledAt, &e.EnrollmentStatus,
			&l.LectureID, &l.LectureName, &l.CourseCode, &l.Department, &l.IsActive,
			&l.TeacherID, &l.Semester, &l.Year, &l.Schedule, &l.RoomNumber, &l.Capacity, &l.Credits, &l.CreatedAt); err != nil {
			return nil, err
		}
		e.Lecture = &l
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// RosterEntry is one student row in a lecture or teacher roster.
type RosterEntry struct {
	Student     Student   `json:"student"`
	LectureID   int       `json:"lecture_id"`
	LectureName string    `json:"lecture_name"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

func scanRosterRows(rows *sql.Rows) ([]RosterEntry, error) {
	var roster []RosterEntry
	for rows.Next() {
		var entry RosterEntry
		st := &entry.Student
		var u User
		if err := rows.Scan(&st.StudentID, &st.UserID, &st.RollNumber, &st.Department,
			&st.RegistrationDate, &st.RegisteredBy, &st.FaceEmbeddings, &st.FaceImagePath, &st.EnrollmentStatus,
			&u.UserID, &u.Username, &u.PasswordHash, &u.Role, &u.FullName,
			&u.Email, &u.Phone, &u.ProfilePicture, &u.IsActive, &u.CreatedAt, &u.LastLogin,
			&entry.LectureID, &entry.LectureName, &entry.EnrolledAt); err != nil {
			return nil, err
		}
		st.User = &u
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// ListLectureRoster returns the students enrolled in one lecture.
func (r *Repository) ListLectureRoster(ctx context.Context, lectureID int) ([]RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentCols+`,
		       `+userColsU+`,
		       l.lecture_id, l.lecture_name, ul.enrolled_at
		FROM students s
		JOIN users u ON u.user_id = s.user_id
		JOIN user_lectures ul ON ul.user_id = s.user_id AND ul.is_teacher = $1
		JOIN lectures l ON l.lecture_id = ul.lecture_id
		WHERE ul.lecture_id = $2
		ORDER BY s.student_id ASC
	`, false, lectureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRosterRows(rows)
}

// ListTeacherRoster returns every student enrolled in any lecture assigned
// to the teacher; the three-way join the teacher dashboards rely on.
func (r *Repository) ListTeacherRoster(ctx context.Context, teacherID int) ([]RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentCols+`,
		       `+userColsU+`,
		       l.lecture_id, l.lecture_name, ul.enrolled_at
		FROM students s
		JOIN users u ON u.user_id = s.user_id
		JOIN user_lectures ul ON ul.user_id = s.user_id AND ul.is_teacher = $1
		JOIN lectures l ON l.lecture_id = ul.lecture_id
		WHERE l.teacher_id = $2
		ORDER BY l.lecture_id ASC, s.student_id ASC
	`, false, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRosterRows(rows)
}

const cameraCols = `camera_id, camera_name, location, stream_url, lecture_id, status, last_checked`

func scanCamera(row interface{ Scan(...any) error }) (*Camera, error) {
	var c Camera
	err := row.Scan(&c.CameraID, &c.CameraName, &c.Location, &c.StreamURL, &c.LectureID, &c.Status, &c.LastChecked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// InsertCamera writes a new camera and fills in its id.
func (r *Repository) InsertCamera(ctx context.Context, c *Camera) error {
	if c.Status == "" {
		c.Status = CameraOffline
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO cameras (camera_name, location, stream_url, lecture_id, status, last_checked)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING camera_id
	`, c.CameraName, c.Location, c.StreamURL, c.LectureID, c.Status, c.LastChecked)
	return row.Scan(&c.CameraID)
}

// GetCamera returns a camera by id, nil when absent.
func (r *Repository) GetCamera(ctx context.Context, id int) (*Camera, error) {
	return scanCamera(r.db.QueryRowContext(ctx,
		`SELECT `+cameraCols+` FROM cameras WHERE camera_id = $1`, id))
}

// ListCameras returns all cameras ordered by id.
func (r *Repository) ListCameras(ctx context.Context) ([]Camera, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cameraCols+` FROM cameras ORDER BY camera_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cameras []Camera
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, err
		}
		cameras = append(cameras, *c)
	}
	return cameras, rows.Err()
}

// UpdateCamera persists mutable camera fields.
func (r *Repository) UpdateCamera(ctx context.Context, c *Camera) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE cameras
		SET camera_name = $1, location = $2, stream_url = $3, lecture_id = $4, status = $5, last_checked = $6
		WHERE camera_id = $7
	`, c.CameraName, c.Location, c.StreamURL, c.LectureID, c.Status, c.LastChecked, c.CameraID)
	return err
}

// AssignCameraLecture points a camera at a lecture; last write wins, a
// camera holds a single current assignment and no history.
func (r *Repository) AssignCameraLecture(ctx context.Context, cameraID, lectureID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cameras SET lecture_id = $1 WHERE camera_id = $2`, lectureID, cameraID)
	return err
}

// ListOfflineCameras returns cameras whose status is Offline, ordered by id.
func (r *Repository) ListOfflineCameras(ctx context.Context) ([]Camera, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cameraCols+` FROM cameras WHERE LOWER(status) = LOWER($1) ORDER BY camera_id ASC`, CameraOffline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cameras []Camera
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, err
		}
		cameras = append(cameras, *c)
	}
	return cameras, rows.Err()
}
