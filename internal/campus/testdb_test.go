package campus

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testSchema mirrors the Postgres migration in SQLite dialect so the
// repository runs against an in-memory database.
const testSchema = `
CREATE TABLE users (
    user_id         INTEGER PRIMARY KEY AUTOINCREMENT,
    username        VARCHAR(50) UNIQUE NOT NULL,
    password_hash   VARCHAR(255) NOT NULL,
    role            VARCHAR(20) NOT NULL,
    full_name       VARCHAR(100) NOT NULL,
    email           VARCHAR(150) UNIQUE,
    phone           VARCHAR(20),
    profile_picture VARCHAR(255),
    is_active       BOOLEAN NOT NULL DEFAULT 1,
    created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_login      TIMESTAMP
);
CREATE TABLE students (
    student_id        INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id           INTEGER UNIQUE NOT NULL REFERENCES users(user_id),
    roll_number       VARCHAR(50) UNIQUE NOT NULL,
    department        VARCHAR(100),
    registration_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    registered_by     INTEGER REFERENCES users(user_id),
    face_embeddings   TEXT NOT NULL,
    face_image_path   VARCHAR(255),
    enrollment_status VARCHAR(20) NOT NULL DEFAULT 'Active'
);
CREATE TABLE teachers (
    teacher_id     INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id        INTEGER UNIQUE NOT NULL REFERENCES users(user_id),
    department     VARCHAR(100),
    specialization VARCHAR(200),
    date_joined    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE lectures (
    lecture_id   INTEGER PRIMARY KEY AUTOINCREMENT,
    lecture_name VARCHAR(100) NOT NULL,
    course_code  VARCHAR(50),
    department   VARCHAR(100),
    is_active    BOOLEAN NOT NULL DEFAULT 1,
    teacher_id   INTEGER REFERENCES teachers(teacher_id),
    semester     INTEGER,
    year         INTEGER,
    schedule     TEXT,
    room_number  VARCHAR(50),
    capacity     INTEGER,
    credits      INTEGER,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE user_lectures (
    user_id           INTEGER NOT NULL REFERENCES users(user_id),
    lecture_id        INTEGER NOT NULL REFERENCES lectures(lecture_id),
    is_teacher        BOOLEAN NOT NULL DEFAULT 0,
    enrolled_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    enrollment_status VARCHAR(20) NOT NULL DEFAULT 'Active',
    PRIMARY KEY (user_id, lecture_id)
);
CREATE TABLE cameras (
    camera_id    INTEGER PRIMARY KEY AUTOINCREMENT,
    camera_name  VARCHAR(100) NOT NULL,
    location     VARCHAR(150),
    stream_url   VARCHAR(255) NOT NULL,
    lecture_id   INTEGER REFERENCES lectures(lecture_id),
    status       VARCHAR(20) NOT NULL DEFAULT 'Offline',
    last_checked TIMESTAMP
);
CREATE TABLE attendance_sessions (
    session_id        INTEGER PRIMARY KEY AUTOINCREMENT,
    lecture_id        INTEGER NOT NULL REFERENCES lectures(lecture_id),
    camera_id         INTEGER REFERENCES cameras(camera_id),
    session_date      VARCHAR(10) NOT NULL,
    start_time        VARCHAR(8),
    end_time          VARCHAR(8),
    status            VARCHAR(20) NOT NULL DEFAULT 'Scheduled',
    attendance_locked BOOLEAN NOT NULL DEFAULT 0,
    locked_by         INTEGER REFERENCES users(user_id),
    locked_at         TIMESTAMP,
    created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at      TIMESTAMP,
    notes             TEXT
);
CREATE TABLE student_attendance (
    attendance_id       INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id          INTEGER NOT NULL REFERENCES attendance_sessions(session_id),
    user_id             INTEGER NOT NULL REFERENCES users(user_id),
    time_in             TIMESTAMP,
    time_out            TIMESTAMP,
    status              VARCHAR(20) NOT NULL DEFAULT 'Present',
    verification_method VARCHAR(30) NOT NULL DEFAULT 'Manual',
    verified_by         INTEGER REFERENCES users(user_id),
    confidence_score    DOUBLE PRECISION,
    manual_override     BOOLEAN NOT NULL DEFAULT 0,
    edited_by           INTEGER REFERENCES users(user_id),
    edited_at           TIMESTAMP,
    created_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    notes               TEXT
);
CREATE TABLE face_datasets (
    image_id       INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id     INTEGER NOT NULL REFERENCES students(student_id),
    image_path     VARCHAR(255) NOT NULL,
    capture_device VARCHAR(100),
    capture_date   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    quality_score  DOUBLE PRECISION
);
CREATE TABLE departments (
    department_id   INTEGER PRIMARY KEY AUTOINCREMENT,
    department_name VARCHAR(100) UNIQUE NOT NULL,
    department_code VARCHAR(20)
);
`

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return NewService(NewRepository(db), bcrypt.MinCost)
}

func mustUser(t *testing.T, svc *Service, username string, role Role) *User {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: username,
		Password: "secret123",
		Role:     string(role),
		Email:    username + "@campus.edu",
	})
	require.NoError(t, err)
	return u
}

func mustStudent(t *testing.T, svc *Service, u *User) *Student {
	t.Helper()
	st, err := svc.CreateStudent(context.Background(), CreateStudentInput{
		UserID:         FlexString(itoa(u.UserID)),
		RollNumber:     "R-" + u.Username,
		FaceEmbeddings: "[0.1,0.2]",
	})
	require.NoError(t, err)
	return st
}

func mustTeacher(t *testing.T, svc *Service, u *User) *Teacher {
	t.Helper()
	tc, err := svc.CreateTeacher(context.Background(), CreateTeacherInput{
		UserID: FlexString(itoa(u.UserID)),
	})
	require.NoError(t, err)
	return tc
}

func mustLecture(t *testing.T, svc *Service, name string) *Lecture {
	t.Helper()
	l, err := svc.CreateLecture(context.Background(), CreateLectureInput{LectureName: name})
	require.NoError(t, err)
	return l
}

func mustSession(t *testing.T, svc *Service, lectureID int, date string) *Session {
	t.Helper()
	sess, err := svc.CreateSession(context.Background(), CreateSessionInput{
		LectureID:   FlexString(itoa(lectureID)),
		SessionDate: date,
	})
	require.NoError(t, err)
	return sess
}

func mustCamera(t *testing.T, svc *Service, name string) *Camera {
	t.Helper()
	c, err := svc.CreateCamera(context.Background(), CreateCameraInput{
		CameraName: name,
		StreamURL:  "rtsp://cams/" + name,
	})
	require.NoError(t, err)
	return c
}
