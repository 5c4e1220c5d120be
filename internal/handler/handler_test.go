package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"classtrack/internal/campus"
	"classtrack/internal/store"
)

// testSchema is the migration schema in SQLite dialect.
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

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	svc := campus.NewService(campus.NewRepository(db), bcrypt.MinCost)
	h := New(svc, &store.DB{Client: db}, nil)
	r := gin.New()
	h.Register(r.Group("/api"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestCreateUserEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/users", gin.H{
		"username": "asha", "password": "secret123", "role": "Student",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Student", body["role"])
	assert.NotContains(t, w.Body.String(), "password_hash")

	// numeric-vs-string coercion never breaks binding on user ids elsewhere;
	// here the duplicate is rejected with a conflict
	w = doJSON(t, r, http.MethodPost, "/api/users", gin.H{
		"username": "asha", "password": "x", "role": "student",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/api/users", gin.H{
		"username": "b", "password": "x", "role": "janitor",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/users", gin.H{
		"username": "ravi", "password": "secret123", "role": "Teacher", "email": "ravi@campus.edu",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", gin.H{"username": "ravi", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)

	// email works as the identifier
	w = doJSON(t, r, http.MethodPost, "/api/login", gin.H{"email": "ravi@campus.edu", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", gin.H{"username": "ravi", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", gin.H{"username": "ravi", "password": "secret123", "role": "student"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetLectureEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/lectures/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Lecture not found", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodGet, "/api/lectures/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/lectures", gin.H{
		"lecture_name": "Calculus I", "semester": "Fall", "year": 2026,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.Equal(t, float64(3), created["semester"])

	w = doJSON(t, r, http.MethodGet, "/api/lectures/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Contains(t, body, "lecture")
	require.Contains(t, body, "enrollments")

	// the static summary route must not be captured by the :id route
	w = doJSON(t, r, http.MethodGet, "/api/lectures/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAttendanceFlowEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/users", gin.H{
		"username": "admin", "password": "secret123", "role": "Admin",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/users", gin.H{
		"username": "mira", "password": "secret123", "role": "Student",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/lectures", gin.H{"lecture_name": "Physics"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/sessions", gin.H{
		"lecture_id": "1", "session_date": "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// user_id arrives as a number here, as a string above for lecture_id
	w = doJSON(t, r, http.MethodPost, "/api/sessions/1/attendance", gin.H{"user_id": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Present", decode(t, w)["status"])

	w = doJSON(t, r, http.MethodPost, "/api/sessions/1/attendance", gin.H{"user_id": 2})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/sessions/1/lock", gin.H{"user_id": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/attendance/1", gin.H{"status": "Late"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Session attendance is locked", decode(t, w)["error"])
}

func TestNotificationsEndpointEmpty(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestUploadWithoutMediaStore(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/uploads", gin.H{"data": "data:image/png;base64,xxxx"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
