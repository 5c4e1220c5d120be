package campus

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository persists campus data. SQL is kept portable between the
// Postgres driver and the SQLite driver used in tests: $N placeholders,
// LOWER() for case folding, timestamps supplied by the caller.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColsU = `u.user_id, u.username, u.password_hash, u.role, u.full_name, u.email, u.phone, u.profile_picture, u.is_active, u.created_at, u.last_login`

const userCols = `user_id, username, password_hash, role, full_name, email, phone, profile_picture, is_active, created_at, last_login`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.UserID, &u.Username, &u.PasswordHash, &u.Role, &u.FullName,
		&u.Email, &u.Phone, &u.ProfilePicture, &u.IsActive, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// InsertUser writes a new user and fills in its id.
func (r *Repository) InsertUser(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role, full_name, email, phone, profile_picture, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING user_id
	`, u.Username, u.PasswordHash, u.Role, u.FullName, u.Email, u.Phone, u.ProfilePicture, u.IsActive, u.CreatedAt)
	return row.Scan(&u.UserID)
}

// GetUser returns a user by id, nil when absent.
func (r *Repository) GetUser(ctx context.Context, id int) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE user_id = $1`, id))
}

// GetUserByIdentifier matches username or email case-insensitively.
func (r *Repository) GetUserByIdentifier(ctx context.Context, ident string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userCols+` FROM users
		WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
	`, ident))
}

// UsernameTaken reports whether a username exists, case-insensitively.
func (r *Repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER($1)`, username).Scan(&n)
	return n > 0, err
}

// EmailTaken reports whether an email exists, case-insensitively.
func (r *Repository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email IS NOT NULL AND LOWER(email) = LOWER($1)`, email).Scan(&n)
	return n > 0, err
}

// ListUsers returns users ordered by id, optionally filtered by role.
func (r *Repository) ListUsers(ctx context.Context, role Role) ([]User, error) {
	query := `SELECT ` + userCols + ` FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY user_id ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, userID int, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = $1 WHERE user_id = $2`, at, userID)
	return err
}

const studentCols = `s.student_id, s.user_id, s.roll_number, s.department, s.registration_date, s.registered_by, s.face_embeddings, s.face_image_path, s.enrollment_status`

func scanStudentWithUser(row interface{ Scan(...any) error }) (*Student, error) {
	var st Student
	var u User
	err := row.Scan(&st.StudentID, &st.UserID, &st.RollNumber, &st.Department,
		&st.RegistrationDate, &st.RegisteredBy, &st.FaceEmbeddings, &st.FaceImagePath, &st.EnrollmentStatus,
		&u.UserID, &u.Username, &u.PasswordHash, &u.Role, &u.FullName,
		&u.Email, &u.Phone, &u.ProfilePicture, &u.IsActive, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	st.User = &u
	return &st, nil
}

// InsertStudent writes a new student profile and fills in its id.
func (r *Repository) InsertStudent(ctx context.Context, st *Student) error {
	if st.RegistrationDate.IsZero() {
		st.RegistrationDate = time.Now().UTC()
	}
	if st.EnrollmentStatus == "" {
		st.EnrollmentStatus = "Active"
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (user_id, roll_number, department, registration_date, registered_by, face_embeddings, face_image_path, enrollment_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING student_id
	`, st.UserID, st.RollNumber, st.Department, st.RegistrationDate, st.RegisteredBy,
		st.FaceEmbeddings, st.FaceImagePath, st.EnrollmentStatus)
	return row.Scan(&st.StudentID)
}

const studentSelect = `
	SELECT ` + studentCols + `, u.user_id, u.username, u.password_hash, u.role, u.full_name,
	       u.email, u.phone, u.profile_picture, u.is_active, u.created_at, u.last_login
	FROM students s
	JOIN users u ON u.user_id = s.user_id`

// GetStudent returns a student by its own id, with the owning user embedded.
func (r *Repository) GetStudent(ctx context.Context, studentID int) (*Student, error) {
	return scanStudentWithUser(r.db.QueryRowContext(ctx,
		studentSelect+` WHERE s.student_id = $1`, studentID))
}

// GetStudentByUserID returns the profile owned by a user, nil when absent.
func (r *Repository) GetStudentByUserID(ctx context.Context, userID int) (*Student, error) {
	return scanStudentWithUser(r.db.QueryRowContext(ctx,
		studentSelect+` WHERE s.user_id = $1`, userID))
}

// RollNumberTaken reports whether a roll number is already registered.
func (r *Repository) RollNumberTaken(ctx context.Context, rollNumber string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE roll_number = $1`, rollNumber).Scan(&n)
	return n > 0, err
}

// ListStudents returns all students ordered by id, users embedded.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, studentSelect+` ORDER BY s.student_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []Student
	for rows.Next() {
		st, err := scanStudentWithUser(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *st)
	}
	return students, rows.Err()
}

const teacherSelect = `
	SELECT t.teacher_id, t.user_id, t.department, t.specialization, t.date_joined,
	       u.user_id, u.username, u.password_hash, u.role, u.full_name,
	       u.email, u.phone, u.profile_picture, u.is_active, u.created_at, u.last_login
	FROM teachers t
	JOIN users u ON u.user_id = t.user_id`

func scanTeacherWithUser(row interface{ Scan(...any) error }) (*Teacher, error) {
	var t Teacher
	var u User
	err := row.Scan(&t.TeacherID, &t.UserID, &t.Department, &t.Specialization, &t.DateJoined,
		&u.UserID, &u.Username, &u.PasswordHash, &u.Role, &u.FullName,
		&u.Email, &u.Phone, &u.ProfilePicture, &u.IsActive, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.User = &u
	return &t, nil
}

// InsertTeacher writes a new teacher profile and fills in its id.
func (r *Repository) InsertTeacher(ctx context.Context, t *Teacher) error {
	if t.DateJoined.IsZero() {
		t.DateJoined = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO teachers (user_id, department, specialization, date_joined)
		VALUES ($1,$2,$3,$4)
		RETURNING teacher_id
	`, t.UserID, t.Department, t.Specialization, t.DateJoined)
	return row.Scan(&t.TeacherID)
}

// GetTeacher returns a teacher by its own id, nil when absent.
func (r *Repository) GetTeacher(ctx context.Context, teacherID int) (*Teacher, error) {
	return scanTeacherWithUser(r.db.QueryRowContext(ctx,
		teacherSelect+` WHERE t.teacher_id = $1`, teacherID))
}

// GetTeacherByUserID returns the profile owned by a user, nil when absent.
func (r *Repository) GetTeacherByUserID(ctx context.Context, userID int) (*Teacher, error) {
	return scanTeacherWithUser(r.db.QueryRowContext(ctx,
		teacherSelect+` WHERE t.user_id = $1`, userID))
}

// ListTeachers returns all teachers ordered by id, users embedded.
func (r *Repository) ListTeachers(ctx context.Context) ([]Teacher, error) {
	rows, err := r.db.QueryContext(ctx, teacherSelect+` ORDER BY t.teacher_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var teachers []Teacher
	for rows.Next() {
		t, err := scanTeacherWithUser(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, *t)
	}
	return teachers, rows.Err()
}

// InsertFaceImage records a captured face sample for a student.
func (r *Repository) InsertFaceImage(ctx context.Context, img *FaceImage) error {
	if img.CaptureDate.IsZero() {
		img.CaptureDate = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO face_datasets (student_id, image_path, capture_device, capture_date, quality_score)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING image_id
	`, img.StudentID, img.ImagePath, img.CaptureDevice, img.CaptureDate, img.QualityScore)
	return row.Scan(&img.ImageID)
}

// ListFaceImages returns a student's captured samples ordered by id.
func (r *Repository) ListFaceImages(ctx context.Context, studentID int) ([]FaceImage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT image_id, student_id, image_path, capture_device, capture_date, quality_score
		FROM face_datasets WHERE student_id = $1 ORDER BY image_id ASC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var images []FaceImage
	for rows.Next() {
		var img FaceImage
		if err := rows.Scan(&img.ImageID, &img.StudentID, &img.ImagePath,
			&img.CaptureDevice, &img.CaptureDate, &img.QualityScore); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// InsertDepartment writes a lookup row and fills in its id.
func (r *Repository) InsertDepartment(ctx context.Context, d *Department) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO departments (department_name, department_code)
		VALUES ($1,$2)
		RETURNING department_id
	`, d.DepartmentName, d.DepartmentCode)
	return row.Scan(&d.DepartmentID)
}

// ListDepartments returns all departments ordered by id.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT department_id, department_name, department_code
		FROM departments ORDER BY department_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.DepartmentID, &d.DepartmentName, &d.DepartmentCode); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}
