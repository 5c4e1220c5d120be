package campus

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Service enforces business rules before mutations reach the repository.
// It never caches entities across requests; each operation reads then
// writes against the store directly.
type Service struct {
	repo       *Repository
	bcryptCost int
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// Repo exposes the repository for read-only aggregate endpoints that
// bypass validation.
func (s *Service) Repo() *Repository { return s.repo }

// CreateUserInput carries the create-user request body.
type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// CreateUser validates and stores a new identity record. The raw password
// never reaches the store.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, invalid("Username and password are required")
	}
	role, ok := ParseRole(in.Role)
	if !ok {
		return nil, invalid("Invalid role. Use admin, teacher, or student.")
	}
	if taken, err := s.repo.UsernameTaken(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, conflict("Username already exists")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if taken, err := s.repo.EmailTaken(ctx, email); err != nil {
			return nil, err
		} else if taken {
			return nil, conflict("Email already exists")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = username
	}
	u := &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     fullName,
		IsActive:     true,
	}
	if email != "" {
		u.Email = &email
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		u.Phone = &phone
	}
	if err := s.repo.InsertUser(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Username or email already exists")
		}
		return nil, err
	}
	return u, nil
}

// Login checks a username-or-email identifier and password. An explicitly
// requested role must match the stored role, and the account must be active.
// Success records last_login.
func (s *Service) Login(ctx context.Context, identifier, password, role string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, invalid("Username and password are required")
	}
	u, err := s.repo.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, authFailed("Invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, authFailed("Invalid username or password")
	}
	if !u.IsActive {
		return nil, forbidden("Account is disabled")
	}
	if role != "" {
		wanted, ok := ParseRole(role)
		if !ok || wanted != u.Role {
			return nil, forbidden("Role does not match this account")
		}
	}
	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, u.UserID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now
	return u, nil
}

// ListUsers returns users, optionally filtered by a case-insensitive role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]User, error) {
	var filter Role
	if role != "" {
		parsed, ok := ParseRole(role)
		if !ok {
			return nil, invalid("Invalid role filter")
		}
		filter = parsed
	}
	return s.repo.ListUsers(ctx, filter)
}

// CreateStudentInput carries the create-student request body.
type CreateStudentInput struct {
	UserID         FlexString `json:"user_id"`
	RollNumber     string     `json:"roll_number"`
	Department     string     `json:"department"`
	FaceEmbeddings string     `json:"face_embeddings"`
	FaceImagePath  string     `json:"face_image_path"`
	RegisteredBy   FlexString `json:"registered_by"`
}

// CreateStudent attaches a student profile to an existing student-role user.
func (s *Service) CreateStudent(ctx context.Context, in CreateStudentInput) (*Student, error) {
	userID := in.UserID.Int()
	roll := strings.TrimSpace(in.RollNumber)
	if userID == nil || roll == "" {
		return nil, invalid("user_id and roll_number are required")
	}
	if strings.TrimSpace(in.FaceEmbeddings) == "" {
		return nil, invalid("face_embeddings is required")
	}
	u, err := s.repo.GetUser(ctx, *userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("User not found")
	}
	if u.Role != RoleStudent {
		return nil, invalid("User must have student role")
	}
	if existing, err := s.repo.GetStudentByUserID(ctx, *userID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, conflict("Student profile already exists for this user")
	}
	if taken, err := s.repo.RollNumberTaken(ctx, roll); err != nil {
		return nil, err
	} else if taken {
		return nil, conflict("Roll number already exists")
	}
	st := &Student{
		UserID:         *userID,
		RollNumber:     roll,
		FaceEmbeddings: in.FaceEmbeddings,
		RegisteredBy:   in.RegisteredBy.Int(),
	}
	if dept := strings.TrimSpace(in.Department); dept != "" {
		st.Department = &dept
	}
	if path := strings.TrimSpace(in.FaceImagePath); path != "" {
		st.FaceImagePath = &path
	}
	if err := s.repo.InsertStudent(ctx, st); err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Student profile or roll number already exists")
		}
		return nil, err
	}
	st.User = u
	return st, nil
}

// CreateTeacherInput carries the create-teacher request body.
type CreateTeacherInput struct {
	UserID         FlexString `json:"user_id"`
	Department     string     `json:"department"`
	Specialization string     `json:"specialization"`
}

// CreateTeacher attaches a teacher profile to an existing teacher-role user.
func (s *Service) CreateTeacher(ctx context.Context, in CreateTeacherInput) (*Teacher, error) {
	userID := in.UserID.Int()
	if userID == nil {
		return nil, invalid("user_id is required")
	}
	u, err := s.repo.GetUser(ctx, *userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("User not found")
	}
	if u.Role != RoleTeacher {
		return nil, invalid("User must have teacher role")
	}
	if existing, err := s.repo.GetTeacherByUserID(ctx, *userID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, conflict("Teacher profile already exists for this user")
	}
	t := &Teacher{UserID: *userID}
	if dept := strings.TrimSpace(in.Department); dept != "" {
		t.Department = &dept
	}
	if spec := strings.TrimSpace(in.Specialization); spec != "" {
		t.Specialization = &spec
	}
	if err := s.repo.InsertTeacher(ctx, t); err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Teacher profile already exists for this user")
		}
		return nil, err
	}
	t.User = u
	return t, nil
}

// AddFaceImageInput carries a captured face sample.
type AddFaceImageInput struct {
	ImagePath     string   `json:"image_path"`
	CaptureDevice string   `json:"capture_device"`
	QualityScore  *float64 `json:"quality_score"`
}

// AddFaceImage records a face sample for an existing student.
func (s *Service) AddFaceImage(ctx context.Context, studentID int, in AddFaceImageInput) (*FaceImage, error) {
	if strings.TrimSpace(in.ImagePath) == "" {
		return nil, invalid("image_path is required")
	}
	st, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, notFound("Student not found")
	}
	img := &FaceImage{
		StudentID:    studentID,
		ImagePath:    strings.TrimSpace(in.ImagePath),
		QualityScore: in.QualityScore,
	}
	if dev := strings.TrimSpace(in.CaptureDevice); dev != "" {
		img.CaptureDevice = &dev
	}
	if err := s.repo.InsertFaceImage(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// ListFaceImages returns a student's captured samples.
func (s *Service) ListFaceImages(ctx context.Context, studentID int) ([]FaceImage, error) {
	st, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, notFound("Student not found")
	}
	return s.repo.ListFaceImages(ctx, studentID)
}

// CreateDepartment stores a lookup row with a unique name.
func (s *Service) CreateDepartment(ctx context.Context, name, code string) (*Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("department_name is required")
	}
	d := &Department{DepartmentName: name}
	if code = strings.TrimSpace(code); code != "" {
		d.DepartmentCode = &code
	}
	if err := s.repo.InsertDepartment(ctx, d); err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Department already exists")
		}
		return nil, err
	}
	return d, nil
}
