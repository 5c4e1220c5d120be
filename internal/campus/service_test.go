package campus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Username: "", Password: "x", Role: "student"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateUser(ctx, CreateUserInput{Username: "a", Password: "", Role: "student"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateUser(ctx, CreateUserInput{Username: "a", Password: "x", Role: "principal"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateUserDefaultsAndDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "asha",
		Password: "secret123",
		Role:     "STUDENT",
		Email:    "asha@campus.edu",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, u.Role)
	assert.Equal(t, "asha", u.FullName) // defaults to username
	assert.True(t, u.IsActive)
	assert.NotZero(t, u.UserID)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	// same username, different case
	_, err = svc.CreateUser(ctx, CreateUserInput{Username: "ASHA", Password: "x", Role: "student"})
	assert.Equal(t, KindConflict, KindOf(err))

	// same email on a fresh username
	_, err = svc.CreateUser(ctx, CreateUserInput{
		Username: "asha2", Password: "x", Role: "student", Email: "Asha@Campus.edu",
	})
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, "ravi", RoleTeacher)

	u, err := svc.Login(ctx, "ravi", "secret123", "")
	require.NoError(t, err)
	assert.NotNil(t, u.LastLogin)

	// by email, case-insensitive, with matching role
	u, err = svc.Login(ctx, "RAVI@campus.edu", "secret123", "teacher")
	require.NoError(t, err)
	assert.Equal(t, "ravi", u.Username)

	_, err = svc.Login(ctx, "ravi", "wrong", "")
	assert.Equal(t, KindAuth, KindOf(err))

	_, err = svc.Login(ctx, "nobody", "secret123", "")
	assert.Equal(t, KindAuth, KindOf(err))

	_, err = svc.Login(ctx, "ravi", "secret123", "student")
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.Login(ctx, "", "secret123", "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestListUsersRoleFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, "s1", RoleStudent)
	mustUser(t, svc, "s2", RoleStudent)
	mustUser(t, svc, "t1", RoleTeacher)

	all, err := svc.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	students, err := svc.ListUsers(ctx, "student")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "s1", students[0].Username)

	_, err = svc.ListUsers(ctx, "janitor")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateStudent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	u := mustUser(t, svc, "mira", RoleStudent)

	_, err := svc.CreateStudent(ctx, CreateStudentInput{RollNumber: "R1", FaceEmbeddings: "[1]"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateStudent(ctx, CreateStudentInput{
		UserID: FlexString(itoa(u.UserID)), RollNumber: "R1",
	})
	assert.Equal(t, KindValidation, KindOf(err)) // face_embeddings required

	_, err = svc.CreateStudent(ctx, CreateStudentInput{
		UserID: "999", RollNumber: "R1", FaceEmbeddings: "[1]",
	})
	assert.Equal(t, KindNotFound, KindOf(err))

	st, err := svc.CreateStudent(ctx, CreateStudentInput{
		UserID: FlexString(itoa(u.UserID)), RollNumber: "R1", FaceEmbeddings: "[1]",
	})
	require.NoError(t, err)
	assert.Equal(t, "Active", st.EnrollmentStatus)
	require.NotNil(t, st.User)
	assert.Equal(t, u.UserID, st.User.UserID)

	// second profile for the same user
	_, err = svc.CreateStudent(ctx, CreateStudentInput{
		UserID: FlexString(itoa(u.UserID)), RollNumber: "R2", FaceEmbeddings: "[1]",
	})
	assert.Equal(t, KindConflict, KindOf(err))

	// duplicate roll number on another user
	u2 := mustUser(t, svc, "neel", RoleStudent)
	_, err = svc.CreateStudent(ctx, CreateStudentInput{
		UserID: FlexString(itoa(u2.UserID)), RollNumber: "R1", FaceEmbeddings: "[1]",
	})
	assert.Equal(t, KindConflict, KindOf(err))

	// wrong role
	tu := mustUser(t, svc, "prof", RoleTeacher)
	_, err = svc.CreateStudent(ctx, CreateStudentInput{
		UserID: FlexString(itoa(tu.UserID)), RollNumber: "R3", FaceEmbeddings: "[1]",
	})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateTeacher(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	u := mustUser(t, svc, "prof", RoleTeacher)

	tc, err := svc.CreateTeacher(ctx, CreateTeacherInput{
		UserID: FlexString(itoa(u.UserID)), Department: "Physics",
	})
	require.NoError(t, err)
	require.NotNil(t, tc.Department)
	assert.Equal(t, "Physics", *tc.Department)

	_, err = svc.CreateTeacher(ctx, CreateTeacherInput{UserID: FlexString(itoa(u.UserID))})
	assert.Equal(t, KindConflict, KindOf(err))

	su := mustUser(t, svc, "kid", RoleStudent)
	_, err = svc.CreateTeacher(ctx, CreateTeacherInput{UserID: FlexString(itoa(su.UserID))})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestFaceImages(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	st := mustStudent(t, svc, mustUser(t, svc, "mira", RoleStudent))

	_, err := svc.AddFaceImage(ctx, st.StudentID, AddFaceImageInput{})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.AddFaceImage(ctx, 999, AddFaceImageInput{ImagePath: "/img/x.jpg"})
	assert.Equal(t, KindNotFound, KindOf(err))

	img, err := svc.AddFaceImage(ctx, st.StudentID, AddFaceImageInput{ImagePath: "/img/x.jpg", CaptureDevice: "cam-1"})
	require.NoError(t, err)
	assert.NotZero(t, img.ImageID)

	imgs, err := svc.ListFaceImages(ctx, st.StudentID)
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.Equal(t, "/img/x.jpg", imgs[0].ImagePath)

	_, err = svc.ListFaceImages(ctx, 999)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateDepartment(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDepartment(ctx, "  ", "")
	assert.Equal(t, KindValidation, KindOf(err))

	d, err := svc.CreateDepartment(ctx, "Mathematics", "MATH")
	require.NoError(t, err)
	assert.NotZero(t, d.DepartmentID)

	_, err = svc.CreateDepartment(ctx, "Mathematics", "")
	assert.Equal(t, KindConflict, KindOf(err))
}
