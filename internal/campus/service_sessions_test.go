package campus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := mustLecture(t, svc, "Physics")

	_, err := svc.CreateSession(ctx, CreateSessionInput{SessionDate: "2026-09-01"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateSession(ctx, CreateSessionInput{LectureID: FlexString(itoa(l.LectureID))})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateSession(ctx, CreateSessionInput{
		LectureID: FlexString(itoa(l.LectureID)), SessionDate: "01/09/2026",
	})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateSession(ctx, CreateSessionInput{LectureID: "999", SessionDate: "2026-09-01"})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.CreateSession(ctx, CreateSessionInput{
		LectureID: FlexString(itoa(l.LectureID)), SessionDate: "2026-09-01", CameraID: "999",
	})
	assert.Equal(t, KindNotFound, KindOf(err))

	sess, err := svc.CreateSession(ctx, CreateSessionInput{
		LectureID: FlexString(itoa(l.LectureID)), SessionDate: "2026-09-01", StartTime: "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, SessionScheduled, sess.Status)
	assert.False(t, sess.AttendanceLocked)
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := mustLecture(t, svc, "Physics")
	sess := mustSession(t, svc, l.LectureID, "2026-09-01")

	// skipping a step is rejected
	completed := SessionCompleted
	_, err := svc.UpdateSession(ctx, sess.SessionID, UpdateSessionInput{Status: &completed})
	assert.Equal(t, KindValidation, KindOf(err))

	inProgress := SessionInProgress
	got, err := svc.UpdateSession(ctx, sess.SessionID, UpdateSessionInput{Status: &inProgress})
	require.NoError(t, err)
	assert.Equal(t, SessionInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)

	// no going back
	scheduled := SessionScheduled
	_, err = svc.UpdateSession(ctx, sess.SessionID, UpdateSessionInput{Status: &scheduled})
	assert.Equal(t, KindValidation, KindOf(err))

	got, err = svc.UpdateSession(ctx, sess.SessionID, UpdateSessionInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	// setting the current status is a no-op, not an error
	got, err = svc.UpdateSession(ctx, sess.SessionID, UpdateSessionInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, got.Status)
}

func TestLockSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := mustLecture(t, svc, "Physics")
	sess := mustSession(t, svc, l.LectureID, "2026-09-01")
	admin := mustUser(t, svc, "admin", RoleAdmin)

	_, err := svc.LockSession(ctx, 999, admin.UserID)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.LockSession(ctx, sess.SessionID, 999)
	assert.Equal(t, KindNotFound, KindOf(err))

	got, err := svc.LockSession(ctx, sess.SessionID, admin.UserID)
	require.NoError(t, err)
	assert.True(t, got.AttendanceLocked)
	require.NotNil(t, got.LockedBy)
	assert.Equal(t, admin.UserID, *got.LockedBy)
	assert.NotNil(t, got.LockedAt)

	// locking twice
	_, err = svc.LockSession(ctx, sess.SessionID, admin.UserID)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRecordAttendance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := mustLecture(t, svc, "Physics")
	sess := mustSession(t, svc, l.LectureID, "2026-09-01")
	u := mustUser(t, svc, "mira", RoleStudent)

	_, err := svc.RecordAttendance(ctx, sess.SessionID, RecordAttendanceInput{})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.RecordAttendance(ctx, 999, RecordAttendanceInput{UserID: FlexString(itoa(u.UserID))})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.RecordAttendance(ctx, sess.SessionID, RecordAttendanceInput{UserID: "999"})
	assert.Equal(t, KindNotFound, KindOf(err))

	rec, err := svc.RecordAttendance(ctx, sess.SessionID, RecordAttendanceInput{
		UserID: FlexString(itoa(u.UserID)),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, rec.Status) // defaults
	assert.Equal(t, VerifyManual, rec.VerificationMethod)
	assert.NotNil(t, rec.TimeIn)

	// one record per (session, user)
	_, err = svc.RecordAttendance(ctx, sess.SessionID, RecordAttendanceInput{
		UserID: FlexString(itoa(u.UserID)), Status: "Absent",
	})
	assert.Equal(t, KindConflict, KindOf(err))

	// absent records carry no time_in
	u2 := mustUser(t, svc, "neel", RoleStudent)
	rec2, err := svc.RecordAttendance(ctx, sess.SessionID, RecordAttendanceInput{
		UserID: FlexString(itoa(u2.UserID)), Status: "ABSENT",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, rec2.Status)
	assert.Nil(t, rec2.TimeIn)
}

func TestLockedSessionRejectsWrites(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := mustLecture(t, svc, "Physics")
	sess := mustSession(t, svc, l.LectureID, "2026-09-01")
	admin := mustUser(t, svc, "admin", RoleAdmin)
	u := mustUser(t, svc, "mira", RoleStudent)

	rec, err := svc.RecordAttendance(ctx, sess.SessionID, RecordAttendanceInput{
		UserID: FlexString(itoa(u.UserID)),
	})
	require.NoError(t, err)

	_, err = svc.LockSession(ctx, sess.SessionID, admin.UserID)
	require.NoError(t, err)

	u2 := mustUser(t, svc, "neel", RoleStudent)
	_, err = svc.RecordAttendance(ctx, sess.SessionID, RecordAttendanceInput{
		UserID: FlexString(itoa(u2.UserID)),
	})
	assert.Equal(t, KindConflict, KindOf(err))

	late := "Late"
	_, err = svc.EditAttendance(ctx, rec.AttendanceID, EditAttendanceInput{Status: &late})
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestEditAttendance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := mustLecture(t, svc, "Physics")
	sess := mustSession(t, svc, l.LectureID, "2026-09-01")
	u := mustUser(t, svc, "mira", RoleStudent)
	admin := mustUser(t, svc, "admin", RoleAdmin)

	rec, err := svc.RecordAttendance(ctx, sess.SessionID, RecordAttendanceInput{
		UserID: FlexString(itoa(u.UserID)),
	})
	require.NoError(t, err)
	assert.False(t, rec.ManualOverride)

	_, err = svc.EditAttendance(ctx, 999, EditAttendanceInput{})
	assert.Equal(t, KindNotFound, KindOf(err))

	late := "late"
	got, err := svc.EditAttendance(ctx, rec.AttendanceID, EditAttendanceInput{
		Status:   &late,
		EditedBy: FlexString(itoa(admin.UserID)),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusLate, got.Status)
	assert.True(t, got.ManualOverride)
	require.NotNil(t, got.EditedBy)
	assert.Equal(t, admin.UserID, *got.EditedBy)
	assert.NotNil(t, got.EditedAt)
}

func TestListSessionAttendance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := mustLecture(t, svc, "Physics")
	sess := mustSession(t, svc, l.LectureID, "2026-09-01")
	u1 := mustUser(t, svc, "mira", RoleStudent)
	u2 := mustUser(t, svc, "neel", RoleStudent)

	for _, u := range []*User{u1, u2} {
		_, err := svc.RecordAttendance(ctx, sess.SessionID, RecordAttendanceInput{
			UserID: FlexString(itoa(u.UserID)),
		})
		require.NoError(t, err)
	}

	records, err := svc.ListSessionAttendance(ctx, sess.SessionID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].User)
	assert.Equal(t, "mira", records[0].User.Username)

	_, err = svc.ListSessionAttendance(ctx, 999)
	assert.Equal(t, KindNotFound, KindOf(err))
}
