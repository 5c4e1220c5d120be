package campus

import (
	"context"
	"strings"
	"time"
)

// CreateSessionInput carries the create-session request body.
type CreateSessionInput struct {
	LectureID   FlexString `json:"lecture_id"`
	CameraID    FlexString `json:"camera_id"`
	SessionDate string     `json:"session_date"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Notes       string     `json:"notes"`
}

// CreateSession schedules a meeting instance of a lecture.
func (s *Service) CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error) {
	lectureID := in.LectureID.Int()
	if lectureID == nil {
		return nil, invalid("lecture_id is required")
	}
	date := strings.TrimSpace(in.SessionDate)
	if date == "" {
		return nil, invalid("session_date is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, invalid("session_date must be YYYY-MM-DD")
	}
	l, err := s.repo.GetLecture(ctx, *lectureID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, notFound("Lecture not found")
	}
	sess := &Session{LectureID: *lectureID, SessionDate: date, Status: SessionScheduled}
	if cameraID := in.CameraID.Int(); cameraID != nil {
		c, err := s.repo.GetCamera(ctx, *cameraID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, notFound("Camera not found")
		}
		sess.CameraID = cameraID
	}
	if t := strings.TrimSpace(in.StartTime); t != "" {
		sess.StartTime = &t
	}
	if t := strings.TrimSpace(in.EndTime); t != "" {
		sess.EndTime = &t
	}
	if n := strings.TrimSpace(in.Notes); n != "" {
		sess.Notes = &n
	}
	if err := s.repo.InsertSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession returns one session.
func (s *Service) GetSession(ctx context.Context, id int) (*Session, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, notFound("Session not found")
	}
	return sess, nil
}

// validTransitions is the session lifecycle: Scheduled → InProgress → Completed.
var validTransitions = map[string]string{
	SessionScheduled:  SessionInProgress,
	SessionInProgress: SessionCompleted,
}

// UpdateSessionInput carries the session patch body; nil fields stay untouched.
type UpdateSessionInput struct {
	Status    *string `json:"status"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Notes     *string `json:"notes"`
}

// UpdateSession applies a partial update. Status moves one step forward
// only; reaching Completed stamps the completion time.
func (s *Service) UpdateSession(ctx context.Context, id int, in UpdateSessionInput) (*Session, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, notFound("Session not found")
	}
	if in.Status != nil {
		next := strings.TrimSpace(*in.Status)
		if next != sess.Status {
			if validTransitions[sess.Status] != next {
				return nil, invalid("Invalid status transition from " + sess.Status + " to " + next)
			}
			sess.Status = next
			if next == SessionCompleted {
				now := time.Now().UTC()
				sess.CompletedAt = &now
			}
		}
	}
	if in.StartTime != nil {
		sess.StartTime = in.StartTime
	}
	if in.EndTime != nil {
		sess.EndTime = in.EndTime
	}
	if in.Notes != nil {
		sess.Notes = in.Notes
	}
	if err := s.repo.UpdateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// LockSession finalizes a session's attendance. Once locked, attendance
// edits are rejected; the lock never lifts.
func (s *Service) LockSession(ctx context.Context, sessionID, userID int) (*Session, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, notFound("Session not found")
	}
	if sess.AttendanceLocked {
		return nil, conflict("Session attendance is already locked")
	}
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("User not found")
	}
	now := time.Now().UTC()
	if err := s.repo.LockSession(ctx, sessionID, userID, now); err != nil {
		return nil, err
	}
	sess.AttendanceLocked = true
	sess.LockedBy = &userID
	sess.LockedAt = &now
	return sess, nil
}

// RecordAttendanceInput carries the record-attendance request body.
type RecordAttendanceInput struct {
	UserID             FlexString `json:"user_id"`
	Status             string     `json:"status"`
	VerificationMethod string     `json:"verification_method"`
	VerifiedBy         FlexString `json:"verified_by"`
	ConfidenceScore    *float64   `json:"confidence_score"`
	Notes              string     `json:"notes"`
}

// RecordAttendance writes one attendance outcome for one user within one
// session. A locked session rejects the write.
func (s *Service) RecordAttendance(ctx context.Context, sessionID int, in RecordAttendanceInput) (*AttendanceRecord, error) {
	userID := in.UserID.Int()
	if userID == nil {
		return nil, invalid("user_id is required")
	}
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, notFound("Session not found")
	}
	if sess.AttendanceLocked {
		return nil, conflict("Session attendance is locked")
	}
	u, err := s.repo.GetUser(ctx, *userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("User not found")
	}
	if existing, err := s.repo.GetAttendanceForUserSession(ctx, sessionID, *userID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, conflict("Attendance already recorded for this user in this session")
	}
	rec := &AttendanceRecord{
		SessionID:          sessionID,
		UserID:             *userID,
		Status:             CanonicalStatus(in.Status),
		VerificationMethod: strings.TrimSpace(in.VerificationMethod),
		VerifiedBy:         in.VerifiedBy.Int(),
		ConfidenceScore:    in.ConfidenceScore,
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	if rec.VerificationMethod == "" {
		rec.VerificationMethod = VerifyManual
	}
	lowered := strings.ToLower(rec.Status)
	if lowered == "present" || lowered == "late" {
		now := time.Now().UTC()
		rec.TimeIn = &now
	}
	if n := strings.TrimSpace(in.Notes); n != "" {
		rec.Notes = &n
	}
	if err := s.repo.InsertAttendance(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// EditAttendanceInput carries the attendance patch body; nil fields stay
// untouched.
type EditAttendanceInput struct {
	Status   *string    `json:"status"`
	TimeOut  *time.Time `json:"time_out"`
	Notes    *string    `json:"notes"`
	EditedBy FlexString `json:"edited_by"`
}

// EditAttendance applies a manual correction to a record. The owning
// session's lock closes all edits.
func (s *Service) EditAttendance(ctx context.Context, attendanceID int, in EditAttendanceInput) (*AttendanceRecord, error) {
	rec, err := s.repo.GetAttendance(ctx, attendanceID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound("Attendance record not found")
	}
	sess, err := s.repo.GetSession(ctx, rec.SessionID)
	if err != nil {
		return nil, err
	}
	if sess != nil && sess.AttendanceLocked {
		return nil, conflict("Session attendance is locked")
	}
	if in.Status != nil {
		rec.Status = CanonicalStatus(*in.Status)
	}
	if in.TimeOut != nil {
		rec.TimeOut = in.TimeOut
	}
	if in.Notes != nil {
		rec.Notes = in.Notes
	}
	rec.ManualOverride = true
	rec.EditedBy = in.EditedBy.Int()
	now := time.Now().UTC()
	rec.EditedAt = &now
	if err := s.repo.UpdateAttendance(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListSessionAttendance returns a session's records with users embedded.
func (s *Service) ListSessionAttendance(ctx context.Context, sessionID int) ([]AttendanceRecord, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, notFound("Session not found")
	}
	return s.repo.ListSessionAttendance(ctx, sessionID)
}
