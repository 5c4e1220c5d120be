package campus

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const sessionCols = `session_id, lecture_id, camera_id, session_date, start_time, end_time, status, attendance_locked, locked_by, locked_at, created_at, completed_at, notes`

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var s Session
	err := row.Scan(&s.SessionID, &s.LectureID, &s.CameraID, &s.SessionDate, &s.StartTime, &s.EndTime,
		&s.Status, &s.AttendanceLocked, &s.LockedBy, &s.LockedAt, &s.CreatedAt, &s.CompletedAt, &s.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// InsertSession writes a new session and fills in its id.
func (r *Repository) InsertSession(ctx context.Context, s *Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Status == "" {
		s.Status = SessionScheduled
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_sessions (lecture_id, camera_id, session_date, start_time, end_time, status, attendance_locked, created_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING session_id
	`, s.LectureID, s.CameraID, s.SessionDate, s.StartTime, s.EndTime, s.Status, s.AttendanceLocked, s.CreatedAt, s.Notes)
	return row.Scan(&s.SessionID)
}

// GetSession returns a session by id, nil when absent.
func (r *Repository) GetSession(ctx context.Context, id int) (*Session, error) {
	return scanSession(r.db.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM attendance_sessions WHERE session_id = $1`, id))
}

// UpdateSession persists mutable session fields.
func (r *Repository) UpdateSession(ctx context.Context, s *Session) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendance_sessions
		SET camera_id = $1, session_date = $2, start_time = $3, end_time = $4,
		    status = $5, completed_at = $6, notes = $7
		WHERE session_id = $8
	`, s.CameraID, s.SessionDate, s.StartTime, s.EndTime, s.Status, s.CompletedAt, s.Notes, s.SessionID)
	return err
}

// LockSession finalizes a session's attendance.
func (r *Repository) LockSession(ctx context.Context, sessionID, userID int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendance_sessions
		SET attendance_locked = $1, locked_by = $2, locked_at = $3
		WHERE session_id = $4
	`, true, userID, at, sessionID)
	return err
}

// SessionListing is a session with its lecture name for feed views.
type SessionListing struct {
	Session
	LectureName string `json:"lecture_name"`
}

// ListRecentSessions returns sessions ordered by date descending, newest
// first within a day, capped at limit, optionally scoped to a teacher's
// lectures or a single lecture.
func (r *Repository) ListRecentSessions(ctx context.Context, limit int, teacherID, lectureID *int) ([]SessionListing, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT ` + sessionColsS + `, l.lecture_name
		FROM attendance_sessions se
		JOIN lectures l ON l.lecture_id = se.lecture_id`
	args := []any{}
	clauses := []string{}
	if teacherID != nil {
		clauses = append(clauses, "l.teacher_id = $"+itoa(len(args)+1))
		args = append(args, *teacherID)
	}
	if lectureID != nil {
		clauses = append(clauses, "se.lecture_id = $"+itoa(len(args)+1))
		args = append(args, *lectureID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += ` ORDER BY se.session_date DESC, se.session_id DESC LIMIT $` + itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []SessionListing
	for rows.Next() {
		var sl SessionListing
		s := &sl.Session
		if err := rows.Scan(&s.SessionID, &s.LectureID, &s.CameraID, &s.SessionDate, &s.StartTime, &s.EndTime,
			&s.Status, &s.AttendanceLocked, &s.LockedBy, &s.LockedAt, &s.CreatedAt, &s.CompletedAt, &s.Notes,
			&sl.LectureName); err != nil {
			return nil, err
		}
		sessions = append(sessions, sl)
	}
	return sessions, rows.Err()
}

const sessionColsS = `se.session_id, se.lecture_id, se.camera_id, se.session_date, se.start_time, se.end_time, se.status, se.attendance_locked, se.locked_by, se.locked_at, se.created_at, se.completed_at, se.notes`

const attendanceCols = `attendance_id, session_id, user_id, time_in, time_out, status, verification_method, verified_by, confidence_score, manual_override, edited_by, edited_at, created_at, notes`

func scanAttendance(row interface{ Scan(...any) error }) (*AttendanceRecord, error) {
	var a AttendanceRecord
	err := row.Scan(&a.AttendanceID, &a.SessionID, &a.UserID, &a.TimeIn, &a.TimeOut, &a.Status,
		&a.VerificationMethod, &a.VerifiedBy, &a.ConfidenceScore, &a.ManualOverride,
		&a.EditedBy, &a.EditedAt, &a.CreatedAt, &a.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// InsertAttendance writes a new attendance record and fills in its id.
func (r *Repository) InsertAttendance(ctx context.Context, a *AttendanceRecord) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = StatusPresent
	}
	if a.VerificationMethod == "" {
		a.VerificationMethod = VerifyManual
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO student_attendance (session_id, user_id, time_in, time_out, status, verification_method, verified_by, confidence_score, manual_override, created_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING attendance_id
	`, a.SessionID, a.UserID, a.TimeIn, a.TimeOut, a.Status, a.VerificationMethod,
		a.VerifiedBy, a.ConfidenceScore, a.ManualOverride, a.CreatedAt, a.Notes)
	return row.Scan(&a.AttendanceID)
}

// GetAttendance returns an attendance record by id, nil when absent.
func (r *Repository) GetAttendance(ctx context.Context, id int) (*AttendanceRecord, error) {
	return scanAttendance(r.db.QueryRowContext(ctx,
		`SELECT `+attendanceCols+` FROM student_attendance WHERE attendance_id = $1`, id))
}

// GetAttendanceForUserSession returns the record for a (session, user) pair.
func (r *Repository) GetAttendanceForUserSession(ctx context.Context, sessionID, userID int) (*AttendanceRecord, error) {
	return scanAttendance(r.db.QueryRowContext(ctx,
		`SELECT `+attendanceCols+` FROM student_attendance WHERE session_id = $1 AND user_id = $2`,
		sessionID, userID))
}

// UpdateAttendance persists edits to an attendance record.
func (r *Repository) UpdateAttendance(ctx context.Context, a *AttendanceRecord) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE student_attendance
		SET time_in = $1, time_out = $2, status = $3, verification_method = $4,
		    manual_override = $5, edited_by = $6, edited_at = $7, notes = $8
		WHERE attendance_id = $9
	`, a.TimeIn, a.TimeOut, a.Status, a.VerificationMethod,
		a.ManualOverride, a.EditedBy, a.EditedAt, a.Notes, a.AttendanceID)
	return err
}

// ListSessionAttendance returns a session's records with users embedded.
func (r *Repository) ListSessionAttendance(ctx context.Context, sessionID int) ([]AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.attendance_id, a.session_id, a.user_id, a.time_in, a.time_out, a.status,
		       a.verification_method, a.verified_by, a.confidence_score, a.manual_override,
		       a.edited_by, a.edited_at, a.created_at, a.notes,
		       `+userColsU+`
		FROM student_attendance a
		JOIN users u ON u.user_id = a.user_id
		WHERE a.session_id = $1
		ORDER BY a.attendance_id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []AttendanceRecord
	for rows.Next() {
		var a AttendanceRecord
		var u User
		if err := rows.Scan(&a.AttendanceID, &a.SessionID, &a.UserID, &a.TimeIn, &a.TimeOut, &a.Status,
			&a.VerificationMethod, &a.VerifiedBy, &a.ConfidenceScore, &a.ManualOverride,
			&a.EditedBy, &a.EditedAt, &a.CreatedAt, &a.Notes,
			&u.UserID, &u.Username, &u.PasswordHash, &u.Role, &u.FullName,
			&u.Email, &u.Phone, &u.ProfilePicture, &u.IsActive, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		a.User = &u
		records = append(records, a)
	}
	return records, rows.Err()
}

// AttendanceHistoryRow is one record joined with its session and lecture,
// for a student's personal history.
type AttendanceHistoryRow struct {
	AttendanceRecord
	SessionDate string `json:"session_date"`
	LectureID   int    `json:"lecture_id"`
	LectureName string `json:"lecture_name"`
}

// ListUserAttendanceHistory returns a user's records newest-session first,
// capped at limit; the attendance-with-session-and-lecture three-way join.
func (r *Repository) ListUserAttendanceHistory(ctx context.Context, userID, limit int) ([]AttendanceHistoryRow, error) {
	if limit <= 0 {
		limit = 60
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.attendance_id, a.session_id, a.user_id, a.time_in, a.time_out, a.status,
		       a.verification_method, a.verified_by, a.confidence_score, a.manual_override,
		       a.edited_by, a.edited_at, a.created_at, a.notes,
		       se.session_date, l.lecture_id, l.lecture_name
		FROM student_attendance a
		JOIN attendance_sessions se ON se.session_id = a.session_id
		JOIN lectures l ON l.lecture_id = se.lecture_id
		WHERE a.user_id = $1
		ORDER BY se.session_date DESC, a.attendance_id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []AttendanceHistoryRow
	for rows.Next() {
		var h AttendanceHistoryRow
		a := &h.AttendanceRecord
		if err := rows.Scan(&a.AttendanceID, &a.SessionID, &a.UserID, &a.TimeIn, &a.TimeOut, &a.Status,
			&a.VerificationMethod, &a.VerifiedBy, &a.ConfidenceScore, &a.ManualOverride,
			&a.EditedBy, &a.EditedAt, &a.CreatedAt, &a.Notes,
			&h.SessionDate, &h.LectureID, &h.LectureName); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
