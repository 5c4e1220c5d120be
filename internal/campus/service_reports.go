package campus

import (
	"context"
	"fmt"
)

const (
	reportSessionLimit    = 10
	historyLimit          = 60
	notificationFeedLimit = 5
)

// StudentDashboard is the personal view for one student user.
type StudentDashboard struct {
	Student       *Student               `json:"student"`
	Enrollments   []Enrollment           `json:"enrollments"`
	Attendance    AttendanceSummary      `json:"attendance"`
	RecentRecords []AttendanceHistoryRow `json:"recent_records"`
}

// AttendanceSummary is status counts plus the derived percentage.
type AttendanceSummary struct {
	StatusCounts
	Percentage float64 `json:"percentage"`
}

func summarize(c StatusCounts) AttendanceSummary {
	return AttendanceSummary{StatusCounts: c, Percentage: c.Percentage()}
}

// GetStudentDashboard aggregates a student's profile, enrollments and
// attendance standing.
func (s *Service) GetStudentDashboard(ctx context.Context, userID int) (*StudentDashboard, error) {
	st, err := s.repo.GetStudentByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, notFound("Student not found")
	}
	enrollments, err := s.repo.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountUserAttendance(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListUserAttendanceHistory(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	return &StudentDashboard{
		Student:       st,
		Enrollments:   enrollments,
		Attendance:    summarize(counts),
		RecentRecords: recent,
	}, nil
}

// TeacherStats is the classes/students block for one teacher user.
type TeacherStats struct {
	Teacher  *Teacher `json:"teacher"`
	Classes  int      `json:"classes"`
	Students int      `json:"students"`
}

// GetTeacherStats resolves a teacher by user id and counts their classes
// and distinct students.
func (s *Service) GetTeacherStats(ctx context.Context, userID int) (*TeacherStats, error) {
	t, err := s.repo.GetTeacherByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound("Teacher not found")
	}
	classes, err := s.repo.CountTeacherClasses(ctx, t.TeacherID)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.CountTeacherStudents(ctx, t.TeacherID)
	if err != nil {
		return nil, err
	}
	return &TeacherStats{Teacher: t, Classes: classes, Students: students}, nil
}

// OverviewStats is the admin landing-page totals block.
type OverviewStats struct {
	Overview
	OverallAttendance float64 `json:"overall_attendance"`
}

// GetOverviewStats gathers entity totals and the overall attendance rate.
func (s *Service) GetOverviewStats(ctx context.Context) (*OverviewStats, error) {
	o, err := s.repo.CountOverview(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountAttendance(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return &OverviewStats{Overview: o, OverallAttendance: counts.Percentage()}, nil
}

// AttendanceReport is the reports endpoint payload.
type AttendanceReport struct {
	Average        float64          `json:"average"`
	Status         StatusCounts     `json:"status"`
	Classes        []ClassBreakdown `json:"classes"`
	RecentSessions []SessionListing `json:"recent_sessions"`
}

// GetAttendanceReport aggregates attendance, optionally scoped to a
// teacher (by owning user id) or a single lecture.
func (s *Service) GetAttendanceReport(ctx context.Context, teacherUserID, lectureID *int) (*AttendanceReport, error) {
	var teacherID *int
	if teacherUserID != nil {
		t, err := s.repo.GetTeacherByUserID(ctx, *teacherUserID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, notFound("Teacher not found")
		}
		teacherID = &t.TeacherID
	}
	if lectureID != nil {
		l, err := s.repo.GetLecture(ctx, *lectureID)
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, notFound("Lecture not found")
		}
	}
	counts, err := s.repo.CountAttendance(ctx, teacherID, lectureID)
	if err != nil {
		return nil, err
	}
	classes, err := s.repo.ListClassBreakdown(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListRecentSessions(ctx, reportSessionLimit, teacherID, lectureID)
	if err != nil {
		return nil, err
	}
	return &AttendanceReport{
		Average:        counts.Percentage(),
		Status:         counts,
		Classes:        classes,
		RecentSessions: recent,
	}, nil
}

// LectureAttendanceSummary is the per-lecture counts endpoint payload.
type LectureAttendanceSummary struct {
	LectureID  int     `json:"lecture_id"`
	Sessions   int     `json:"sessions"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	Unknown    int     `json:"unknown"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// GetLectureAttendanceSummary counts outcomes across a lecture's sessions.
func (s *Service) GetLectureAttendanceSummary(ctx context.Context, lectureID int) (*LectureAttendanceSummary, error) {
	l, err := s.repo.GetLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, notFound("Lecture not found")
	}
	sessions, err := s.repo.CountLectureSessions(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountLectureAttendance(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	return &LectureAttendanceSummary{
		LectureID:  lectureID,
		Sessions:   sessions,
		Present:    counts.Present,
		Absent:     counts.Absent,
		Late:       counts.Late,
		Unknown:    counts.Unknown,
		Total:      counts.Total,
		Percentage: counts.Percentage(),
	}, nil
}

// ListLectureSummaries returns each lecture with teacher name, enrollment
// count and camera; scoped to one teacher when requested (by teacher id or
// owning user id).
func (s *Service) ListLectureSummaries(ctx context.Context, teacherID, teacherUserID *int) ([]LectureSummaryRow, error) {
	if teacherUserID != nil {
		t, err := s.repo.GetTeacherByUserID(ctx, *teacherUserID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, notFound("Teacher not found")
		}
		teacherID = &t.TeacherID
	} else if teacherID != nil {
		t, err := s.repo.GetTeacher(ctx, *teacherID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, notFound("Teacher not found")
		}
	}
	return s.repo.ListLectureSummaries(ctx, teacherID)
}

// Notification is one synthesized feed item. The feed is a read-only view,
// not a stored entity.
type Notification struct {
	ID        string  `json:"id"`
	Category  string  `json:"category"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Severity  string  `json:"severity"`
	Timestamp *string `json:"timestamp"`
}

// ListNotifications synthesizes feed items from offline cameras, lectures
// with no teacher, and the most recent sessions. Ordering is the
// concatenation order of those three scans, not a timestamp sort.
func (s *Service) ListNotifications(ctx context.Context) ([]Notification, error) {
	var feed []Notification

	cameras, err := s.repo.ListOfflineCameras(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cameras {
		var ts *string
		if c.LastChecked != nil {
			v := c.LastChecked.Format("2006-01-02T15:04:05Z07:00")
			ts = &v
		}
		feed = append(feed, Notification{
			ID:        fmt.Sprintf("camera-%d", c.CameraID),
			Category:  "camera",
			Title:     "Camera offline",
			Message:   fmt.Sprintf("Camera %q is offline", c.CameraName),
			Severity:  "warning",
			Timestamp: ts,
		})
	}

	unassigned, err := s.repo.CountUnassignedLectures(ctx)
	if err != nil {
		return nil, err
	}
	if unassigned > 0 {
		feed = append(feed, Notification{
			ID:       "lectures-unassigned",
			Category: "lecture",
			Title:    "Lectures without a teacher",
			Message:  fmt.Sprintf("%d lecture(s) have no assigned teacher", unassigned),
			Severity: "info",
		})
	}

	sessions, err := s.repo.ListRecentSessions(ctx, notificationFeedLimit, nil, nil)
	if err != nil {
		return nil, err
	}
	for _, sl := range sessions {
		ts := sl.SessionDate
		feed = append(feed, Notification{
			ID:        fmt.Sprintf("session-%d", sl.SessionID),
			Category:  "session",
			Title:     "Attendance session",
			Message:   fmt.Sprintf("%s session on %s (%s)", sl.LectureName, sl.SessionDate, sl.Status),
			Severity:  "info",
			Timestamp: &ts,
		})
	}
	return feed, nil
}
