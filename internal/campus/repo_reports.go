package campus

import (
	"context"
	"fmt"
)

// StatusCounts aggregates attendance outcomes. Counting is case-insensitive
// and the total covers non-empty statuses only.
type StatusCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Unknown int `json:"unknown"`
	Total   int `json:"total"`
}

// Percentage is present over total, 0 when there is nothing to count.
func (c StatusCounts) Percentage() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Present) / float64(c.Total) * 100
}

const statusCountExprs = `
	COALESCE(SUM(CASE WHEN LOWER(a.status) = 'present' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN LOWER(a.status) = 'absent' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN LOWER(a.status) = 'late' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN LOWER(a.status) = 'unknown' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN a.status IS NOT NULL AND a.status <> '' THEN 1 ELSE 0 END), 0)`

// CountUserAttendance aggregates one user's records across all sessions.
func (r *Repository) CountUserAttendance(ctx context.Context, userID int) (StatusCounts, error) {
	var c StatusCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT `+statusCountExprs+`
		FROM student_attendance a WHERE a.user_id = $1
	`, userID).Scan(&c.Present, &c.Absent, &c.Late, &c.Unknown, &c.Total)
	return c, err
}

// CountLectureAttendance aggregates every record of a lecture's sessions.
func (r *Repository) CountLectureAttendance(ctx context.Context, lectureID int) (StatusCounts, error) {
	var c StatusCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT `+statusCountExprs+`
		FROM student_attendance a
		JOIN attendance_sessions se ON se.session_id = a.session_id
		WHERE se.lecture_id = $1
	`, lectureID).Scan(&c.Present, &c.Absent, &c.Late, &c.Unknown, &c.Total)
	return c, err
}

// CountAttendance aggregates records, optionally scoped to a teacher's
// lectures or a single lecture, for the reports endpoint.
func (r *Repository) CountAttendance(ctx context.Context, teacherID, lectureID *int) (StatusCounts, error) {
	query := `
		SELECT ` + statusCountExprs + `
		FROM student_attendance a
		JOIN attendance_sessions se ON se.session_id = a.session_id
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
	var c StatusCounts
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.Present, &c.Absent, &c.Late, &c.Unknown, &c.Total)
	return c, err
}

// ClassBreakdown is the per-lecture aggregate for the reports endpoint.
type ClassBreakdown struct {
	LectureID   int     `json:"lecture_id"`
	LectureName string  `json:"lecture_name"`
	Present     int     `json:"present"`
	Absent      int     `json:"absent"`
	Late        int     `json:"late"`
	Unknown     int     `json:"unknown"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
}

// ListClassBreakdown groups records by lecture, busiest lecture first.
func (r *Repository) ListClassBreakdown(ctx context.Context, teacherID *int) ([]ClassBreakdown, error) {
	query := `
		SELECT l.lecture_id, l.lecture_name, ` + statusCountExprs + `
		FROM student_attendance a
		JOIN attendance_sessions se ON se.session_id = a.session_id
		JOIN lectures l ON l.lecture_id = se.lecture_id`
	args := []any{}
	if teacherID != nil {
		query += ` WHERE l.teacher_id = $1`
		args = append(args, *teacherID)
	}
	query += `
		GROUP BY l.lecture_id, l.lecture_name
		ORDER BY COALESCE(SUM(CASE WHEN a.status IS NOT NULL AND a.status <> '' THEN 1 ELSE 0 END), 0) DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var breakdown []ClassBreakdown
	for rows.Next() {
		var b ClassBreakdown
		if err := rows.Scan(&b.LectureID, &b.LectureName, &b.Present, &b.Absent, &b.Late, &b.Unknown, &b.Total); err != nil {
			return nil, err
		}
		b.Percentage = StatusCounts{Present: b.Present, Total: b.Total}.Percentage()
		breakdown = append(breakdown, b)
	}
	return breakdown, rows.Err()
}

// LectureSummaryRow is one lecture with its teacher, enrolled student count
// and assigned camera for the summary endpoint.
type LectureSummaryRow struct {
	Lecture       Lecture `json:"lecture"`
	TeacherName   *string `json:"teacher_name"`
	EnrolledCount int     `json:"enrolled_count"`
	Camera        *Camera `json:"camera"`
}

// ListLectureSummaries joins each lecture with its teacher's name, its
// non-teacher enrollment count and its first assigned camera.
func (r *Repository) ListLectureSummaries(ctx context.Context, teacherID *int) ([]LectureSummaryRow, error) {
	query := `
		SELECT ` + lectureColsL + `, u.full_name,
		       (SELECT COUNT(*) FROM user_lectures ul
		        WHERE ul.lecture_id = l.lecture_id AND ul.is_teacher = $1)
		FROM lectures l
		LEFT JOIN teachers t ON t.teacher_id = l.teacher_id
		LEFT JOIN users u ON u.user_id = t.user_id`
	args := []any{false}
	if teacherID != nil {
		query += ` WHERE l.teacher_id = $2`
		args = append(args, *teacherID)
	}
	query += ` ORDER BY l.lecture_id ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var summaries []LectureSummaryRow
	for rows.Next() {
		var row LectureSummaryRow
		l := &row.Lecture
		if err := rows.Scan(&l.LectureID, &l.LectureName, &l.CourseCode, &l.Department, &l.IsActive,
			&l.TeacherID, &l.Semester, &l.Year, &l.Schedule, &l.RoomNumber, &l.Capacity, &l.Credits, &l.CreatedAt,
			&row.TeacherName, &row.EnrolledCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Attach the first camera currently pointed at each lecture.
	cameras, err := r.ListCameras(ctx)
	if err != nil {
		return nil, err
	}
	byLecture := make(map[int]*Camera)
	for i := range cameras {
		c := cameras[i]
		if c.LectureID != nil {
			if _, ok := byLecture[*c.LectureID]; !ok {
				byLecture[*c.LectureID] = &cameras[i]
			}
		}
	}
	for i := range summaries {
		summaries[i].Camera = byLecture[summaries[i].Lecture.LectureID]
	}
	return summaries, nil
}

// Overview is the system-wide totals block for the admin dashboard.
type Overview struct {
	TotalUsers    int `json:"total_users"`
	TotalStudents int `json:"total_students"`
	TotalTeachers int `json:"total_teachers"`
	TotalLectures int `json:"total_lectures"`
	TotalCameras  int `json:"total_cameras"`
	TotalSessions int `json:"total_sessions"`
}

// CountOverview gathers entity totals.
func (r *Repository) CountOverview(ctx context.Context) (Overview, error) {
	var o Overview
	tables := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM users`, &o.TotalUsers},
		{`SELECT COUNT(*) FROM students`, &o.TotalStudents},
		{`SELECT COUNT(*) FROM teachers`, &o.TotalTeachers},
		{`SELECT COUNT(*) FROM lectures`, &o.TotalLectures},
		{`SELECT COUNT(*) FROM cameras`, &o.TotalCameras},
		{`SELECT COUNT(*) FROM attendance_sessions`, &o.TotalSessions},
	}
	for _, t := range tables {
		if err := r.db.QueryRowContext(ctx, t.query).Scan(t.dest); err != nil {
			return Overview{}, err
		}
	}
	return o, nil
}

// CountTeacherClasses returns how many lectures are assigned to a teacher.
func (r *Repository) CountTeacherClasses(ctx context.Context, teacherID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lectures WHERE teacher_id = $1`, teacherID).Scan(&n)
	return n, err
}

// CountTeacherStudents returns the distinct students enrolled across a
// teacher's lectures.
func (r *Repository) CountTeacherStudents(ctx context.Context, teacherID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT ul.user_id)
		FROM user_lectures ul
		JOIN lectures l ON l.lecture_id = ul.lecture_id
		WHERE l.teacher_id = $1 AND ul.is_teacher = $2
	`, teacherID, false).Scan(&n)
	return n, err
}

// CountUnassignedLectures returns how many lectures have no teacher.
func (r *Repository) CountUnassignedLectures(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lectures WHERE teacher_id IS NULL`).Scan(&n)
	return n, err
}

// CountLectureSessions returns how many sessions a lecture has held.
func (r *Repository) CountLectureSessions(ctx context.Context, lectureID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_sessions WHERE lecture_id = $1`, lectureID).Scan(&n)
	return n, err
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
