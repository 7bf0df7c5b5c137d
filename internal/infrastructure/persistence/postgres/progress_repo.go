package postgres

import (
	"context"
	"fmt"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements course.StudentProgressRepository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// FindTaskResults returns the scored results of a student.
func (r *ProgressRepository) FindTaskResults(ctx context.Context, studentID int64) ([]course.TaskResult, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, student_id, course_task_id, score
		FROM task_results
		WHERE student_id = $1
		ORDER BY id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task results: %w", err)
	}
	defer rows.Close()

	results := make([]course.TaskResult, 0)
	for rows.Next() {
		var tr course.TaskResult
		if err := rows.Scan(&tr.ID, &tr.StudentID, &tr.CourseTaskID, &tr.Score); err != nil {
			return nil, fmt.Errorf("failed to scan task result: %w", err)
		}
		results = append(results, tr)
	}
	return results, rows.Err()
}

// FindInterviewResults returns interview results in insertion order.
func (r *ProgressRepository) FindInterviewResults(ctx context.Context, studentID int64) ([]course.TaskInterviewResult, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, student_id, course_task_id, score
		FROM task_interview_results
		WHERE student_id = $1
		ORDER BY id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interview results: %w", err)
	}
	defer rows.Close()

	results := make([]course.TaskInterviewResult, 0)
	for rows.Next() {
		var ir course.TaskInterviewResult
		if err := rows.Scan(&ir.ID, &ir.StudentID, &ir.CourseTaskID, &ir.Score); err != nil {
			return nil, fmt.Errorf("failed to scan interview result: %w", err)
		}
		results = append(results, ir)
	}
	return results, rows.Err()
}

// FindCompletedStageInterviews returns completed stage interviews with
// their feedbacks. One row per feedback is folded into the parent interview.
func (r *ProgressRepository) FindCompletedStageInterviews(ctx context.Context, studentID int64) ([]course.StageInterview, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT si.id, si.student_id, si.course_task_id, si.is_completed,
			   f.id, f.json
		FROM stage_interviews si
		LEFT JOIN stage_interview_feedbacks f ON f.stage_interview_id = si.id
		WHERE si.student_id = $1 AND si.is_completed = TRUE
		ORDER BY si.id, f.id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage interviews: %w", err)
	}
	defer rows.Close()

	interviews := make([]course.StageInterview, 0)
	for rows.Next() {
		var (
			si         course.StageInterview
			feedbackID *int64
			body       *string
		)
		if err := rows.Scan(&si.ID, &si.StudentID, &si.CourseTaskID, &si.IsCompleted, &feedbackID, &body); err != nil {
			return nil, fmt.Errorf("failed to scan stage interview: %w", err)
		}

		if n := len(interviews); n == 0 || interviews[n-1].ID != si.ID {
			si.Feedbacks = make([]course.StageInterviewFeedback, 0)
			interviews = append(interviews, si)
		}
		if feedbackID != nil {
			last := &interviews[len(interviews)-1]
			fb := course.StageInterviewFeedback{ID: *feedbackID, StageInterviewID: si.ID}
			if body != nil {
				fb.JSON = *body
			}
			last.Feedbacks = append(last.Feedbacks, fb)
		}
	}
	return interviews, rows.Err()
}

// FindTaskSolutions returns submitted solutions of a student.
func (r *ProgressRepository) FindTaskSolutions(ctx context.Context, studentID int64) ([]course.TaskSolution, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, student_id, course_task_id, url
		FROM task_solutions
		WHERE student_id = $1
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task solutions: %w", err)
	}
	defer rows.Close()

	solutions := make([]course.TaskSolution, 0)
	for rows.Next() {
		var s course.TaskSolution
		if err := rows.Scan(&s.ID, &s.StudentID, &s.CourseTaskID, &s.URL); err != nil {
			return nil, fmt.Errorf("failed to scan task solution: %w", err)
		}
		solutions = append(solutions, s)
	}
	return solutions, rows.Err()
}

// FindTaskCheckers returns checker assignments for a student's solutions.
func (r *ProgressRepository) FindTaskCheckers(ctx context.Context, studentID int64) ([]course.TaskChecker, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, student_id, course_task_id, mentor_id
		FROM task_checkers
		WHERE student_id = $1
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task checkers: %w", err)
	}
	defer rows.Close()

	checkers := make([]course.TaskChecker, 0)
	for rows.Next() {
		var c course.TaskChecker
		if err := rows.Scan(&c.ID, &c.StudentID, &c.CourseTaskID, &c.MentorID); err != nil {
			return nil, fmt.Errorf("failed to scan task checker: %w", err)
		}
		checkers = append(checkers, c)
	}
	return checkers, rows.Err()
}

var _ course.StudentProgressRepository = (*ProgressRepository)(nil)
