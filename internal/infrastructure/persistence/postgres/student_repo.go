package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// StudentRepository implements course.StudentRepository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

const studentSelect = `
	SELECT s.id, s.course_id, s.user_id, s.is_expelled, s.is_failed,
		   u.id, u.first_name, u.last_name, u.github_id,
		   c.id, c.name, c.alias, c.primary_skill_name, c.start_date, c.end_date
	FROM students s
	JOIN users u ON u.id = s.user_id
	JOIN courses c ON c.id = s.course_id
`

// FindByIDs returns the students with the given IDs. Unknown IDs are skipped.
func (r *StudentRepository) FindByIDs(ctx context.Context, ids []int64) ([]course.Student, error) {
	if len(ids) == 0 {
		return []course.Student{}, nil
	}
	return r.query(ctx, studentSelect+` WHERE s.id = ANY($1) ORDER BY s.id`, ids)
}

// FindCertifiable returns students of a course that were neither expelled nor failed.
func (r *StudentRepository) FindCertifiable(ctx context.Context, courseID int64) ([]course.Student, error) {
	query := studentSelect + `
		WHERE s.course_id = $1 AND s.is_expelled = FALSE AND s.is_failed = FALSE
		ORDER BY s.id
	`
	return r.query(ctx, query, courseID)
}

func (r *StudentRepository) query(ctx context.Context, query string, args ...any) ([]course.Student, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("students: %w", err)
	}
	students, err := pgx.CollectRows(rows, scanStudent)
	if err != nil {
		return nil, fmt.Errorf("students: %w", err)
	}
	return students, nil
}

// scanStudent reads one row of studentSelect.
func scanStudent(row pgx.CollectableRow) (course.Student, error) {
	var s course.Student
	err := row.Scan(
		&s.ID, &s.CourseID, &s.UserID, &s.IsExpelled, &s.IsFailed,
		&s.User.ID, &s.User.FirstName, &s.User.LastName, &s.User.GithubID,
		&s.Course.ID, &s.Course.Name, &s.Course.Alias, &s.Course.PrimarySkillName,
		&s.Course.StartDate, &s.Course.EndDate,
	)
	return s, err
}

var _ course.StudentRepository = (*StudentRepository)(nil)
