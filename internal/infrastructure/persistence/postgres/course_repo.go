package postgres

import (
	"context"
	"fmt"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// CourseRepository implements course.CourseRepository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// GetByID returns a course or shared.ErrCourseNotFound.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*course.Course, error) {
	query := `
		SELECT id, name, alias, primary_skill_name, start_date, end_date
		FROM courses
		WHERE id = $1
	`

	var c course.Course
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Alias, &c.PrimarySkillName, &c.StartDate, &c.EndDate,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}
	return &c, nil
}

var _ course.CourseRepository = (*CourseRepository)(nil)
