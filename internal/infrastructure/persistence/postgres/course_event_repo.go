package postgres

import (
	"context"
	"fmt"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// CourseEventRepository implements course.CourseEventRepository for PostgreSQL.
type CourseEventRepository struct {
	conn *Connection
}

// NewCourseEventRepository creates a new CourseEventRepository.
func NewCourseEventRepository(conn *Connection) *CourseEventRepository {
	return &CourseEventRepository{conn: conn}
}

// FindByCourse returns the events of a course with template and organizer.
func (r *CourseEventRepository) FindByCourse(ctx context.Context, courseID int64) ([]course.CourseEvent, error) {
	query := `
		SELECT ce.id, ce.course_id, ce.event_id, ce.date_time, ce."date", ce."time",
			   ce.duration, ce.place, ce.comment, ce.organizer_id,
			   ce.created_date, ce.updated_date,
			   e.id, e.name, e.type, e.description_url,
			   u.id, u.first_name, u.last_name, u.github_id
		FROM course_events ce
		JOIN events e ON e.id = ce.event_id
		LEFT JOIN users u ON u.id = ce.organizer_id
		WHERE ce.course_id = $1
		ORDER BY ce.date_time, ce.id
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course events: %w", err)
	}
	defer rows.Close()

	events := make([]course.CourseEvent, 0)
	for rows.Next() {
		var (
			ce           course.CourseEvent
			tmpl         course.Event
			orgID        *int64
			orgFirstName *string
			orgLastName  *string
			orgGithubID  *string
		)
		if err := rows.Scan(
			&ce.ID, &ce.CourseID, &ce.EventID, &ce.DateTime, &ce.Date, &ce.Time,
			&ce.Duration, &ce.Place, &ce.Comment, &ce.OrganizerID,
			&ce.CreatedDate, &ce.UpdatedDate,
			&tmpl.ID, &tmpl.Name, &tmpl.Type, &tmpl.DescriptionURL,
			&orgID, &orgFirstName, &orgLastName, &orgGithubID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course event: %w", err)
		}
		ce.Event = &tmpl
		ce.Organizer = scanPerson(orgID, orgFirstName, orgLastName, orgGithubID)
		events = append(events, ce)
	}
	return events, rows.Err()
}

// Create inserts an event and fills ID and timestamps.
func (r *CourseEventRepository) Create(ctx context.Context, ce *course.CourseEvent) error {
	query := `
		INSERT INTO course_events (
			course_id, event_id, date_time, "date", "time", duration,
			place, comment, organizer_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_date, updated_date
	`

	err := r.conn.QueryRow(ctx, query,
		ce.CourseID, ce.EventID, ce.DateTime, ce.Date, ce.Time, ce.Duration,
		ce.Place, ce.Comment, ce.OrganizerID,
	).Scan(&ce.ID, &ce.CreatedDate, &ce.UpdatedDate)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.WrapError("course_event", "Create", shared.ErrInvalidInput, "course, event or organizer does not exist", err)
		}
		return fmt.Errorf("failed to create course event: %w", err)
	}
	return nil
}

var _ course.CourseEventRepository = (*CourseEventRepository)(nil)
