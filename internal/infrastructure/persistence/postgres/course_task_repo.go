package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE TASK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseTaskRepository implements course.CourseTaskRepository for PostgreSQL.
// Every read joins the task template and the optional owner.
type CourseTaskRepository struct {
	conn *Connection
}

// NewCourseTaskRepository creates a new CourseTaskRepository.
func NewCourseTaskRepository(conn *Connection) *CourseTaskRepository {
	return &CourseTaskRepository{conn: conn}
}

const courseTaskSelect = `
	SELECT ct.id, ct.course_id, ct.task_id, ct.type, ct.checker,
		   ct.student_start_date, ct.student_end_date,
		   ct.mentor_start_date, ct.mentor_end_date, ct.cross_check_end_date,
		   ct.cross_check_status, ct.max_score, ct.score_weight, ct.pairs_count,
		   ct.task_owner_id, ct.disabled, ct.created_date, ct.updated_date,
		   t.id, t.name, t.type, t.description_url,
		   u.id, u.first_name, u.last_name, u.github_id
	FROM course_tasks ct
	JOIN tasks t ON t.id = ct.task_id
	LEFT JOIN users u ON u.id = ct.task_owner_id
`

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// FindActiveByCourse returns non-disabled tasks of a course.
func (r *CourseTaskRepository) FindActiveByCourse(ctx context.Context, courseID int64) ([]course.CourseTask, error) {
	query := courseTaskSelect + `
		WHERE ct.course_id = $1 AND ct.disabled = FALSE
		ORDER BY ct.id
	`
	return r.queryTasks(ctx, query, courseID)
}

// FindAllByCourse returns every task of a course, disabled ones included.
func (r *CourseTaskRepository) FindAllByCourse(ctx context.Context, courseID int64) ([]course.CourseTask, error) {
	query := courseTaskSelect + `
		WHERE ct.course_id = $1
		ORDER BY ct.id
	`
	return r.queryTasks(ctx, query, courseID)
}

// List returns active tasks filtered by window status, ordered by
// student end date then template name.
func (r *CourseTaskRepository) List(ctx context.Context, filter course.TaskListFilter) ([]course.CourseTask, error) {
	query := courseTaskSelect + `WHERE ct.course_id = $1 AND ct.disabled = FALSE`
	args := []any{filter.CourseID}

	if cond := statusCondition(filter.Status, "$2"); cond != "" {
		query += " AND " + cond
		args = append(args, filter.Now)
	}
	query += ` ORDER BY ct.student_end_date ASC, t.name ASC`

	return r.queryTasks(ctx, query, args...)
}

// statusCondition renders the SQL predicate for a window status filter.
// nowArg is the placeholder bound to the current instant.
func statusCondition(status course.TaskStatusFilter, nowArg string) string {
	switch status {
	case course.TaskStatusStarted:
		return "ct.student_start_date <= " + nowArg
	case course.TaskStatusInProgress:
		return "ct.student_start_date <= " + nowArg + " AND ct.student_end_date > " + nowArg
	case course.TaskStatusFinished:
		return "ct.student_end_date < " + nowArg
	}
	return ""
}

// FindUpdatedSince returns tasks of a course updated at or after since.
func (r *CourseTaskRepository) FindUpdatedSince(ctx context.Context, courseID int64, since time.Time) ([]course.CourseTask, error) {
	query := courseTaskSelect + `
		WHERE ct.course_id = $1 AND ct.updated_date >= $2
		ORDER BY ct.updated_date DESC
	`
	return r.queryTasks(ctx, query, courseID, since)
}

// FindPendingDeadline returns open active tasks whose deadline is in [now, until].
func (r *CourseTaskRepository) FindPendingDeadline(ctx context.Context, courseID int64, now, until time.Time) ([]course.CourseTask, error) {
	query := courseTaskSelect + `
		WHERE ct.course_id = $1
		  AND ct.disabled = FALSE
		  AND ct.student_start_date <= $2
		  AND ct.student_end_date BETWEEN $2 AND $3
		ORDER BY ct.student_end_date ASC
	`
	return r.queryTasks(ctx, query, courseID, now, until)
}

// GetByID returns a task or shared.ErrCourseTaskNotFound.
func (r *CourseTaskRepository) GetByID(ctx context.Context, id int64) (*course.CourseTask, error) {
	row := r.conn.QueryRow(ctx, courseTaskSelect+` WHERE ct.id = $1`, id)
	ct, err := scanCourseTask(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseTaskNotFound
		}
		return nil, fmt.Errorf("failed to get course task %d: %w", id, err)
	}
	return ct, nil
}

// FindByOwner returns owner-checked tasks whose owner has the GitHub login.
func (r *CourseTaskRepository) FindByOwner(ctx context.Context, githubID string) ([]course.CourseTask, error) {
	query := courseTaskSelect + `
		WHERE ct.checker = $1 AND u.github_id = $2
		ORDER BY ct.id
	`
	return r.queryTasks(ctx, query, string(course.CheckerTaskOwner), githubID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a task and fills ID and timestamps.
func (r *CourseTaskRepository) Create(ctx context.Context, ct *course.CourseTask) error {
	query := `
		INSERT INTO course_tasks (
			course_id, task_id, type, checker,
			student_start_date, student_end_date, mentor_start_date, mentor_end_date,
			cross_check_end_date, cross_check_status, max_score, score_weight,
			pairs_count, task_owner_id, disabled
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_date, updated_date
	`

	status := ct.CrossCheckStatus
	if status == "" {
		status = course.CrossCheckStatusInitial
	}
	checker := ct.Checker
	if checker == "" {
		checker = course.CheckerMentor
	}

	err := r.conn.QueryRow(ctx, query,
		ct.CourseID, ct.TaskID, ct.Type, string(checker),
		ct.StudentStartDate, ct.StudentEndDate, ct.MentorStartDate, ct.MentorEndDate,
		ct.CrossCheckEndDate, string(status), ct.MaxScore, ct.ScoreWeight,
		ct.PairsCount, ct.TaskOwnerID, ct.Disabled,
	).Scan(&ct.ID, &ct.CreatedDate, &ct.UpdatedDate)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.WrapError("course_task", "Create", shared.ErrInvalidInput, "course, task or owner does not exist", err)
		}
		return fmt.Errorf("failed to create course task: %w", err)
	}
	ct.Checker = checker
	ct.CrossCheckStatus = status
	return nil
}

// Update rewrites the mutable fields of a task.
func (r *CourseTaskRepository) Update(ctx context.Context, ct *course.CourseTask) error {
	query := `
		UPDATE course_tasks SET
			course_id = $1,
			task_id = $2,
			type = $3,
			checker = $4,
			student_start_date = $5,
			student_end_date = $6,
			mentor_start_date = $7,
			mentor_end_date = $8,
			cross_check_end_date = $9,
			max_score = $10,
			score_weight = $11,
			pairs_count = $12,
			task_owner_id = $13,
			updated_date = NOW()
		WHERE id = $14
		RETURNING created_date, updated_date
	`

	err := r.conn.QueryRow(ctx, query,
		ct.CourseID, ct.TaskID, ct.Type, string(ct.Checker),
		ct.StudentStartDate, ct.StudentEndDate, ct.MentorStartDate, ct.MentorEndDate,
		ct.CrossCheckEndDate, ct.MaxScore, ct.ScoreWeight, ct.PairsCount,
		ct.TaskOwnerID, ct.ID,
	).Scan(&ct.CreatedDate, &ct.UpdatedDate)
	if err != nil {
		if IsNoRows(err) {
			return shared.ErrCourseTaskNotFound
		}
		if IsForeignKeyViolation(err) {
			return shared.WrapError("course_task", "Update", shared.ErrInvalidInput, "course, task or owner does not exist", err)
		}
		return fmt.Errorf("failed to update course task %d: %w", ct.ID, err)
	}
	return nil
}

// Disable sets the disabled flag. Disabling twice is not an error.
func (r *CourseTaskRepository) Disable(ctx context.Context, id int64) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE course_tasks SET disabled = TRUE, updated_date = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to disable course task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrCourseTaskNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *CourseTaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]course.CourseTask, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query course tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]course.CourseTask, 0)
	for rows.Next() {
		ct, err := scanCourseTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course task: %w", err)
		}
		tasks = append(tasks, *ct)
	}
	return tasks, rows.Err()
}

func scanCourseTask(row rowScanner) (*course.CourseTask, error) {
	var (
		ct              course.CourseTask
		tmpl            course.Task
		checker, status string
		ownerID         *int64
		ownerFirstName  *string
		ownerLastName   *string
		ownerGithubID   *string
	)

	err := row.Scan(
		&ct.ID, &ct.CourseID, &ct.TaskID, &ct.Type, &checker,
		&ct.StudentStartDate, &ct.StudentEndDate,
		&ct.MentorStartDate, &ct.MentorEndDate, &ct.CrossCheckEndDate,
		&status, &ct.MaxScore, &ct.ScoreWeight, &ct.PairsCount,
		&ct.TaskOwnerID, &ct.Disabled, &ct.CreatedDate, &ct.UpdatedDate,
		&tmpl.ID, &tmpl.Name, &tmpl.Type, &tmpl.DescriptionURL,
		&ownerID, &ownerFirstName, &ownerLastName, &ownerGithubID,
	)
	if err != nil {
		return nil, err
	}

	ct.Checker = course.Checker(checker)
	ct.CrossCheckStatus = course.CrossCheckStatus(status)
	ct.Task = &tmpl
	ct.TaskOwner = scanPerson(ownerID, ownerFirstName, ownerLastName, ownerGithubID)
	return &ct, nil
}

// scanPerson builds a person from LEFT JOIN columns; nil when no row joined.
func scanPerson(id *int64, firstName, lastName, githubID *string) *course.Person {
	if id == nil {
		return nil
	}
	p := &course.Person{ID: *id}
	if firstName != nil {
		p.FirstName = *firstName
	}
	if lastName != nil {
		p.LastName = *lastName
	}
	if githubID != nil {
		p.GithubID = *githubID
	}
	return p
}

var _ course.CourseTaskRepository = (*CourseTaskRepository)(nil)
