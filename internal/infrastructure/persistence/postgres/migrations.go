package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrMigrationFailed wraps any failure while applying or rolling back.
var ErrMigrationFailed = errors.New("postgres: migration failed")

const migrationsTable = "schema_migrations"

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATOR
// ══════════════════════════════════════════════════════════════════════════════

// Migration is one embedded schema step.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// MigrationState pairs a migration with the time it was applied.
// AppliedAt is nil for pending migrations.
type MigrationState struct {
	Migration
	AppliedAt *time.Time
}

// Migrator applies embedded migrations and records them in schema_migrations.
type Migrator struct {
	conn  *Connection
	steps []Migration
}

// NewMigrator creates a migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, steps: Migrations()}
}

// history creates the bookkeeping table if needed and returns applied versions.
func (m *Migrator) history(ctx context.Context) (map[int]time.Time, error) {
	_, err := m.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", migrationsTable, err)
	}

	rows, err := m.conn.Query(ctx, `SELECT version, applied_at FROM `+migrationsTable)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", migrationsTable, err)
	}
	history := make(map[int]time.Time)
	var (
		version int
		at      time.Time
	)
	_, err = pgx.ForEachRow(rows, []any{&version, &at}, func() error {
		history[version] = at
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", migrationsTable, err)
	}
	return history, nil
}

// Migrate applies all pending migrations, each in its own transaction,
// and reports how many were applied.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	history, err := m.history(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, step := range m.steps {
		if _, done := history[step.Version]; done {
			continue
		}
		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, step.Up); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO `+migrationsTable+` (version, name) VALUES ($1, $2)`, step.Version, step.Name)
			return err
		})
		if err != nil {
			return n, fmt.Errorf("%w: %03d_%s: %v", ErrMigrationFailed, step.Version, step.Name, err)
		}
		n++
	}
	return n, nil
}

// Rollback reverts the most recently applied migration. With nothing
// applied it is a no-op.
func (m *Migrator) Rollback(ctx context.Context) error {
	history, err := m.history(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	versions := make([]int, 0, len(history))
	for v := range history {
		versions = append(versions, v)
	}
	last := slices.Max(versions)

	idx := slices.IndexFunc(m.steps, func(s Migration) bool { return s.Version == last })
	if idx < 0 || m.steps[idx].Down == "" {
		return fmt.Errorf("%w: no down migration for version %d", ErrMigrationFailed, last)
	}
	step := m.steps[idx]

	err = m.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, step.Down); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM `+migrationsTable+` WHERE version = $1`, last)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: rollback %03d_%s: %v", ErrMigrationFailed, step.Version, step.Name, err)
	}
	return nil
}

// Status lists every embedded migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	history, err := m.history(ctx)
	if err != nil {
		return nil, err
	}

	states := make([]MigrationState, 0, len(m.steps))
	for _, step := range m.steps {
		st := MigrationState{Migration: step}
		if at, ok := history[step.Version]; ok {
			st.AppliedAt = &at
		}
		states = append(states, st)
	}
	return states, nil
}

// Migrations returns all embedded migrations in version order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_courses", Up: migration001Up, Down: migration001Down},
		{Version: 2, Name: "create_student_progress", Up: migration002Up, Down: migration002Down},
		{Version: 3, Name: "schedule_indexes", Up: migration003Up, Down: migration003Down},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: COURSES, TASKS, EVENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    github_id VARCHAR(100) NOT NULL UNIQUE,
    first_name VARCHAR(100) NOT NULL DEFAULT '',
    last_name VARCHAR(100) NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS courses (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    alias VARCHAR(100) NOT NULL DEFAULT '',
    primary_skill_name VARCHAR(100) NOT NULL DEFAULT '',
    start_date TIMESTAMP WITH TIME ZONE NOT NULL,
    end_date TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    type VARCHAR(64) NOT NULL DEFAULT '',
    description_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    type VARCHAR(64) NOT NULL DEFAULT '',
    description_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS course_tasks (
    id BIGSERIAL PRIMARY KEY,
    course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    task_id BIGINT NOT NULL REFERENCES tasks(id),
    type VARCHAR(64) NOT NULL DEFAULT '',
    checker VARCHAR(32) NOT NULL DEFAULT 'mentor',
    student_start_date TIMESTAMP WITH TIME ZONE,
    student_end_date TIMESTAMP WITH TIME ZONE,
    mentor_start_date TIMESTAMP WITH TIME ZONE,
    mentor_end_date TIMESTAMP WITH TIME ZONE,
    cross_check_end_date TIMESTAMP WITH TIME ZONE,
    cross_check_status VARCHAR(32) NOT NULL DEFAULT 'initial',
    max_score INTEGER,
    score_weight DOUBLE PRECISION,
    pairs_count INTEGER,
    task_owner_id BIGINT REFERENCES users(id),
    disabled BOOLEAN NOT NULL DEFAULT FALSE,
    created_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_checker CHECK (checker IN ('auto-test', 'mentor', 'assigned', 'taskOwner', 'crossCheck')),
    CONSTRAINT valid_max_score CHECK (max_score IS NULL OR max_score >= 0)
);

CREATE TABLE IF NOT EXISTS course_events (
    id BIGSERIAL PRIMARY KEY,
    course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    event_id BIGINT NOT NULL REFERENCES events(id),
    date_time TIMESTAMP WITH TIME ZONE NOT NULL,
    date VARCHAR(32),
    time VARCHAR(32),
    duration INTEGER,
    place TEXT NOT NULL DEFAULT '',
    comment TEXT NOT NULL DEFAULT '',
    organizer_id BIGINT REFERENCES users(id),
    created_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS students (
    id BIGSERIAL PRIMARY KEY,
    course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    user_id BIGINT NOT NULL REFERENCES users(id),
    is_expelled BOOLEAN NOT NULL DEFAULT FALSE,
    is_failed BOOLEAN NOT NULL DEFAULT FALSE,

    UNIQUE(course_id, user_id)
);
`

const migration001Down = `
DROP TABLE IF EXISTS students;
DROP TABLE IF EXISTS course_events;
DROP TABLE IF EXISTS course_tasks;
DROP TABLE IF EXISTS events;
DROP TABLE IF EXISTS tasks;
DROP TABLE IF EXISTS courses;
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: STUDENT PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS task_results (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    course_task_id BIGINT NOT NULL REFERENCES course_tasks(id) ON DELETE CASCADE,
    score DOUBLE PRECISION NOT NULL,
    UNIQUE(student_id, course_task_id)
);

CREATE TABLE IF NOT EXISTS task_interview_results (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    course_task_id BIGINT NOT NULL REFERENCES course_tasks(id) ON DELETE CASCADE,
    score DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS stage_interviews (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    course_task_id BIGINT NOT NULL REFERENCES course_tasks(id) ON DELETE CASCADE,
    is_completed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS stage_interview_feedbacks (
    id BIGSERIAL PRIMARY KEY,
    stage_interview_id BIGINT NOT NULL REFERENCES stage_interviews(id) ON DELETE CASCADE,
    json TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS task_solutions (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    course_task_id BIGINT NOT NULL REFERENCES course_tasks(id) ON DELETE CASCADE,
    url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS task_checkers (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    course_task_id BIGINT NOT NULL REFERENCES course_tasks(id) ON DELETE CASCADE,
    mentor_id BIGINT NOT NULL
);
`

const migration002Down = `
DROP TABLE IF EXISTS task_checkers;
DROP TABLE IF EXISTS task_solutions;
DROP TABLE IF EXISTS stage_interview_feedbacks;
DROP TABLE IF EXISTS stage_interviews;
DROP TABLE IF EXISTS task_interview_results;
DROP TABLE IF EXISTS task_results;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: SCHEDULE INDEXES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE INDEX IF NOT EXISTS idx_course_tasks_course_active ON course_tasks(course_id, student_end_date) WHERE disabled = FALSE;
CREATE INDEX IF NOT EXISTS idx_course_tasks_updated ON course_tasks(course_id, updated_date DESC);
CREATE INDEX IF NOT EXISTS idx_course_tasks_owner ON course_tasks(task_owner_id) WHERE checker = 'taskOwner';
CREATE INDEX IF NOT EXISTS idx_course_events_course ON course_events(course_id, date_time);
CREATE INDEX IF NOT EXISTS idx_students_course ON students(course_id) WHERE is_expelled = FALSE AND is_failed = FALSE;
CREATE INDEX IF NOT EXISTS idx_task_results_student ON task_results(student_id);
CREATE INDEX IF NOT EXISTS idx_task_interview_results_student ON task_interview_results(student_id);
CREATE INDEX IF NOT EXISTS idx_stage_interviews_student ON stage_interviews(student_id) WHERE is_completed = TRUE;
CREATE INDEX IF NOT EXISTS idx_task_solutions_student ON task_solutions(student_id);
CREATE INDEX IF NOT EXISTS idx_task_checkers_student ON task_checkers(student_id);
`

const migration003Down = `
DROP INDEX IF EXISTS idx_task_checkers_student;
DROP INDEX IF EXISTS idx_task_solutions_student;
DROP INDEX IF EXISTS idx_stage_interviews_student;
DROP INDEX IF EXISTS idx_task_interview_results_student;
DROP INDEX IF EXISTS idx_task_results_student;
DROP INDEX IF EXISTS idx_students_course;
DROP INDEX IF EXISTS idx_course_events_course;
DROP INDEX IF EXISTS idx_course_tasks_owner;
DROP INDEX IF EXISTS idx_course_tasks_updated;
DROP INDEX IF EXISTS idx_course_tasks_course_active;
`
