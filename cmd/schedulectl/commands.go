package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"

	"github.com/alem-hub/course-schedule/config"
	"github.com/alem-hub/course-schedule/internal/app"
	"github.com/alem-hub/course-schedule/internal/application/command"
	"github.com/alem-hub/course-schedule/internal/application/query"
	"github.com/alem-hub/course-schedule/internal/infrastructure/persistence/postgres"
)

var errNoDatabase = errors.New("DATABASE_URL is not configured")

type commandFunc func(ctx context.Context, c *cli.Context, container *app.Container) error

// withContainer loads configuration and connects storage before running fn.
func withContainer(ctx context.Context, fn commandFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, flush := app.SetupLogger(cfg, "schedulectl")
		defer flush()

		container, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer container.Close()

		return fn(ctx, c, container)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATE
// ══════════════════════════════════════════════════════════════════════════════

var (
	migrateStatus   bool
	migrateRollback bool

	migrateFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "status, s",
			Usage:       "print applied and pending migrations",
			Destination: &migrateStatus,
		},
		cli.BoolFlag{
			Name:        "rollback",
			Usage:       "revert the last applied migration",
			Destination: &migrateRollback,
		},
	}
)

func migrate(ctx context.Context, _ *cli.Context, container *app.Container) error {
	if container.DB == nil {
		return errNoDatabase
	}
	m := postgres.NewMigrator(container.DB)

	switch {
	case migrateStatus:
		migrations, err := m.Status(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED")
		for _, mg := range migrations {
			applied := "pending"
			if mg.AppliedAt != nil {
				applied = mg.AppliedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", mg.Version, mg.Name, applied)
		}
		return tw.Flush()
	case migrateRollback:
		if err := m.Rollback(ctx); err != nil {
			return err
		}
		fmt.Println("Rolled back the last migration")
		return nil
	}

	applied, err := m.Migrate(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Applied %d migration(s)\n", applied)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COPY
// ══════════════════════════════════════════════════════════════════════════════

var (
	copyFrom, copyTo int64

	copyFlags = []cli.Flag{
		cli.Int64Flag{
			Name:        "from",
			Usage:       "source course id",
			Destination: &copyFrom,
		},
		cli.Int64Flag{
			Name:        "to",
			Usage:       "target course id",
			Destination: &copyTo,
		},
	}
)

func copySchedule(ctx context.Context, _ *cli.Context, container *app.Container) error {
	h := container.Handlers()
	res, err := h.CopySchedule.Handle(ctx, command.CopyScheduleCommand{
		FromCourseID: copyFrom,
		ToCourseID:   copyTo,
	})
	if res != nil {
		fmt.Printf("Copied %d task(s) and %d event(s) from course %d to course %d (shift %s)\n",
			res.TasksCopied, res.EventsCopied, res.FromCourseID, res.ToCourseID, res.Shift)
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// PENDING
// ══════════════════════════════════════════════════════════════════════════════

var (
	pendingCourse int64
	pendingHours  int

	pendingFlags = []cli.Flag{
		cli.Int64Flag{
			Name:        "course, c",
			Usage:       "course id",
			Destination: &pendingCourse,
		},
		cli.IntFlag{
			Name:        "hours",
			Usage:       "look-ahead window in hours",
			Value:       query.DefaultDeadlineWithinHours,
			Destination: &pendingHours,
		},
	}
)

func pending(ctx context.Context, _ *cli.Context, container *app.Container) error {
	h := container.Handlers()
	tasks, err := h.GetPendingDeadline.Handle(ctx, query.GetPendingDeadlineQuery{
		CourseID:            pendingCourse,
		DeadlineWithinHours: pendingHours,
	})
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No pending deadlines")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK\tTYPE\tDEADLINE")
	for _, t := range tasks {
		deadline := "-"
		if t.StudentEndDate != nil {
			deadline = t.StudentEndDate.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Name(), t.EffectiveType(), deadline)
	}
	return tw.Flush()
}

// ══════════════════════════════════════════════════════════════════════════════
// DISABLE
// ══════════════════════════════════════════════════════════════════════════════

var (
	disableID int64

	disableFlags = []cli.Flag{
		cli.Int64Flag{
			Name:        "id",
			Usage:       "course task id",
			Destination: &disableID,
		},
	}
)

func disable(ctx context.Context, _ *cli.Context, container *app.Container) error {
	h := container.Handlers()
	if err := h.DisableCourseTask.Handle(ctx, disableID); err != nil {
		return err
	}
	fmt.Printf("Disabled course task %d\n", disableID)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CERTIFICATES
// ══════════════════════════════════════════════════════════════════════════════

var (
	certCourse int64

	certificateFlags = []cli.Flag{
		cli.Int64Flag{
			Name:        "course, c",
			Usage:       "course id",
			Destination: &certCourse,
		},
		cli.Int64SliceFlag{
			Name:  "student, s",
			Usage: "student id to certify (repeatable, default: every eligible student)",
		},
	}
)

func certificates(ctx context.Context, c *cli.Context, container *app.Container) error {
	h := container.Handlers()
	if h.GenerateCertificates == nil {
		return errors.New("CERTIFICATES_API_URL is not configured")
	}

	res, err := h.GenerateCertificates.Handle(ctx, command.GenerateCertificatesCommand{
		CourseID:   certCourse,
		StudentIDs: c.Int64Slice("student"),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
