// Package main - точка входа фонового процесса (Worker) сервиса расписания.
//
// Worker по расписанию собирает задания курсов, дедлайн которых наступает
// в ближайшие часы, и рассылает дайджесты через Redis pub/sub и e-mail.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alem-hub/course-schedule/config"
	"github.com/alem-hub/course-schedule/internal/app"
	"github.com/alem-hub/course-schedule/internal/infrastructure/scheduler"
	"github.com/alem-hub/course-schedule/internal/infrastructure/scheduler/jobs"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log, flush := app.SetupLogger(cfg, "worker")
	defer flush()

	log.Info("starting course schedule worker",
		"env", cfg.App.Environment,
		"timezone", cfg.App.Timezone,
		"courses", cfg.Scheduler.CourseIDs,
	)

	if !cfg.Scheduler.Enabled {
		log.Warn("SCHEDULER_ENABLED is false, nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ИНФРАСТРУКТУРА
	// ─────────────────────────────────────────────────────────────────────────
	container, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing connections...")
		container.Close()
	}()

	notifiers, err := container.DeadlineNotifiers()
	if err != nil {
		return err
	}
	log.Info("deadline notifiers configured", "count", len(notifiers))

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ПЛАНИРОВЩИК И ЗАДАЧИ
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:       log,
		Clock:        container.Clock,
		Timezone:     cfg.App.Location,
		TickInterval: cfg.Scheduler.TickInterval,
	})

	jobCfg := jobs.DefaultPendingDeadlinesConfig()
	jobCfg.CourseIDs = cfg.Scheduler.CourseIDs
	jobCfg.WithinHours = cfg.Scheduler.DeadlineWithinHours
	jobCfg.Timeout = cfg.Scheduler.JobTimeout

	h := container.Handlers()
	job := jobs.NewPendingDeadlinesJob(h.GetPendingDeadline, notifiers, container.Clock, log, jobCfg)

	when, err := scheduler.ParseSchedule(cfg.Scheduler.Schedule)
	if err != nil {
		return fmt.Errorf("invalid SCHEDULER_DEADLINES_SCHEDULE: %w", err)
	}
	if err := sched.Register(job, when); err != nil {
		return fmt.Errorf("failed to register job: %w", err)
	}

	sched.OnJobComplete(func(result scheduler.JobResult) {
		if stats := job.LastRunStats(); stats != nil && result.JobName == job.Name() {
			log.Info("deadline digests",
				"courses", stats.CoursesChecked,
				"sent", stats.DigestsSent,
				"empty", stats.DigestsEmpty,
				"failures", stats.Failures,
			)
		}
	})

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	for _, info := range sched.Jobs() {
		log.Info("job scheduled", "job", info.Name, "schedule", info.Schedule, "next_run", info.NextRun)
	}
	if cfg.Scheduler.RunOnStart {
		// Ошибка уже залогирована планировщиком.
		_, _ = sched.RunNow(ctx, job.Name())
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ОЖИДАНИЕ СИГНАЛА ОСТАНОВКИ
	// ─────────────────────────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info("stopping worker", "reason", context.Cause(ctx))

	if err := sched.Stop(); err != nil {
		log.Warn("scheduler stop", "error", err)
	}
	log.Info("worker stopped")
	return nil
}
