// Package main - точка входа HTTP API сервиса расписания курсов.
//
// API отдаёт расписание студента, управляет заданиями курса, копирует
// расписание между потоками и выпускает сертификаты.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alem-hub/course-schedule/config"
	"github.com/alem-hub/course-schedule/internal/app"
	httpapi "github.com/alem-hub/course-schedule/internal/interface/http"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
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
	log, flush := app.SetupLogger(cfg, "api")
	defer flush()

	log.Info("starting course schedule API",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"memory_store", cfg.UseMemoryStore(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ИНФРАСТРУКТУРА: БД, КЕШ, ВНЕШНИЕ СЕРВИСЫ
	// ─────────────────────────────────────────────────────────────────────────
	container, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing connections...")
		container.Close()
	}()

	if container.Issuer == nil {
		log.Warn("CERTIFICATE_API_URL is empty, certificate generation disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	h := container.Handlers()

	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.Version = cfg.App.Version

	server := httpapi.NewServer(serverCfg, httpapi.Dependencies{
		GetSchedule:          h.GetSchedule,
		ListCourseTasks:      h.ListCourseTasks,
		GetUpdatedTasks:      h.GetUpdatedTasks,
		GetPendingDeadline:   h.GetPendingDeadline,
		GetCourseTask:        h.GetCourseTask,
		GetTasksByOwner:      h.GetTasksByOwner,
		CopySchedule:         h.CopySchedule,
		SaveCourseTask:       h.SaveCourseTask,
		DisableCourseTask:    h.DisableCourseTask,
		GenerateCertificates: h.GenerateCertificates,
		Logger:               app.HTTPLogger(cfg),
		HealthChecker:        container.HealthChecker(),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ОБСЛУЖИВАНИЕ ДО СИГНАЛА ОСТАНОВКИ
	// ─────────────────────────────────────────────────────────────────────────
	if err := server.Run(ctx, cfg.App.ShutdownTimeout); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	log.Info("shutdown completed successfully")
	return nil
}
