// Package app wires configuration, storage, caches and external clients
// into the application handlers shared by the API, the worker and the
// admin CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/alem-hub/course-schedule/config"
	"github.com/alem-hub/course-schedule/internal/application/command"
	"github.com/alem-hub/course-schedule/internal/application/query"
	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/schedule"
	"github.com/alem-hub/course-schedule/internal/infrastructure/external/archive"
	"github.com/alem-hub/course-schedule/internal/infrastructure/external/certificates"
	"github.com/alem-hub/course-schedule/internal/infrastructure/external/email"
	"github.com/alem-hub/course-schedule/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/course-schedule/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/course-schedule/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/course-schedule/internal/interface/http/handlers"
	"github.com/alem-hub/course-schedule/pkg/retry"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTAINER
// ══════════════════════════════════════════════════════════════════════════════

// Container holds the wired dependencies of one process.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  timeutil.Clock

	// DB is nil when repositories run in memory.
	DB *postgres.Connection
	// Redis is nil when disabled or unreachable.
	Redis *redis.Cache

	Courses  course.CourseRepository
	Tasks    course.CourseTaskRepository
	Events   course.CourseEventRepository
	Progress course.StudentProgressRepository
	Students course.StudentRepository
	Cache    course.ScheduleSourceCache

	// Issuer is nil when no certificate API is configured.
	Issuer  command.CertificateIssuer
	Archive *archive.CertificateArchive

	closers []func()
}

// New connects the configured backends. Redis and the archive are
// optional: a connection failure is logged and the feature is disabled.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: log,
		Clock:  timeutil.SystemClock{},
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Step 1: Repositories (PostgreSQL or in-memory)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.UseMemoryStore() {
		log.Warn("DATABASE_URL is empty, using in-memory repositories")
		c.Courses = memory.NewCourseRepository()
		c.Tasks = memory.NewCourseTaskRepository(c.Clock)
		c.Events = memory.NewCourseEventRepository(c.Clock)
		c.Progress = memory.NewProgressRepository()
		c.Students = memory.NewStudentRepository()
	} else {
		opts := postgres.PoolOptions{
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		}
		policy := retry.DatabaseConnect(func(attempt int, err error, wait time.Duration) {
			log.Warn("database not reachable, retrying", "attempt", attempt, "wait", wait, "error", err)
		})
		conn, err := retry.Value(ctx, policy, func(ctx context.Context) (*postgres.Connection, error) {
			return postgres.Connect(ctx, cfg.Database.URL, opts)
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		c.DB = conn
		c.closers = append(c.closers, conn.Close)
		log.Info("database connection established")

		if cfg.Database.AutoMigrate {
			applied, err := postgres.NewMigrator(conn).Migrate(ctx)
			if err != nil {
				c.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
			log.Info("database schema is up to date", "applied", applied)
		}

		c.Courses = postgres.NewCourseRepository(conn)
		c.Tasks = postgres.NewCourseTaskRepository(conn)
		c.Events = postgres.NewCourseEventRepository(conn)
		c.Progress = postgres.NewProgressRepository(conn)
		c.Students = postgres.NewStudentRepository(conn)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Step 2: Schedule source cache (Redis, falling back to in-process)
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(ctx, redisConfig(cfg.Redis))
		if err != nil {
			log.Warn("failed to connect to Redis, using in-process cache", "error", err)
		} else {
			c.Redis = cache
			c.closers = append(c.closers, func() { _ = cache.Close() })
			c.Cache = redis.NewScheduleCache(cache, log)
		}
	}
	if c.Cache == nil {
		c.Cache = memory.NewScheduleCache(cfg.Cache.ScheduleTTL, cfg.Cache.CleanupInterval)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Step 3: Certificate service and archive
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Certificates.URL != "" {
		cc := certificates.DefaultClientConfig(cfg.Certificates.URL, cfg.Certificates.APIKey)
		cc.Timeout = cfg.Certificates.Timeout
		cc.Logger = log
		c.Issuer = certificates.NewClient(cc)
	}
	if cfg.Archive.Enabled {
		client, err := archive.NewMinIOClient(archive.Config{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			log.Warn("failed to create archive client, archiving disabled", "error", err)
		} else {
			a := archive.NewCertificateArchive(client, cfg.Archive.Bucket)
			if err := a.EnsureBucket(ctx); err != nil {
				log.Warn("certificate bucket is not available, archiving disabled", "error", err)
			} else {
				c.Archive = a
			}
		}
	}

	return c, nil
}

// Close releases connections in reverse order of opening.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func redisConfig(rc config.RedisConfig) redis.Config {
	return redis.Config{
		Addr:         net.JoinHostPort(rc.Host, strconv.Itoa(rc.Port)),
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// Handlers groups the query and command handlers.
type Handlers struct {
	GetSchedule        *query.GetScheduleHandler
	ListCourseTasks    *query.ListCourseTasksHandler
	GetUpdatedTasks    *query.GetUpdatedTasksHandler
	GetPendingDeadline *query.GetPendingDeadlineHandler
	GetCourseTask      *query.GetCourseTaskHandler
	GetTasksByOwner    *query.GetTasksByOwnerHandler

	CopySchedule      *command.CopyScheduleHandler
	SaveCourseTask    *command.SaveCourseTaskHandler
	DisableCourseTask *command.DisableCourseTaskHandler

	// GenerateCertificates is nil without a certificate API.
	GenerateCertificates *command.GenerateCertificatesHandler
}

// Handlers builds the application handlers over the container's stores.
func (c *Container) Handlers() Handlers {
	h := Handlers{
		GetSchedule:        query.NewGetScheduleHandler(c.Tasks, c.Events, c.Progress, c.Cache, c.Config.Cache.ScheduleTTL, c.Clock),
		ListCourseTasks:    query.NewListCourseTasksHandler(c.Tasks, c.Clock),
		GetUpdatedTasks:    query.NewGetUpdatedTasksHandler(c.Tasks, c.Clock),
		GetPendingDeadline: query.NewGetPendingDeadlineHandler(c.Tasks, c.Clock),
		GetCourseTask:      query.NewGetCourseTaskHandler(c.Tasks),
		GetTasksByOwner:    query.NewGetTasksByOwnerHandler(c.Tasks),
		CopySchedule:       command.NewCopyScheduleHandler(c.Courses, c.Tasks, c.Events, c.Cache, c.Logger),
		SaveCourseTask:     command.NewSaveCourseTaskHandler(c.Tasks, c.Cache),
		DisableCourseTask:  command.NewDisableCourseTaskHandler(c.Tasks, c.Cache),
	}
	if c.Issuer != nil {
		var a command.CertificateArchive
		if c.Archive != nil {
			a = c.Archive
		}
		h.GenerateCertificates = command.NewGenerateCertificatesHandler(c.Students, c.Issuer, a, c.Clock, c.Logger)
	}
	return h
}

// DeadlineNotifiers returns the configured digest channels: Redis pub/sub
// and SendGrid e-mail. An empty result means digests are only logged.
func (c *Container) DeadlineNotifiers() ([]schedule.DeadlineNotifier, error) {
	var out []schedule.DeadlineNotifier
	if c.Redis != nil {
		out = append(out, redis.NewDeadlineNotifier(c.Redis, c.Config.Notifications.RedisChannel))
	}
	n := c.Config.Notifications
	if n.SendGridAPIKey != "" {
		mailer, err := email.NewDeadlineMailer(email.Config{
			APIKey:     n.SendGridAPIKey,
			AppName:    c.Config.App.Name,
			FromEmail:  n.FromEmail,
			Recipients: n.Recipients,
		})
		if err != nil {
			return nil, fmt.Errorf("deadline mailer: %w", err)
		}
		out = append(out, mailer)
	}
	return out, nil
}

// HealthChecker registers a ping check for every connected backend.
func (c *Container) HealthChecker() *handlers.Checker {
	checker := handlers.NewChecker(c.Config.App.Version)
	if c.DB != nil {
		checker.Required("postgres", handlers.NewPingCheck(c.DB))
	}
	if c.Redis != nil {
		checker.Optional("redis", handlers.NewPingCheck(c.Redis))
	}
	if c.Archive != nil {
		checker.Optional("archive", c.Archive.EnsureBucket)
	}
	return checker
}
