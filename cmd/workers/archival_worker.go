package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"voluma/capture-portal/capture-portal-backend/internal/audit"
	"voluma/capture-portal/capture-portal-backend/internal/config"
	"voluma/capture-portal/capture-portal-backend/pkg/lifecycle"
)

// ArchivalWorker sweeps projects that have sat in the approved state past
// the retention window and archives them through the same lifecycle rules
// the portal enforces, acting as the system admin.
type ArchivalWorker struct {
	db           *sqlx.DB
	auditLog     *audit.Repository
	logger       *zap.Logger
	retention    time.Duration
	systemUserID uuid.UUID
}

// NewArchivalWorker creates a new archival worker
func NewArchivalWorker(db *sqlx.DB, auditLog *audit.Repository, logger *zap.Logger, retention time.Duration, systemUserID uuid.UUID) *ArchivalWorker {
	return &ArchivalWorker{
		db:           db,
		auditLog:     auditLog,
		logger:       logger,
		retention:    retention,
		systemUserID: systemUserID,
	}
}

type staleProject struct {
	ID     uuid.UUID `db:"id"`
	Name   string    `db:"name"`
	Status string    `db:"status"`
}

// Sweep archives every approved project older than the retention window.
func (w *ArchivalWorker) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.retention)

	var stale []staleProject
	err := w.db.SelectContext(ctx, &stale, `
		SELECT id, name, status FROM projects
		WHERE status = $1 AND updated_at < $2 AND deleted_at IS NULL`,
		string(lifecycle.StateApproved), cutoff)
	if err != nil {
		w.logger.Error("failed to query stale projects", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	w.logger.Info("archiving stale approved projects", zap.Int("count", len(stale)))

	for _, project := range stale {
		current, err := lifecycle.ParseState(project.Status)
		if err != nil {
			w.logger.Error("project has corrupt status",
				zap.String("project_id", project.ID.String()), zap.Error(err))
			continue
		}

		decision := lifecycle.Validate(current, lifecycle.StateArchived, lifecycle.RoleAdmin)
		if !decision.Valid {
			w.logger.Warn("archival not permitted",
				zap.String("project_id", project.ID.String()),
				zap.String("reason", decision.Error))
			continue
		}

		// Guard against a concurrent transition since the select.
		result, err := w.db.ExecContext(ctx, `
			UPDATE projects SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3`,
			string(lifecycle.StateArchived), project.ID, project.Status)
		if err != nil {
			w.logger.Error("failed to archive project",
				zap.String("project_id", project.ID.String()), zap.Error(err))
			continue
		}
		if n, _ := result.RowsAffected(); n == 0 {
			continue
		}

		event := lifecycle.BuildAuditEvent(
			project.ID.String(), w.systemUserID.String(), lifecycle.RoleAdmin,
			current, lifecycle.StateArchived, "retention window elapsed")
		if err := w.auditLog.Append(ctx, event); err != nil {
			w.logger.Error("failed to append audit event",
				zap.String("project_id", project.ID.String()), zap.Error(err))
			continue
		}

		w.logger.Info("archived project",
			zap.String("project_id", project.ID.String()),
			zap.String("name", project.Name))
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	systemUserID := uuid.Nil
	if cfg.Archival.SystemUserID != "" {
		systemUserID, err = uuid.Parse(cfg.Archival.SystemUserID)
		if err != nil {
			logger.Fatal("Invalid archival system user id", zap.Error(err))
		}
	}

	worker := NewArchivalWorker(db, audit.NewRepository(db), logger,
		cfg.Archival.RetentionPeriod, systemUserID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Archival.Schedule, func() { worker.Sweep(ctx) }); err != nil {
		logger.Fatal("Invalid archival schedule", zap.Error(err))
	}
	scheduler.Start()

	logger.Info("Archival worker started",
		zap.String("schedule", cfg.Archival.Schedule),
		zap.Duration("retention", cfg.Archival.RetentionPeriod))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Archival worker shutting down")
	cancel()
	<-scheduler.Stop().Done()
}
