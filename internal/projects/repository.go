package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStatusConflict is returned when a concurrent transition changed the
// project's status between read and write.
var ErrStatusConflict = errors.New("project status changed concurrently")

// ProjectRepository persists projects
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	Update(ctx context.Context, project *Project) error
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) error
	List(ctx context.Context, filter ProjectFilter) ([]*Project, error)
}

// ActivityRepository persists project activity log entries
type ActivityRepository interface {
	Create(ctx context.Context, activity *ProjectActivity) error
}

type gormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a gorm-backed project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) Create(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *gormProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *gormProjectRepository) Update(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// UpdateStatus commits a status change guarded by the status the caller
// validated against. Zero rows affected means another transition won the
// race and the caller must re-read and re-validate.
func (r *gormProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) error {
	result := r.db.WithContext(ctx).Model(&Project{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]any{"status": toStatus, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("update project status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *gormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	query := r.db.WithContext(ctx).Model(&Project{})
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.TechnicianID != nil {
		query = query.Where("technician_id = ?", *filter.TechnicianID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var projects []*Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

type gormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a gorm-backed activity repository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &gormActivityRepository{db: db}
}

func (r *gormActivityRepository) Create(ctx context.Context, activity *ProjectActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}
