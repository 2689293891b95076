package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"voluma/capture-portal/capture-portal-backend/pkg/lifecycle"
)

// Requests

type CreateProjectRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	OwnerID     uuid.UUID         `json:"owner_id"`
	Location    string            `json:"location"`
	Metadata    map[string]string `json:"metadata"`
}

// TransitionRequest asks to move a project to a target lifecycle state on
// behalf of an acting user whose role has already been resolved.
type TransitionRequest struct {
	ProjectID uuid.UUID
	Target    lifecycle.ProjectState
	UserID    uuid.UUID
	Role      lifecycle.Role
	Reason    string
}

// TransitionResult reports the outcome of a transition attempt. A rejected
// move is not an error: Decision.Valid is false and Committed stays false.
// Valid same-state no-ops also leave Committed false since nothing changed.
type TransitionResult struct {
	Project   *Project
	Decision  lifecycle.TransitionDecision
	Committed bool
}

// AuditLog is the append-only store for committed transition events.
type AuditLog interface {
	Append(ctx context.Context, event lifecycle.AuditEvent) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]lifecycle.AuditEvent, error)
}

// Notifier is told about committed transitions. Delivery is best effort.
type Notifier interface {
	NotifyTransition(ctx context.Context, project *Project, event lifecycle.AuditEvent)
}

// Service interface
type ProjectService interface {
	CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error)
	Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error)
	NextStates(ctx context.Context, id uuid.UUID, role lifecycle.Role) ([]lifecycle.ProjectState, error)
	History(ctx context.Context, id uuid.UUID) ([]lifecycle.AuditEvent, error)
}

// Implementation
type projectService struct {
	projectRepo  ProjectRepository
	activityRepo ActivityRepository
	auditLog     AuditLog
	notifier     Notifier
	logger       *zap.Logger
}

func NewProjectService(
	projectRepo ProjectRepository,
	activityRepo ActivityRepository,
	auditLog AuditLog,
	notifier Notifier,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		projectRepo:  projectRepo,
		activityRepo: activityRepo,
		auditLog:     auditLog,
		notifier:     notifier,
		logger:       logger,
	}
}

func (s *projectService) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.OwnerID == uuid.Nil {
		return nil, errors.New("owner_id is required")
	}

	project := &Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      string(lifecycle.StateRequested),
		OwnerID:     req.OwnerID,
		Location:    req.Location,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal project metadata: %w", err)
		}
		project.Metadata = datatypes.JSON(raw)
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, project.ID, req.OwnerID, "CREATED",
		fmt.Sprintf("Capture project %s requested", project.Name))

	return project, nil
}

func (s *projectService) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

func (s *projectService) ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	return s.projectRepo.List(ctx, filter)
}

// Transition validates and commits a lifecycle move. The read-validate-write
// sequence is guarded by an optimistic status check in the repository, so a
// concurrent transition on the same project surfaces as ErrStatusConflict.
func (s *projectService) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	if !req.Target.Valid() {
		return nil, fmt.Errorf("unknown target state %q", req.Target)
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	project, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	current, err := project.State()
	if err != nil {
		return nil, fmt.Errorf("project %s has corrupt status: %w", project.ID, err)
	}

	decision := lifecycle.Validate(current, req.Target, req.Role)
	result := &TransitionResult{Project: project, Decision: decision}
	if !decision.Valid {
		return result, nil
	}
	if decision.Rule == nil {
		// Same-state no-op: nothing to commit, nothing to audit.
		return result, nil
	}

	if err := s.projectRepo.UpdateStatus(ctx, project.ID, string(current), string(req.Target)); err != nil {
		return nil, err
	}
	project.Status = string(req.Target)
	project.UpdatedAt = time.Now()
	result.Committed = true

	event := lifecycle.BuildAuditEvent(
		project.ID.String(), req.UserID.String(), req.Role, current, req.Target, req.Reason)
	if err := s.auditLog.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append audit event: %w", err)
	}

	s.recordActivity(ctx, project.ID, req.UserID, "STATUS_CHANGED",
		fmt.Sprintf("Status changed from %s to %s: %s", current, req.Target, decision.Rule.Description))

	if s.notifier != nil {
		s.notifier.NotifyTransition(ctx, project, event)
	}

	return result, nil
}

func (s *projectService) NextStates(ctx context.Context, id uuid.UUID, role lifecycle.Role) ([]lifecycle.ProjectState, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := project.State()
	if err != nil {
		return nil, fmt.Errorf("project %s has corrupt status: %w", project.ID, err)
	}
	return lifecycle.ValidNextStates(current, role), nil
}

func (s *projectService) History(ctx context.Context, id uuid.UUID) ([]lifecycle.AuditEvent, error) {
	return s.auditLog.ListByProject(ctx, id)
}

func (s *projectService) recordActivity(ctx context.Context, projectID, userID uuid.UUID, activityType, description string) {
	activity := &ProjectActivity{
		ProjectID:    projectID,
		ActivityType: activityType,
		Description:  description,
		UserID:       userID,
		CreatedAt:    time.Now(),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record project activity",
			zap.String("project_id", projectID.String()),
			zap.String("activity_type", activityType),
			zap.Error(err))
	}
}
