package notifications

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"voluma/capture-portal/capture-portal-backend/internal/notifications/websocket"
	"voluma/capture-portal/capture-portal-backend/internal/projects"
	"voluma/capture-portal/capture-portal-backend/pkg/lifecycle"
)

// TransitionNotification is the payload broadcast for a committed transition.
type TransitionNotification struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	FromState   string `json:"from_state"`
	ToState     string `json:"to_state"`
	ActorRole   string `json:"actor_role"`
	Message     string `json:"message"`
}

// Service pushes project lifecycle notifications to connected portal
// clients. Delivery beyond the websocket hub (email, SMS) is handled by
// external systems consuming the audit log.
type Service struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

// NewService creates a notification service backed by the given hub.
func NewService(hub *websocket.Hub, logger *zap.Logger) *Service {
	return &Service{hub: hub, logger: logger}
}

// NotifyTransition broadcasts a committed transition. Best effort: failures
// are logged, never surfaced to the transition path.
func (s *Service) NotifyTransition(ctx context.Context, project *projects.Project, event lifecycle.AuditEvent) {
	notification := TransitionNotification{
		ProjectID:   event.ProjectID,
		ProjectName: project.Name,
		FromState:   string(event.FromState),
		ToState:     string(event.ToState),
		ActorRole:   string(event.UserRole),
		Message: fmt.Sprintf("Project %s moved from %s to %s (%s)",
			project.Name, event.FromState, event.ToState,
			lifecycle.Description(event.FromState, event.ToState)),
	}

	s.hub.Broadcast(websocket.Message{
		Type:      "project.transition",
		ProjectID: event.ProjectID,
		Payload:   notification,
		Timestamp: time.Now(),
	})

	s.logger.Debug("broadcast transition notification",
		zap.String("project_id", event.ProjectID),
		zap.String("from", string(event.FromState)),
		zap.String("to", string(event.ToState)))
}
