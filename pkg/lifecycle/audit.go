package lifecycle

import "time"

// AuditEvent is an immutable record of a committed transition, intended for
// append-only storage keyed by project and ordered by Timestamp.
type AuditEvent struct {
	ProjectID string            `json:"project_id"`
	UserID    string            `json:"user_id"`
	UserRole  Role              `json:"user_role"`
	FromState ProjectState      `json:"from_state"`
	ToState   ProjectState      `json:"to_state"`
	Reason    string            `json:"reason,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// BuildAuditEvent constructs the event to persist after a transition has
// been committed. It does not re-validate the transition; callers invoke it
// only after Validate has returned a valid decision.
func BuildAuditEvent(projectID, userID string, role Role, from, to ProjectState, reason string) AuditEvent {
	return AuditEvent{
		ProjectID: projectID,
		UserID:    userID,
		UserRole:  role,
		FromState: from,
		ToState:   to,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}
