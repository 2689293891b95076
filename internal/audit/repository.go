package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"voluma/capture-portal/capture-portal-backend/pkg/lifecycle"
)

// eventRow is the storage shape of a transition audit event. Rows are only
// ever inserted; there are deliberately no update or delete methods on the
// repository.
type eventRow struct {
	ID        uuid.UUID `db:"id"`
	ProjectID uuid.UUID `db:"project_id"`
	UserID    uuid.UUID `db:"user_id"`
	UserRole  string    `db:"user_role"`
	FromState string    `db:"from_state"`
	ToState   string    `db:"to_state"`
	Reason    *string   `db:"reason"`
	Metadata  []byte    `db:"metadata"`
	Timestamp time.Time `db:"timestamp"`
}

// Repository persists transition audit events to Postgres
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new audit repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Append writes one committed transition event.
func (r *Repository) Append(ctx context.Context, event lifecycle.AuditEvent) error {
	projectID, err := uuid.Parse(event.ProjectID)
	if err != nil {
		return fmt.Errorf("invalid project id in audit event: %w", err)
	}
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id in audit event: %w", err)
	}

	var metadata []byte
	if len(event.Metadata) > 0 {
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}

	var reason *string
	if event.Reason != "" {
		reason = &event.Reason
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transition_audit_events
			(id, project_id, user_id, user_role, from_state, to_state, reason, metadata, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), projectID, userID, string(event.UserRole),
		string(event.FromState), string(event.ToState), reason, metadata, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByProject returns a project's transition history ordered by timestamp.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]lifecycle.AuditEvent, error) {
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, project_id, user_id, user_role, from_state, to_state, reason, metadata, timestamp
		FROM transition_audit_events
		WHERE project_id = $1
		ORDER BY timestamp ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}

	events := make([]lifecycle.AuditEvent, 0, len(rows))
	for _, row := range rows {
		event := lifecycle.AuditEvent{
			ProjectID: row.ProjectID.String(),
			UserID:    row.UserID.String(),
			UserRole:  lifecycle.Role(row.UserRole),
			FromState: lifecycle.ProjectState(row.FromState),
			ToState:   lifecycle.ProjectState(row.ToState),
			Timestamp: row.Timestamp,
		}
		if row.Reason != nil {
			event.Reason = *row.Reason
		}
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, nil
}
