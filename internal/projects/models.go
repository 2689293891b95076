package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"voluma/capture-portal/capture-portal-backend/pkg/lifecycle"
)

// Project represents a managed 3D-capture project
type Project struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `json:"description"`
	Status       string         `gorm:"not null;default:'requested'" json:"status"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;not null" json:"owner_id"`
	TechnicianID *uuid.UUID     `gorm:"type:uuid" json:"technician_id,omitempty"`
	Location     string         `json:"location"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"` // free-form customer intake details
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// State returns the project's current lifecycle state.
func (p *Project) State() (lifecycle.ProjectState, error) {
	return lifecycle.ParseState(p.Status)
}

// ProjectActivity logs activities on the project
type ProjectActivity struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null" json:"project_id"`
	ActivityType string    `gorm:"not null" json:"activity_type"`
	Description  string    `json:"description"`
	UserID       uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProjectFilter narrows project listings
type ProjectFilter struct {
	OwnerID      *uuid.UUID
	TechnicianID *uuid.UUID
	Status       *lifecycle.ProjectState
	Limit        int
	Offset       int
}
