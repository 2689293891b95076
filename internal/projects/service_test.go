package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voluma/capture-portal/capture-portal-backend/pkg/lifecycle"
)

// MockProjectRepository is a mock implementation of ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) error {
	args := m.Called(ctx, id, fromStatus, toStatus)
	return args.Error(0)
}

func (m *MockProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*Project), args.Error(1)
}

// MockActivityRepository is a mock implementation of ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *ProjectActivity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

// MockAuditLog is a mock implementation of AuditLog
type MockAuditLog struct {
	mock.Mock
}

func (m *MockAuditLog) Append(ctx context.Context, event lifecycle.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditLog) ListByProject(ctx context.Context, projectID uuid.UUID) ([]lifecycle.AuditEvent, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]lifecycle.AuditEvent), args.Error(1)
}

// MockNotifier records broadcast transitions
type MockNotifier struct {
	events []lifecycle.AuditEvent
}

func (m *MockNotifier) NotifyTransition(ctx context.Context, project *Project, event lifecycle.AuditEvent) {
	m.events = append(m.events, event)
}

func newTestService(projectRepo *MockProjectRepository, activityRepo *MockActivityRepository, auditLog *MockAuditLog, notifier *MockNotifier) ProjectService {
	return NewProjectService(projectRepo, activityRepo, auditLog, notifier, zap.NewNop())
}

func TestCreateProject(t *testing.T) {
	projectRepo := new(MockProjectRepository)
	activityRepo := new(MockActivityRepository)
	auditLog := new(MockAuditLog)
	notifier := &MockNotifier{}
	service := newTestService(projectRepo, activityRepo, auditLog, notifier)

	ctx := context.Background()
	ownerID := uuid.New()

	projectRepo.On("Create", ctx, mock.AnythingOfType("*projects.Project")).Return(nil)
	activityRepo.On("Create", ctx, mock.AnythingOfType("*projects.ProjectActivity")).Return(nil)

	project, err := service.CreateProject(ctx, CreateProjectRequest{
		Name:    "Warehouse scan",
		OwnerID: ownerID,
	})

	require.NoError(t, err)
	assert.Equal(t, string(lifecycle.StateRequested), project.Status)
	assert.Equal(t, ownerID, project.OwnerID)
	projectRepo.AssertExpectations(t)
}

func TestCreateProjectRequiresName(t *testing.T) {
	service := newTestService(new(MockProjectRepository), new(MockActivityRepository), new(MockAuditLog), &MockNotifier{})

	_, err := service.CreateProject(context.Background(), CreateProjectRequest{OwnerID: uuid.New()})
	assert.Error(t, err)
}

func TestTransitionCommitsAndAudits(t *testing.T) {
	projectRepo := new(MockProjectRepository)
	activityRepo := new(MockActivityRepository)
	auditLog := new(MockAuditLog)
	notifier := &MockNotifier{}
	service := newTestService(projectRepo, activityRepo, auditLog, notifier)

	ctx := context.Background()
	projectID := uuid.New()
	userID := uuid.New()
	project := &Project{
		ID:      projectID,
		Name:    "Warehouse scan",
		Status:  string(lifecycle.StateRequested),
		OwnerID: uuid.New(),
	}

	projectRepo.On("GetByID", ctx, projectID).Return(project, nil)
	projectRepo.On("UpdateStatus", ctx, projectID, "requested", "assigned").Return(nil)
	auditLog.On("Append", ctx, mock.AnythingOfType("lifecycle.AuditEvent")).Return(nil)
	activityRepo.On("Create", ctx, mock.AnythingOfType("*projects.ProjectActivity")).Return(nil)

	result, err := service.Transition(ctx, TransitionRequest{
		ProjectID: projectID,
		Target:    lifecycle.StateAssigned,
		UserID:    userID,
		Role:      lifecycle.RoleAdmin,
		Reason:    "assigning field tech",
	})

	require.NoError(t, err)
	assert.True(t, result.Decision.Valid)
	assert.True(t, result.Committed)
	assert.Equal(t, string(lifecycle.StateAssigned), result.Project.Status)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, lifecycle.StateRequested, notifier.events[0].FromState)
	assert.Equal(t, lifecycle.StateAssigned, notifier.events[0].ToState)
	assert.Equal(t, "assigning field tech", notifier.events[0].Reason)

	projectRepo.AssertExpectations(t)
	auditLog.AssertExpectations(t)
}

func TestTransitionRejectedIsNotAnError(t *testing.T) {
	projectRepo := new(MockProjectRepository)
	service := newTestService(projectRepo, new(MockActivityRepository), new(MockAuditLog), &MockNotifier{})

	ctx := context.Background()
	projectID := uuid.New()
	project := &Project{
		ID:     projectID,
		Status: string(lifecycle.StateProcessing),
	}

	projectRepo.On("GetByID", ctx, projectID).Return(project, nil)

	result, err := service.Transition(ctx, TransitionRequest{
		ProjectID: projectID,
		Target:    lifecycle.StateArchived,
		UserID:    uuid.New(),
		Role:      lifecycle.RoleTechnician,
	})

	require.NoError(t, err)
	assert.False(t, result.Decision.Valid)
	assert.False(t, result.Committed)
	assert.Contains(t, result.Decision.Error, "technician")
	// Nothing was persisted: no UpdateStatus, no audit append.
	projectRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionNoOpDoesNotCommit(t *testing.T) {
	projectRepo := new(MockProjectRepository)
	auditLog := new(MockAuditLog)
	service := newTestService(projectRepo, new(MockActivityRepository), auditLog, &MockNotifier{})

	ctx := context.Background()
	projectID := uuid.New()
	project := &Project{
		ID:     projectID,
		Status: string(lifecycle.StateQA),
	}

	projectRepo.On("GetByID", ctx, projectID).Return(project, nil)

	result, err := service.Transition(ctx, TransitionRequest{
		ProjectID: projectID,
		Target:    lifecycle.StateQA,
		UserID:    uuid.New(),
		Role:      lifecycle.RoleApprover,
	})

	require.NoError(t, err)
	assert.True(t, result.Decision.Valid)
	assert.False(t, result.Committed)
	auditLog.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestTransitionSurfacesStatusConflict(t *testing.T) {
	projectRepo := new(MockProjectRepository)
	service := newTestService(projectRepo, new(MockActivityRepository), new(MockAuditLog), &MockNotifier{})

	ctx := context.Background()
	projectID := uuid.New()
	project := &Project{
		ID:     projectID,
		Status: string(lifecycle.StateQA),
	}

	projectRepo.On("GetByID", ctx, projectID).Return(project, nil)
	projectRepo.On("UpdateStatus", ctx, projectID, "qa", "delivered").Return(ErrStatusConflict)

	_, err := service.Transition(ctx, TransitionRequest{
		ProjectID: projectID,
		Target:    lifecycle.StateDelivered,
		UserID:    uuid.New(),
		Role:      lifecycle.RoleApprover,
	})

	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestTransitionRejectsUnknownTarget(t *testing.T) {
	service := newTestService(new(MockProjectRepository), new(MockActivityRepository), new(MockAuditLog), &MockNotifier{})

	_, err := service.Transition(context.Background(), TransitionRequest{
		ProjectID: uuid.New(),
		Target:    lifecycle.ProjectState("shipped"),
		UserID:    uuid.New(),
		Role:      lifecycle.RoleAdmin,
	})
	assert.Error(t, err)
}

func TestNextStates(t *testing.T) {
	projectRepo := new(MockProjectRepository)
	service := newTestService(projectRepo, new(MockActivityRepository), new(MockAuditLog), &MockNotifier{})

	ctx := context.Background()
	projectID := uuid.New()
	project := &Project{
		ID:     projectID,
		Status: string(lifecycle.StateQA),
	}

	projectRepo.On("GetByID", ctx, projectID).Return(project, nil)

	states, err := service.NextStates(ctx, projectID, lifecycle.RoleApprover)
	require.NoError(t, err)
	assert.ElementsMatch(t, []lifecycle.ProjectState{
		lifecycle.StateDelivered,
		lifecycle.StateCaptured,
		lifecycle.StateArchived,
	}, states)
}
