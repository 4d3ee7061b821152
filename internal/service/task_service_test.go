package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskcom/internal/logger"
	"taskcom/internal/models"
	"taskcom/internal/repository"
	"taskcom/internal/service"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t *models.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *models.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) SoftDelete(ctx context.Context, t *models.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Task, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskRepository) DueBefore(ctx context.Context, deadline time.Time, limit int) ([]*models.Task, error) {
	args := m.Called(ctx, deadline, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

var _ repository.TaskRepository = (*MockTaskRepository)(nil)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, companyID, userID, taskID uuid.UUID, message string) {
	m.Called(ctx, companyID, userID, taskID, message)
}

func TestTaskService_CreateTask(t *testing.T) {
	companyID := uuid.New()
	creatorID := uuid.New()
	assigneeID := uuid.New()
	due := time.Now().AddDate(0, 0, 7)

	tests := []struct {
		name        string
		title       string
		assignee    uuid.UUID
		due         time.Time
		setupMock   func(*MockTaskRepository, *MockNotifier)
		expectCode  string
		expectError bool
	}{
		{
			name:     "success notifies the assignee",
			title:    "Inspect boiler",
			assignee: assigneeID,
			due:      due,
			setupMock: func(repo *MockTaskRepository, n *MockNotifier) {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Task")).Return(nil)
				n.On("Notify", mock.Anything, companyID, assigneeID, mock.Anything, mock.Anything).Return()
			},
		},
		{
			name:        "empty title is rejected",
			title:       "",
			assignee:    assigneeID,
			due:         due,
			setupMock:   func(repo *MockTaskRepository, n *MockNotifier) {},
			expectCode:  "VALIDATION_ERROR",
			expectError: true,
		},
		{
			name:        "missing due date is rejected",
			title:       "Inspect boiler",
			assignee:    assigneeID,
			due:         time.Time{},
			setupMock:   func(repo *MockTaskRepository, n *MockNotifier) {},
			expectCode:  "VALIDATION_ERROR",
			expectError: true,
		},
		{
			name:        "missing assignee is rejected",
			title:       "Inspect boiler",
			assignee:    uuid.Nil,
			due:         due,
			setupMock:   func(repo *MockTaskRepository, n *MockNotifier) {},
			expectCode:  "VALIDATION_ERROR",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			mockNotifier := new(MockNotifier)
			tt.setupMock(mockRepo, mockNotifier)

			svc := service.NewTaskService(mockRepo, mockNotifier)
			task, err := svc.CreateTask(context.Background(), companyID, creatorID,
				tt.title, "desc", tt.assignee, uuid.New(), uuid.New(), tt.due)

			if tt.expectError {
				require.Error(t, err)
				var businessErr *service.BusinessError
				require.ErrorAs(t, err, &businessErr)
				assert.Equal(t, tt.expectCode, businessErr.Code)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.StatePending, task.State)
				assert.Equal(t, companyID, task.CompanyID)
				mockNotifier.AssertExpectations(t)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_CreateTask_SelfAssignedSkipsNotification(t *testing.T) {
	creatorID := uuid.New()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockNotifier := new(MockNotifier)

	svc := service.NewTaskService(mockRepo, mockNotifier)
	_, err := svc.CreateTask(context.Background(), uuid.New(), creatorID,
		"self task", "", creatorID, uuid.New(), uuid.New(), time.Now().AddDate(0, 0, 1))

	require.NoError(t, err)
	mockNotifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_ToggleTask(t *testing.T) {
	companyID := uuid.New()

	tests := []struct {
		name          string
		initial       models.State
		expectedState models.State
		expectCode    string
	}{
		{
			name:          "pending becomes completed",
			initial:       models.StatePending,
			expectedState: models.StateCompleted,
		},
		{
			name:          "completed reverts to pending",
			initial:       models.StateCompleted,
			expectedState: models.StatePending,
		},
		{
			name:       "deleted cannot be toggled",
			initial:    models.StateDeleted,
			expectCode: "TASK_DELETED",
		},
		{
			name:       "unknown state is rejected",
			initial:    models.State("archived"),
			expectCode: "INVALID_STATE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completedAt := time.Now().Add(-time.Hour)
			stored := &models.Task{
				ID:         uuid.New(),
				CompanyID:  companyID,
				Title:      "toggle me",
				State:      tt.initial,
				CreatorID:  uuid.New(),
				AssigneeID: uuid.New(),
				DueDate:    time.Now().AddDate(0, 0, 1),
			}
			if tt.initial == models.StateCompleted {
				stored.CompletedAt = &completedAt
			}

			mockRepo := new(MockTaskRepository)
			mockRepo.On("GetByID", mock.Anything, companyID, stored.ID).Return(stored, nil)
			if tt.expectCode == "" {
				mockRepo.On("Update", mock.Anything, stored).Return(nil)
			}

			mockNotifier := new(MockNotifier)
			mockNotifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()

			svc := service.NewTaskService(mockRepo, mockNotifier)
			task, err := svc.ToggleTask(context.Background(), companyID, stored.ID)

			if tt.expectCode != "" {
				var businessErr *service.BusinessError
				require.ErrorAs(t, err, &businessErr)
				assert.Equal(t, tt.expectCode, businessErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedState, task.State)
			if tt.expectedState == models.StateCompleted {
				assert.NotNil(t, task.CompletedAt)
			} else {
				assert.Nil(t, task.CompletedAt)
			}
		})
	}
}

func TestTaskService_ToggleTask_RoundTrip(t *testing.T) {
	companyID := uuid.New()
	stored := &models.Task{
		ID:         uuid.New(),
		CompanyID:  companyID,
		Title:      "round trip",
		State:      models.StatePending,
		CreatorID:  uuid.New(),
		AssigneeID: uuid.New(),
		DueDate:    time.Now().AddDate(0, 0, 1),
	}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetByID", mock.Anything, companyID, stored.ID).Return(stored, nil)
	mockRepo.On("Update", mock.Anything, stored).Return(nil)
	mockNotifier := new(MockNotifier)
	mockNotifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()

	svc := service.NewTaskService(mockRepo, mockNotifier)

	task, err := svc.ToggleTask(context.Background(), companyID, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateCompleted, task.State)
	require.NotNil(t, task.CompletedAt)

	task, err = svc.ToggleTask(context.Background(), companyID, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, task.State)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskService_UpdateTask(t *testing.T) {
	companyID := uuid.New()
	originalAssignee := uuid.New()
	newAssignee := uuid.New()

	stored := &models.Task{
		ID:         uuid.New(),
		CompanyID:  companyID,
		Title:      "original",
		State:      models.StatePending,
		AssigneeID: originalAssignee,
		DueDate:    time.Now().AddDate(0, 0, 1),
	}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetByID", mock.Anything, companyID, stored.ID).Return(stored, nil)
	mockRepo.On("Update", mock.Anything, stored).Return(nil)

	mockNotifier := new(MockNotifier)
	mockNotifier.On("Notify", mock.Anything, companyID, newAssignee, stored.ID, mock.Anything).Return()

	svc := service.NewTaskService(mockRepo, mockNotifier)
	task, err := svc.UpdateTask(context.Background(), companyID, stored.ID,
		models.WithTitle("renamed"), models.WithAssignee(newAssignee))

	require.NoError(t, err)
	assert.Equal(t, "renamed", task.Title)
	assert.Equal(t, newAssignee, task.AssigneeID)
	mockNotifier.AssertExpectations(t)
}

func TestTaskService_UpdateTask_VersionConflict(t *testing.T) {
	companyID := uuid.New()
	stored := &models.Task{
		ID:        uuid.New(),
		CompanyID: companyID,
		Title:     "contended",
		State:     models.StatePending,
	}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetByID", mock.Anything, companyID, stored.ID).Return(stored, nil)
	mockRepo.On("Update", mock.Anything, stored).Return(repository.ErrVersionConflict)

	svc := service.NewTaskService(mockRepo, new(MockNotifier))
	_, err := svc.UpdateTask(context.Background(), companyID, stored.ID, models.WithTitle("mine"))

	var businessErr *service.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "VERSION_CONFLICT", businessErr.Code)
}

func TestTaskService_DeleteTask(t *testing.T) {
	companyID := uuid.New()

	t.Run("soft delete succeeds", func(t *testing.T) {
		stored := &models.Task{ID: uuid.New(), CompanyID: companyID, State: models.StatePending}

		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, companyID, stored.ID).Return(stored, nil)
		mockRepo.On("SoftDelete", mock.Anything, stored).Return(nil)

		svc := service.NewTaskService(mockRepo, new(MockNotifier))
		_, err := svc.DeleteTask(context.Background(), companyID, stored.ID)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("deleting twice fails", func(t *testing.T) {
		stored := &models.Task{ID: uuid.New(), CompanyID: companyID, State: models.StateDeleted}

		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, companyID, stored.ID).Return(stored, nil)

		svc := service.NewTaskService(mockRepo, new(MockNotifier))
		_, err := svc.DeleteTask(context.Background(), companyID, stored.ID)

		var businessErr *service.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, "TASK_DELETED", businessErr.Code)
	})

	t.Run("unknown id maps to NOT_FOUND", func(t *testing.T) {
		id := uuid.New()
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, companyID, id).Return(nil, repository.ErrNotFound)

		svc := service.NewTaskService(mockRepo, new(MockNotifier))
		_, err := svc.DeleteTask(context.Background(), companyID, id)

		var businessErr *service.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, "NOT_FOUND", businessErr.Code)
	})
}
