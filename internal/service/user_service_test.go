package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskcom/internal/models"
	"taskcom/internal/repository"
	"taskcom/internal/service"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) CountActive(ctx context.Context, companyID uuid.UUID) (int, error) {
	args := m.Called(ctx, companyID)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) SetPropertyAssignments(ctx context.Context, userID uuid.UUID, propertyIDs []uuid.UUID) error {
	args := m.Called(ctx, userID, propertyIDs)
	return args.Error(0)
}

func (m *MockUserRepository) SetGroupAssignments(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) error {
	args := m.Called(ctx, userID, groupIDs)
	return args.Error(0)
}

func (m *MockUserRepository) PropertyAssignments(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, r *models.Role) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Role, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Role, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

var _ repository.RoleRepository = (*MockRoleRepository)(nil)

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, c *models.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

var _ repository.CompanyRepository = (*MockCompanyRepository)(nil)

func TestUserService_CreateUser(t *testing.T) {
	companyID := uuid.New()
	roleID := uuid.New()

	staffRole := &models.Role{ID: roleID, CompanyID: companyID, Name: "staff"}
	clientRole := &models.Role{ID: roleID, CompanyID: companyID, Name: "client", IsClientRole: true}
	basicCompany := &models.Company{ID: companyID, Plan: models.PlanBasic, MaxUsers: 5}
	unlimitedCompany := &models.Company{ID: companyID, Plan: models.PlanUnlimited}

	tests := []struct {
		name        string
		role        *models.Role
		company     *models.Company
		active      int
		propertyIDs []uuid.UUID
		expectCode  string
	}{
		{
			name:    "staff user under the seat limit",
			role:    staffRole,
			company: basicCompany,
			active:  3,
		},
		{
			name:       "seat limit reached",
			role:       staffRole,
			company:    basicCompany,
			active:     5,
			expectCode: "SEAT_LIMIT_REACHED",
		},
		{
			name:    "unlimited plan never hits the limit",
			role:    staffRole,
			company: unlimitedCompany,
			active:  500,
		},
		{
			name:       "client role without property is rejected",
			role:       clientRole,
			company:    basicCompany,
			active:     1,
			expectCode: "CLIENT_ROLE_NEEDS_PROPERTY",
		},
		{
			name:        "client role with property succeeds",
			role:        clientRole,
			company:     basicCompany,
			active:      1,
			propertyIDs: []uuid.UUID{uuid.New()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			roles := new(MockRoleRepository)
			companies := new(MockCompanyRepository)

			roles.On("GetByID", mock.Anything, companyID, roleID).Return(tt.role, nil)
			companies.On("GetByID", mock.Anything, companyID).Return(tt.company, nil).Maybe()
			users.On("CountActive", mock.Anything, companyID).Return(tt.active, nil).Maybe()
			users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Maybe()
			users.On("SetPropertyAssignments", mock.Anything, mock.Anything, tt.propertyIDs).Return(nil).Maybe()

			svc := service.NewUserService(users, roles, companies)
			user, err := svc.CreateUser(context.Background(), companyID,
				"Jordan", "jordan@example.com", "secret123", roleID, tt.propertyIDs)

			if tt.expectCode != "" {
				var businessErr *service.BusinessError
				require.ErrorAs(t, err, &businessErr)
				assert.Equal(t, tt.expectCode, businessErr.Code)
				users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.True(t, user.Active)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
		})
	}
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	companyID := uuid.New()
	roleID := uuid.New()

	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	companies := new(MockCompanyRepository)

	roles.On("GetByID", mock.Anything, companyID, roleID).
		Return(&models.Role{ID: roleID, CompanyID: companyID}, nil)
	companies.On("GetByID", mock.Anything, companyID).
		Return(&models.Company{ID: companyID, Plan: models.PlanUnlimited}, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrUniqueViolation)

	svc := service.NewUserService(users, roles, companies)
	_, err := svc.CreateUser(context.Background(), companyID,
		"Jordan", "taken@example.com", "secret123", roleID, nil)

	var businessErr *service.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "DUPLICATE_NAME", businessErr.Code)
}

func TestUserService_Deactivate(t *testing.T) {
	companyID := uuid.New()
	stored := &models.User{ID: uuid.New(), CompanyID: companyID, Active: true}

	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, companyID, stored.ID).Return(stored, nil)
	users.On("Update", mock.Anything, stored).Return(nil)

	svc := service.NewUserService(users, new(MockRoleRepository), new(MockCompanyRepository))
	user, err := svc.Deactivate(context.Background(), companyID, stored.ID)

	require.NoError(t, err)
	assert.False(t, user.Active)
}
