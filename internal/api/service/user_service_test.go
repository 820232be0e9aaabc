package service

import (
	"context"
	"testing"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newTestUserService(userRepo *MockUserRepository) UserService {
	return NewUserService(userRepo, &config.Config{ReservedUsernames: []string{"me"}})
}

func TestUserCreate_DefaultsRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := newTestUserService(mockUserRepo)

	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Create(context.Background(), dto.CreateUserDTO{
		Username: "newuser",
		Email:    "new@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestUserCreate_AdminMayAssignRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := newTestUserService(mockUserRepo)

	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Create(context.Background(), dto.CreateUserDTO{
		Username: "newmod",
		Email:    "mod@example.com",
		Role:     models.RoleModerator,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleModerator, user.Role)
}

func TestUserCreate_InvalidRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := newTestUserService(mockUserRepo)

	user, err := svc.Create(context.Background(), dto.CreateUserDTO{
		Username: "newuser",
		Email:    "new@example.com",
		Role:     "overlord",
	})

	assert.Nil(t, user)
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "role")
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserCreate_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := newTestUserService(mockUserRepo)

	user, err := svc.Create(context.Background(), dto.CreateUserDTO{
		Username: "me",
		Email:    "me@example.com",
	})

	assert.Nil(t, user)
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "username")
}

func TestUserUpdate_AdminMayChangeRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := newTestUserService(mockUserRepo)

	stored := &models.User{ID: "user-id", Username: "plain", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "plain").Return(stored, nil)
	mockUserRepo.On("Save", mock.Anything, stored).Return(nil)

	role := models.RoleModerator
	updated, err := svc.Update(context.Background(), "plain", dto.UpdateUserDTO{Role: &role})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)
}

func TestUserUpdateSelf_RoleDiscarded(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := newTestUserService(mockUserRepo)

	stored := &models.User{ID: "user-id", Username: "plain", Role: models.RoleUser}
	mockUserRepo.On("FindByID", mock.Anything, "user-id").Return(stored, nil)
	mockUserRepo.On("Save", mock.Anything, stored).Return(nil)

	role := models.RoleAdmin
	bio := "hello"
	updated, err := svc.UpdateSelf(context.Background(), "user-id", dto.UpdateUserDTO{
		Role: &role,
		Bio:  &bio,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, updated.Role)
	assert.Equal(t, "hello", updated.Bio)
}

func TestUserGet_NotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := newTestUserService(mockUserRepo)

	mockUserRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	user, err := svc.GetByUsername(context.Background(), "ghost")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDelete_NotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := newTestUserService(mockUserRepo)

	mockUserRepo.On("DeleteByUsername", mock.Anything, "ghost").Return(gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrNotFound)
}
