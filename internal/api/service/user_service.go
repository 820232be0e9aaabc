package service

import (
	"context"
	"errors"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/config"

	"gorm.io/gorm"
)

type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, d dto.CreateUserDTO) (*models.User, error)
	Update(ctx context.Context, username string, d dto.UpdateUserDTO) (*models.User, error)
	Delete(ctx context.Context, username string) error

	GetSelf(ctx context.Context, userID string) (*models.User, error)
	UpdateSelf(ctx context.Context, userID string, d dto.UpdateUserDTO) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	reserved []string
}

func NewUserService(userRepo repository.UserRepository, cfg *config.Config) UserService {
	return &userService{userRepo: userRepo, reserved: cfg.ReservedUsernames}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, search, page, pageSize)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create is the admin path: unlike signup it may assign any role and skips
// the confirmation-code flow.
func (s *userService) Create(ctx context.Context, d dto.CreateUserDTO) (*models.User, error) {
	if errs := validateUsername(d.Username, s.reserved); errs != nil {
		return nil, errs
	}
	role := d.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, fieldError("role", "role must be one of: user, moderator, admin")
	}

	user := &models.User{
		Username:  d.Username,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Bio:       d.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if fe := signupConflict(err); fe != nil {
			return nil, fe
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, username string, d dto.UpdateUserDTO) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, d, true)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.userRepo.DeleteByUsername(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *userService) GetSelf(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateSelf edits the caller's own profile. The role field is discarded, so
// a user cannot promote themselves.
func (s *userService) UpdateSelf(ctx context.Context, userID string, d dto.UpdateUserDTO) (*models.User, error) {
	user, err := s.GetSelf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, d, false)
}

func (s *userService) apply(ctx context.Context, user *models.User, d dto.UpdateUserDTO, allowRole bool) (*models.User, error) {
	if d.Username != nil {
		if errs := validateUsername(*d.Username, s.reserved); errs != nil {
			return nil, errs
		}
		user.Username = *d.Username
	}
	if d.Email != nil {
		user.Email = *d.Email
	}
	if d.FirstName != nil {
		user.FirstName = *d.FirstName
	}
	if d.LastName != nil {
		user.LastName = *d.LastName
	}
	if d.Bio != nil {
		user.Bio = *d.Bio
	}
	if d.Role != nil && allowRole {
		if !models.ValidRole(*d.Role) {
			return nil, fieldError("role", "role must be one of: user, moderator, admin")
		}
		user.Role = *d.Role
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if fe := signupConflict(err); fe != nil {
			return nil, fe
		}
		return nil, err
	}
	return user, nil
}
