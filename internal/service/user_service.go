package service

import (
	"context"

	"postmarket/internal/models"
	"postmarket/internal/repository"
	"postmarket/internal/validation"
)

// UserService covers profile management and the admin user console.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the editable profile fields. Empty fields
// are left unchanged.
type UpdateProfileInput struct {
	UserID   uint
	Username string
	Phone    string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, filter)
}

// UpdateProfile applies a partial profile update. Changing the phone
// number clears the verified flag until the new number is confirmed.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != user.ID {
			return nil, models.NewDuplicateError("Username already taken")
		}
		user.Username = in.Username
	}
	if in.Phone != "" && in.Phone != user.Phone {
		if err := validation.ValidatePhone(in.Phone); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Phone = in.Phone
		user.PhoneVerified = false
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes a user's role. Admin only.
func (s *UserService) SetRole(ctx context.Context, targetID uint, role models.UserRole) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, models.NewValidationError("Invalid role")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetStatus suspends or reactivates an account. Admin only.
func (s *UserService) SetStatus(ctx context.Context, targetID uint, status models.UserStatus) (*models.User, error) {
	if status != models.StatusActive && status != models.StatusSuspended {
		return nil, models.NewValidationError("Invalid status")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser soft-deletes an account. Admin only.
func (s *UserService) DeleteUser(ctx context.Context, targetID uint) error {
	return s.userRepo.Delete(ctx, targetID)
}

// MarkPhoneVerified records a completed phone verification.
func (s *UserService) MarkPhoneVerified(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PhoneVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
