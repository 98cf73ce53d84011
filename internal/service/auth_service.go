// Package service contains the application's business logic, sitting
// between the HTTP handlers and the repositories.
package service

import (
	"context"

	"postmarket/internal/auth"
	"postmarket/internal/models"
	"postmarket/internal/repository"
	"postmarket/internal/validation"
)

// AuthService handles registration, sign-in and session verification.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.Tokens
}

// SignUpInput carries the fields of a registration request.
type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// NewAuthService returns a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.Tokens) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// SignUp registers a new account and issues its first session token.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, string, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", models.NewDuplicateError("Email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", models.NewDuplicateError("Username already taken")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleUser,
		Status:   models.StatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// SignIn verifies credentials and issues a session token. Unknown email
// and wrong password produce the identical error so the response never
// reveals whether an address is registered.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !auth.CheckPassword(user.Password, password) {
		return nil, "", models.NewUnauthorizedError("Invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// VerifyToken validates a session token and returns the user ID it carries.
func (s *AuthService) VerifyToken(token string) (uint, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid or expired session")
	}
	return userID, nil
}

// GetUser loads the account behind a verified session.
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
