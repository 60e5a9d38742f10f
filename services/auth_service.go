package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sparkychildcharlie/tournament-engine/models"
	"github.com/sparkychildcharlie/tournament-engine/repositories"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
}

type RegisterInput struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	nickname := strings.TrimSpace(input.Nickname)
	if nickname == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: nickname, email and password are required", ErrValidationFailed)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Nickname:     nickname,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleOrganizer,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrAuthEmailTaken
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			return nil, ErrAuthNicknameTaken
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}
