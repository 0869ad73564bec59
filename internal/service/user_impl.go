package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"notes-server/internal/interfaces"
	"notes-server/internal/models"
)

type userServiceImpl struct {
	users  interfaces.UserRepository
	logger *zap.Logger
}

// NewUserService creates the UserService implementation.
func NewUserService(users interfaces.UserRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{
		users:  users,
		logger: logger.Named("UserService"),
	}
}

func (s *userServiceImpl) Register(ctx context.Context, username, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if name != "" {
		user.Name = &name
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("userID", user.ID.String()), zap.String("username", username))
	return user, nil
}

func (s *userServiceImpl) GetProfile(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *userServiceImpl) Search(ctx context.Context, term string) ([]models.UserSearchResult, error) {
	return s.users.Search(ctx, term)
}

func (s *userServiceImpl) GetUserImage(ctx context.Context, imageID uuid.UUID) (*models.UserImage, error) {
	return s.users.GetImage(ctx, imageID)
}
