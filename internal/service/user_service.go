package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xela07ax/shopcore/internal/domain"
	"go.uber.org/zap"
)

// UserRepository описывает требования к хранилищу пользователей
type UserRepository interface {
	ListUsers(ctx context.Context, role string) ([]domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	InsertUser(ctx context.Context, id, name, email, password, role string) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, upd domain.UserUpdate) (bool, error)
	DeleteUser(ctx context.Context, userID string) error
}

type UserService struct {
	repo   UserRepository
	logger *zap.Logger
}

func NewUserService(repo UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger.Named("user-service")}
}

// Register заводит пользователя. Email уникален в пределах системы.
func (s *UserService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	existing, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("email lookup: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	user, err := s.repo.InsertUser(ctx, uuid.NewString(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role))
	return user, nil
}

func (s *UserService) List(ctx context.Context, role string) ([]domain.User, error) {
	return s.repo.ListUsers(ctx, role)
}

func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, userID string, upd domain.UserUpdate) error {
	found, err := s.repo.UpdateUser(ctx, userID, upd)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, userID string) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return s.repo.DeleteUser(ctx, userID)
}
