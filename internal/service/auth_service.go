package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/shopcore/internal/domain"
	"github.com/xela07ax/shopcore/internal/infra"
	"go.uber.org/zap"
)

// CredentialsProvider описывает требования к хранилищу учетных записей.
type CredentialsProvider interface {
	GetUserByCredentials(ctx context.Context, email, password string) (*domain.User, error)
}

// TokenIssuer выпускает токен для готовых claims (реализуется кодеком).
type TokenIssuer interface {
	Encode(claims domain.Claims) (string, error)
}

type AuthService struct {
	repo     CredentialsProvider
	issuer   TokenIssuer
	throttle *LoginThrottle
	metrics  *infra.Metrics
	logger   *zap.Logger
}

func NewAuthService(repo CredentialsProvider, issuer TokenIssuer, throttle *LoginThrottle, metrics *infra.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		issuer:   issuer,
		throttle: throttle,
		metrics:  metrics,
		logger:   logger.Named("auth-service"),
	}
}

// Login проверяет учетные данные и выпускает токен.
// iss и sub клиента попадают в claims как есть (исторический контракт API);
// идентичность и роль — только из базы. exp проставит кодек.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	if !s.throttle.Allow(ctx, req.Email) {
		s.metrics.ThrottledLogins.Inc()
		s.logger.Warn("login throttled", zap.String("email", req.Email))
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.GetUserByCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("credentials lookup: %w", err)
	}
	if user == nil {
		// Неудачу считаем в троттлере; наружу — единый ответ без уточнений
		s.throttle.Fail(ctx, req.Email)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Encode(domain.Claims{
		Issuer:  req.Issuer,
		Subject: req.Subject,
		Email:   req.Email,
		UserID:  user.ID,
		Role:    user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("token issued",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role))

	return &domain.TokenResponse{Token: token}, nil
}
