package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkbase/inkbase/internal/audit"
	"github.com/inkbase/inkbase/internal/config"
	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/internal/ratelimit"
	"github.com/inkbase/inkbase/internal/repository"
	"github.com/inkbase/inkbase/internal/security"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
	"github.com/inkbase/inkbase/pkg/validator"
)

type AuthService struct {
	cfg         *config.Config
	userRepo    *repository.UserRepository
	hasher      *security.PasswordHasher
	validator   *validator.Validator
	rateLimiter *ratelimit.RateLimiter
	auditLogger *audit.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	cfg *config.Config,
	userRepo *repository.UserRepository,
	rateLimiter *ratelimit.RateLimiter,
	auditLogger *audit.Logger,
) *AuthService {
	return &AuthService{
		cfg:         cfg,
		userRepo:    userRepo,
		hasher:      security.NewPasswordHasher(),
		validator:   validator.New(),
		rateLimiter: rateLimiter,
		auditLogger: auditLogger,
	}
}

// Register registers a new user
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := s.rateLimiter.CheckLimit("register"); err != nil {
		s.auditLogger.Log(&audit.Event{
			Level:    audit.LevelWarning,
			Action:   "REGISTER_RATE_LIMITED",
			Resource: "auth",
			Success:  false,
			ErrorMsg: "rate limit exceeded",
		})
		return nil, err
	}

	req.Username = s.validator.SanitizeString(req.Username)
	req.Email = s.validator.SanitizeString(req.Email)

	if err := s.validator.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleUser
	if s.cfg.IsAdminEmail(req.Email) {
		role = models.RoleAdmin
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.auditLogger.Log(&audit.Event{
			Level:    audit.LevelWarning,
			Action:   "REGISTER_FAILED",
			Resource: "auth",
			Success:  false,
			ErrorMsg: err.Error(),
			Metadata: req.Email,
		})
		return nil, err
	}

	s.auditLogger.Log(&audit.Event{
		Level:    audit.LevelInfo,
		UserID:   user.ID,
		Action:   "REGISTER_SUCCESS",
		Resource: "auth",
		Success:  true,
	})

	return user, nil
}

// Login authenticates a user and issues a bearer token
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	rateLimitKey := fmt.Sprintf("login:%s", req.Email)
	if err := s.rateLimiter.CheckLimit(rateLimitKey); err != nil {
		s.auditLogger.Log(&audit.Event{
			Level:    audit.LevelWarning,
			Action:   "LOGIN_RATE_LIMITED",
			Resource: "auth",
			Success:  false,
			ErrorMsg: "rate limit exceeded",
			Metadata: req.Email,
		})
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Run a dummy verification so the response time does not reveal
		// whether the account exists
		s.hasher.Verify(req.Password, "$argon2id$v=19$m=65536,t=3,p=2$c29tZXNhbHQ$somehash")

		s.auditLogger.Log(&audit.Event{
			Level:    audit.LevelWarning,
			Action:   "LOGIN_USER_NOT_FOUND",
			Resource: "auth",
			Success:  false,
			Metadata: req.Email,
		})
		return nil, apperrors.ErrInvalidCredential
	}

	valid, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !valid {
		s.auditLogger.Log(&audit.Event{
			Level:    audit.LevelWarning,
			UserID:   user.ID,
			Action:   "LOGIN_INVALID_PASSWORD",
			Resource: "auth",
			Success:  false,
		})
		return nil, apperrors.ErrInvalidCredential
	}

	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.auditLogger.Log(&audit.Event{
		Level:    audit.LevelInfo,
		UserID:   user.ID,
		Action:   "LOGIN_SUCCESS",
		Resource: "auth",
		Success:  true,
	})

	return &models.LoginResponse{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// IssueToken signs a short-lived bearer token carrying the subject id
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// VerifyToken validates a bearer token and resolves its subject. A bad
// signature or expired token fails as an invalid credential; a valid
// token whose subject no longer exists fails as unauthenticated.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrInvalidCredential
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, apperrors.ErrInvalidCredential
	}

	user, err := s.userRepo.GetByID(ctx, sub)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}

	return user, nil
}
