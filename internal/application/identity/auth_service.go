package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/identity"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/infrastructure/auth"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Messages returned to clients
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgForgotPassword     = "If an account with that email exists, a password reset link has been sent."
	MsgPasswordReset      = "Password has been reset successfully. Please log in with your new password."
	msgDatabaseDown       = "Database not available. Please try again later."
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	ResetTokenTTL    time.Duration
	FrontendURL      string
	ExposeResetToken bool // return the raw token and link in the response (non-production)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	notifier   ResetNotifier
	db         HealthChecker
	config     AuthServiceConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	notifier ResetNotifier,
	db HealthChecker,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		notifier:   notifier,
		db:         db,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates an account and returns a bearer token for it
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	log := logger.WithLogger(ctx, s.logger)

	user, err := identity.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDatabase(ctx); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Server error during registration")
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeConflict, "User already exists")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if shared.IsCode(err, shared.CodeConflict) {
			return nil, err
		}
		return nil, shared.Wrap(err, shared.CodeInternal, "Server error during registration")
	}

	log.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	log := logger.WithLogger(ctx, s.logger)

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Login failed: unknown email")
			return nil, shared.NewDomainError(shared.CodeUnauthorized, MsgInvalidCredentials)
		}
		return nil, shared.Wrap(err, shared.CodeInternal, "Server error during login")
	}

	if !user.VerifyPassword(input.Password) {
		log.Warn("Login failed: wrong password", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError(shared.CodeUnauthorized, MsgInvalidCredentials)
	}

	log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// ForgotPassword issues a reset token when the account exists. The message
// is the same either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error) {
	log := logger.WithLogger(ctx, s.logger)
	result := &ForgotPasswordResult{Message: MsgForgotPassword}

	if err := s.ensureDatabase(ctx); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Info("Password reset requested for unknown email")
			return result, nil
		}
		return nil, shared.Wrap(err, shared.CodeInternal, "Server error processing password reset")
	}

	rawToken, err := user.IssueResetToken(s.now(), s.config.ResetTokenTTL)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Server error processing password reset")
	}

	resetURL := s.config.FrontendURL + "/reset-password/" + rawToken
	if err := s.notifier.NotifyPasswordReset(ctx, user, resetURL); err != nil {
		log.Error("Failed to deliver password reset link", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	if s.config.ExposeResetToken {
		result.ResetToken = rawToken
		result.ResetURL = resetURL
	}
	return result, nil
}

// ResetPassword consumes a reset token and revokes every bearer token issued before it
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	log := logger.WithLogger(ctx, s.logger)

	if err := identity.ValidatePasswordLength(input.Password); err != nil {
		return shared.NewValidationError(shared.FieldError{Field: "password", Message: err.Error()})
	}

	user, err := s.userRepo.FindByResetTokenHash(ctx, identity.HashResetToken(input.Token))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return identity.ErrInvalidResetToken
		}
		return shared.Wrap(err, shared.CodeInternal, "Server error resetting password")
	}

	if err := user.ResetPassword(input.Token, input.Password, s.now()); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return shared.Wrap(err, shared.CodeInternal, "Server error resetting password")
	}

	if s.blacklist != nil {
		if err := s.blacklist.InvalidateUserTokens(ctx, user.ID.String(), s.jwtService.Expiration()); err != nil {
			log.Error("Failed to revoke tokens after password reset",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	log.Info("Password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "User not found")
		}
		return nil, shared.Wrap(err, shared.CodeInternal, "Server error loading profile")
	}
	info := ToUserInfo(user)
	return &info, nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to generate authentication token")
	}
	return &AuthResult{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      ToUserInfo(user),
	}, nil
}

func (s *AuthService) ensureDatabase(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Ping(ctx); err != nil {
		logger.WithLogger(ctx, s.logger).Error("Database health check failed", zap.Error(err))
		return shared.Wrap(err, shared.CodeServiceUnavailable, msgDatabaseDown)
	}
	return nil
}
