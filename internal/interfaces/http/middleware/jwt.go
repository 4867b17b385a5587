package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/identity"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/infrastructure/auth"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"github.com/smartfertilizer/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	JWTRoleKey    = "jwt_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Messages returned when authentication fails
const (
	MsgNoToken      = "Not authorized, no token"
	MsgTokenFailed  = "Not authorized, token failed"
	MsgTokenExpired = "Not authorized, token expired"
	MsgTokenRevoked = "Not authorized, session has been invalidated"
	MsgUserNotFound = "Not authorized, user not found"
)

// UserLookup loads the account a token was issued to
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional; when set, tokens issued before a password reset are rejected
	TokenBlacklist auth.TokenBlacklist
	// Users is optional; when set, tokens of deleted accounts are rejected
	Users  UserLookup
	Logger *zap.Logger
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, MsgNoToken)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, MsgNoToken)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			msg := MsgTokenFailed
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = MsgTokenExpired
			}
			abortUnauthorized(c, cfg, err, msg)
			return
		}

		userID, err := claims.UserUUID()
		if err != nil {
			abortUnauthorized(c, cfg, auth.ErrMissingUserID, MsgTokenFailed)
			return
		}

		ctx := c.Request.Context()
		if cfg.TokenBlacklist != nil {
			revoked, err := cfg.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
			if err != nil {
				// fail open: the blacklist store being down must not lock everyone out
				logger.WithLogger(ctx, cfg.Logger).Error("Failed to check token revocation",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			} else if revoked {
				abortUnauthorized(c, cfg, auth.ErrTokenRevoked, MsgTokenRevoked)
				return
			}
		}

		role := claims.Role
		if cfg.Users != nil {
			user, err := cfg.Users.FindByID(ctx, userID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					abortUnauthorized(c, cfg, err, MsgUserNotFound)
					return
				}
				logger.WithLogger(ctx, cfg.Logger).Error("Failed to load token owner", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Server error"))
				return
			}
			role = string(user.Role)
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, role)
		c.Request = c.Request.WithContext(logger.WithUserID(ctx, claims.UserID))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	logger.WithLogger(c.Request.Context(), cfg.Logger).Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(message))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTRole retrieves the authenticated user's role
func GetJWTRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}
