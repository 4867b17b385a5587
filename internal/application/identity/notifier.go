package identity

import (
	"context"

	"github.com/smartfertilizer/backend/internal/domain/identity"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ResetNotifier delivers a password reset link to the account owner
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, user *identity.User, resetURL string) error
}

// LogResetNotifier records that a reset link was issued. The link itself is
// never written to the log.
type LogResetNotifier struct {
	logger *zap.Logger
}

// NewLogResetNotifier creates a notifier that only logs
func NewLogResetNotifier(l *zap.Logger) *LogResetNotifier {
	return &LogResetNotifier{logger: l.Named("reset-notifier")}
}

// NotifyPasswordReset implements ResetNotifier
func (n *LogResetNotifier) NotifyPasswordReset(ctx context.Context, user *identity.User, _ string) error {
	logger.WithLogger(ctx, n.logger).Info("Password reset link issued",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", *user.ResetTokenExpiresAt),
	)
	return nil
}
