package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/middleware"
	"github.com/SscSPs/finance_tracker/internal/platform/observability"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("finance-tracker/services")

// BaseService provides common functionality for all services
type BaseService struct {
	GroupAuthorizer portssvc.GroupAuthorizerSvc
	Metrics         *observability.Metrics

	clock func() time.Time
}

// Option configures the BaseService embedded in every service.
type Option func(*BaseService)

// WithClock replaces time.Now, mainly so tests can pin "now".
func WithClock(clock func() time.Time) Option {
	return func(s *BaseService) {
		s.clock = clock
	}
}

// WithGroupAuthorizer adds the group membership gate.
func WithGroupAuthorizer(authorizer portssvc.GroupAuthorizerSvc) Option {
	return func(s *BaseService) {
		s.GroupAuthorizer = authorizer
	}
}

// WithMetrics adds the Prometheus metrics sink.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *BaseService) {
		s.Metrics = metrics
	}
}

func (s *BaseService) apply(opts []Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// now is the service clock in UTC.
func (s *BaseService) now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// logFailure logs err at error level unless it describes the request rather than the system.
func (s *BaseService) logFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	if apperrors.IsDomainError(err) && !errors.Is(err, apperrors.ErrConsistency) {
		args := make([]any, 0, len(keyvals)+1)
		args = append(args, slog.String("reason", err.Error()))
		args = append(args, keyvals...)
		s.LogDebug(ctx, msg, args...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

// AuthorizeGroup checks if a user has the required role in a group.
// Without an authorizer every group action is refused.
func (s *BaseService) AuthorizeGroup(ctx context.Context, userID, groupID string, requiredRole domain.GroupRole) error {
	if s.GroupAuthorizer == nil {
		s.LogWarn(ctx, "No group authorizer configured, refusing group action",
			slog.String("user_id", userID),
			slog.String("group_id", groupID))
		return apperrors.ErrForbidden
	}
	return s.GroupAuthorizer.AuthorizeGroupAction(ctx, userID, groupID, requiredRole)
}
