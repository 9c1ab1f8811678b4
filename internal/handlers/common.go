package handlers

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the request tags gin's default validator does not know about.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("txtype", func(fl validator.FieldLevel) bool {
			return domain.TransactionType(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
			return domain.Frequency(fl.Field().String()).IsValid()
		})
	})
}

// currentUser fetches the authenticated user or writes a 401.
func currentUser(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		respondError(c, logger, apperrors.ErrUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

// respondError writes err as a failed Result. Request-caused failures are logged at
// warn, everything else at error.
func respondError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	body, status := dto.Failure(err)
	if body.ErrorKind == apperrors.KindInternal || body.ErrorKind == apperrors.KindConsistency {
		logger.Error(msg, slog.String("error", err.Error()), slog.String("error_kind", string(body.ErrorKind)))
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.String("error_kind", string(body.ErrorKind)))
	}
	c.JSON(status, body)
}

// bindingError wraps a gin binding failure so it classifies as a validation error.
func bindingError(err error) error {
	return apperrors.NewAppError(http.StatusBadRequest, "Invalid request format: "+err.Error(), apperrors.ErrValidation)
}
