package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/service"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/storage"
)

// Context keys set by the identity middleware.
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	Storage      *storage.Storage
	Applications *service.ApplicationService
	Offers       *service.OfferService
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

// respondDomainError maps domain errors onto HTTP statuses. Unknown
// errors become a 500 with a generic message so internals never leak.
func respondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	var early *domain.EarlyCompletionError
	switch {
	case errors.As(err, &early):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":        false,
			"error":          early.Error(),
			"scheduled_end":  early.ScheduledEnd,
			"time_remaining": domain.FormatWait(early.Remaining),
		})
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrJobDeleted):
		respondError(c, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrAlreadyApplied),
		errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, domain.ErrAlreadyConfirmed),
		errors.Is(err, domain.ErrOfferExpired),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidState):
		respondError(c, http.StatusConflict, err.Error())
	default:
		logger.Error("Request failed", slog.String("error", err.Error()))
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
