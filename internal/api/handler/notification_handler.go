package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/dto"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/storage"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	logger  *slog.Logger
	storage *storage.Storage
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{
		logger:  deps.Logger,
		storage: deps.Storage,
	}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString(CtxUserID)
	userRole := c.GetString(CtxUserRole)

	notifications, err := h.storage.ListNotifications(c.Request.Context(), userID, userRole)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	out := make([]dto.NotificationDTO, len(notifications))
	for i, n := range notifications {
		out[i] = dto.NotificationDTO{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
	}
	respondOK(c, http.StatusOK, out)
}

// MarkRead handles PATCH /api/v1/notifications/:notification_id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID := c.Param("notification_id")
	if _, err := uuid.Parse(notificationID); err != nil {
		respondError(c, http.StatusBadRequest, "notification_id must be a valid UUID")
		return
	}

	userID := c.GetString(CtxUserID)
	if err := h.storage.MarkNotificationRead(c.Request.Context(), notificationID, userID); err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"read": true})
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString(CtxUserID)
	userRole := c.GetString(CtxUserRole)

	count, err := h.storage.MarkAllNotificationsRead(c.Request.Context(), userID, userRole)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"marked_read": count})
}
