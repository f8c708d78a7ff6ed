package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mypts/profile-api/internal/middleware"
	"github.com/mypts/profile-api/internal/model"
	notificationsvc "github.com/mypts/profile-api/internal/service/notification"
	apperrors "github.com/mypts/profile-api/pkg/errors"
)

type Handler struct {
	service *notificationsvc.Service
}

func NewHandler(service *notificationsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.GetUnreadCount)
		notifications.PUT("/read-all", h.MarkAllAsRead)
		notifications.PUT("/:id/read", h.MarkAsRead)
		notifications.PUT("/:id/archive", h.ArchiveNotification)
		notifications.DELETE("/:id", h.DeleteNotification)
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid user ID"})
		return
	}

	filters := &model.NotificationFilters{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	}
	if v := c.Query("unread"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid unread filter"})
			return
		}
		isRead := !unread
		filters.IsRead = &isRead
	}
	if v := c.Query("archived"); v != "" {
		archived, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid archived filter"})
			return
		}
		filters.IsArchived = archived
	}

	page, err := h.service.GetUserNotifications(c.Request.Context(), userID, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": page})
}

func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid user ID"})
		return
	}

	count, err := h.service.GetUnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"unreadCount": count}})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	userID, notificationID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	n, err := h.service.MarkAsRead(c.Request.Context(), userID, notificationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": n})
}

func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid user ID"})
		return
	}

	updated, err := h.service.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"updated": updated}})
}

func (h *Handler) ArchiveNotification(c *gin.Context) {
	userID, notificationID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	n, err := h.service.ArchiveNotification(c.Request.Context(), userID, notificationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": n})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	userID, notificationID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	if err := h.service.DeleteNotification(c.Request.Context(), userID, notificationID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"deleted": true}})
}

func (h *Handler) pathIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid user ID"})
		return uuid.Nil, uuid.Nil, false
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid notification ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, notificationID, true
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": appErr.Message})
			return
		case apperrors.ErrBadRequest:
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": appErr.Message})
			return
		case apperrors.ErrUnauthorized:
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": appErr.Message})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
}
