package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mypts/profile-api/internal/middleware"
	usersvc "github.com/mypts/profile-api/internal/service/user"
	apperrors "github.com/mypts/profile-api/pkg/errors"
)

type Handler struct {
	service *usersvc.Service
}

func NewHandler(service *usersvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users/me")
	{
		users.POST("/devices", h.RegisterDevice)
		users.PUT("/chat-settings", h.UpdateChatSettings)
	}
}

func (h *Handler) RegisterDevice(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid user ID"})
		return
	}

	var req usersvc.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	device, err := h.service.RegisterDevice(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": device})
}

func (h *Handler) UpdateChatSettings(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid user ID"})
		return
	}

	var req usersvc.UpdateChatSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	settings, err := h.service.UpdateChatSettings(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": settings})
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
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
}
