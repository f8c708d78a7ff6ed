package event

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mypts/profile-api/internal/model"
	notificationsvc "github.com/mypts/profile-api/internal/service/notification"
)

// Handler turns domain events reported by other services into
// notifications. A skipped notification (dangling entity reference) still
// returns success because the triggering action already happened.
type Handler struct {
	factory *notificationsvc.Factory
}

func NewHandler(factory *notificationsvc.Factory) *Handler {
	return &Handler{factory: factory}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.POST("/profile-view", h.ProfileViewed)
		events.POST("/connection-request", h.ConnectionRequested)
		events.POST("/profile-connection-request", h.ProfileConnectionRequested)
		events.POST("/profile-connection-accepted", h.ProfileConnectionAccepted)
		events.POST("/endorsement", h.EndorsementReceived)
		events.POST("/badge-earned", h.BadgeEarned)
		events.POST("/badge-suggestion", h.BadgeSuggestionUpdated)
		events.POST("/milestone", h.MilestoneReached)
	}
}

type profileViewRequest struct {
	OwnerID         uuid.UUID `json:"ownerId" binding:"required"`
	ViewedProfileID uuid.UUID `json:"viewedProfileId" binding:"required"`
	ViewerProfileID uuid.UUID `json:"viewerProfileId" binding:"required"`
}

func (h *Handler) ProfileViewed(c *gin.Context) {
	var req profileViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	n, err := h.factory.CreateProfileViewNotification(c.Request.Context(), req.OwnerID, req.ViewedProfileID, req.ViewerProfileID)
	respond(c, n, err)
}

type connectionRequest struct {
	RecipientID uuid.UUID `json:"recipientId" binding:"required"`
	SenderID    uuid.UUID `json:"senderId" binding:"required"`
}

func (h *Handler) ConnectionRequested(c *gin.Context) {
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	n, err := h.factory.CreateConnectionRequestNotification(c.Request.Context(), req.RecipientID, req.SenderID)
	respond(c, n, err)
}

type profileConnectionRequest struct {
	RecipientID   uuid.UUID `json:"recipientId" binding:"required"`
	FromProfileID uuid.UUID `json:"fromProfileId" binding:"required"`
	ToProfileID   uuid.UUID `json:"toProfileId" binding:"required"`
	ConnectionID  uuid.UUID `json:"connectionId" binding:"required"`
	Reason        string    `json:"reason"`
}

func (h *Handler) ProfileConnectionRequested(c *gin.Context) {
	var req profileConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	n, err := h.factory.CreateProfileConnectionRequestNotification(c.Request.Context(),
		req.RecipientID, req.FromProfileID, req.ToProfileID, req.ConnectionID, req.Reason)
	respond(c, n, err)
}

type profileConnectionAccepted struct {
	RecipientID        uuid.UUID `json:"recipientId" binding:"required"`
	AccepterProfileID  uuid.UUID `json:"accepterProfileId" binding:"required"`
	RequesterProfileID uuid.UUID `json:"requesterProfileId" binding:"required"`
	ConnectionID       uuid.UUID `json:"connectionId" binding:"required"`
}

func (h *Handler) ProfileConnectionAccepted(c *gin.Context) {
	var req profileConnectionAccepted
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	n, err := h.factory.CreateProfileConnectionAcceptedNotification(c.Request.Context(),
		req.RecipientID, req.AccepterProfileID, req.RequesterProfileID, req.ConnectionID)
	respond(c, n, err)
}

type endorsementRequest struct {
	RecipientID       uuid.UUID `json:"recipientId" binding:"required"`
	EndorserProfileID uuid.UUID `json:"endorserProfileId" binding:"required"`
	EndorsedProfileID uuid.UUID `json:"endorsedProfileId" binding:"required"`
	Skill             string    `json:"skill" binding:"required"`
}

func (h *Handler) EndorsementReceived(c *gin.Context) {
	var req endorsementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	n, err := h.factory.CreateEndorsementNotification(c.Request.Context(),
		req.RecipientID, req.EndorserProfileID, req.EndorsedProfileID, req.Skill)
	respond(c, n, err)
}

type badgeEarnedRequest struct {
	RecipientID uuid.UUID `json:"recipientId" binding:"required"`
	ProfileID   uuid.UUID `json:"profileId" binding:"required"`
	BadgeName   string    `json:"badgeName" binding:"required"`
	Description string    `json:"description"`
}

func (h *Handler) BadgeEarned(c *gin.Context) {
	var req badgeEarnedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	n, err := h.factory.CreateBadgeEarnedNotification(c.Request.Context(),
		req.RecipientID, req.ProfileID, req.BadgeName, req.Description)
	respond(c, n, err)
}

type badgeSuggestionRequest struct {
	RecipientID  uuid.UUID `json:"recipientId" binding:"required"`
	SuggestionID uuid.UUID `json:"suggestionId" binding:"required"`
	BadgeName    string    `json:"badgeName" binding:"required"`
	Status       string    `json:"status" binding:"required,oneof=approved rejected implemented"`
	Reason       string    `json:"reason"`
}

func (h *Handler) BadgeSuggestionUpdated(c *gin.Context) {
	var req badgeSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	var n *model.Notification
	var err error
	switch req.Status {
	case "approved":
		n, err = h.factory.CreateBadgeSuggestionApprovedNotification(c.Request.Context(), req.RecipientID, req.SuggestionID, req.BadgeName)
	case "rejected":
		n, err = h.factory.CreateBadgeSuggestionRejectedNotification(c.Request.Context(), req.RecipientID, req.SuggestionID, req.BadgeName, req.Reason)
	case "implemented":
		n, err = h.factory.CreateBadgeSuggestionImplementedNotification(c.Request.Context(), req.RecipientID, req.SuggestionID, req.BadgeName)
	}
	respond(c, n, err)
}

type milestoneRequest struct {
	RecipientID   uuid.UUID `json:"recipientId" binding:"required"`
	ProfileID     uuid.UUID `json:"profileId" binding:"required"`
	Milestone     string    `json:"milestone" binding:"required"`
	CurrentPoints float64   `json:"currentPoints"`
}

func (h *Handler) MilestoneReached(c *gin.Context) {
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	n, err := h.factory.CreateMilestoneNotification(c.Request.Context(),
		req.RecipientID, req.ProfileID, req.Milestone, req.CurrentPoints)
	respond(c, n, err)
}

func respond(c *gin.Context, n *model.Notification, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if n == nil {
		// Referenced entity disappeared between the event and now.
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"skipped": true}})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": n})
}
