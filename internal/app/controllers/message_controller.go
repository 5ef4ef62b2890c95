package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
)

// MessageController handles direct messages between users
type MessageController struct {
	messageService services.MessageService
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService, logger zerolog.Logger) *MessageController {
	return &MessageController{
		messageService: messageService,
		logger:         logger,
	}
}

// ListContacts godoc
// @Summary List conversations
// @Description Every user the caller has exchanged messages with, latest conversation first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ContactResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse
// @Router /messages/contacts [get]
func (c *MessageController) ListContacts(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}

	contacts, err := c.messageService.ListContacts(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, contacts)
}

// GetConversation godoc
// @Summary Get conversation
// @Description The full thread with another user, oldest first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.APIResponse{data=dto.ConversationResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /messages/conversations/{userId} [get]
func (c *MessageController) GetConversation(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}
	otherID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	conversation, err := c.messageService.GetConversation(ctx.Request.Context(), userID, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, conversation)
}

// SendMessage godoc
// @Summary Send message
// @Description Stores a message and pushes it to both participants' open connections
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Empty or oversized text"
// @Failure 404 {object} dto.ErrorResponse "Receiver not found"
// @Router /messages [post]
func (c *MessageController) SendMessage(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	msg, err := c.messageService.SendMessage(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, msg)
}

// MarkRead godoc
// @Summary Mark conversation read
// @Description Marks every unread message from the other user to the caller as read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.APIResponse{data=dto.MarkReadResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /messages/conversations/{userId}/read [post]
func (c *MessageController) MarkRead(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}
	otherID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	updated, err := c.messageService.MarkRead(ctx.Request.Context(), userID, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.MarkReadResponse{Updated: updated})
}

// UnreadCount godoc
// @Summary Unread count
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse}
// @Router /messages/unread-count [get]
func (c *MessageController) UnreadCount(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}

	count, err := c.messageService.UnreadCount(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// ListRecipients godoc
// @Summary List recipients
// @Description Every other user the caller may write to
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.RecipientResponse}
// @Router /messages/recipients [get]
func (c *MessageController) ListRecipients(ctx *gin.Context) {
	userID, ok := c.caller(ctx)
	if !ok {
		return
	}

	recipients, err := c.messageService.ListRecipients(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, recipients)
}

func (c *MessageController) caller(ctx *gin.Context) (int64, bool) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return 0, false
	}
	return scope.UserID, true
}
