package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/teamchat/internal/middleware"
	"github.com/lalith-99/teamchat/internal/service"
	"go.uber.org/zap"
)

type MessageHandler struct {
	svc       *service.MessageService
	reactions *service.ReactionService
	logger    *zap.Logger
}

func NewMessageHandler(svc *service.MessageService, reactions *service.ReactionService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, reactions: reactions, logger: logger}
}

type editMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

type toggleReactionRequest struct {
	Value string `json:"value" binding:"required"`
}

// Create handles POST /v1/messages
func (h *MessageHandler) Create(c *gin.Context) {
	var req service.PostInput
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.Post(c.Request.Context(), req, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "post message", err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// List handles GET /v1/messages?channel_id=...&before=123&limit=50
//
// Exactly one of channel_id, conversation_id or parent_message_id selects
// the scope. "before" is a message id: pass the previous page's
// next_cursor to continue. 0 or absent starts from the latest.
func (h *MessageHandler) List(c *gin.Context) {
	var (
		in service.ListInput
		ok bool
	)
	if in.ChannelID, ok = optionalUUIDQuery(c, "channel_id"); !ok {
		return
	}
	if in.ConversationID, ok = optionalUUIDQuery(c, "conversation_id"); !ok {
		return
	}
	if p := c.Query("parent_message_id"); p != "" {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			badRequest(c, "invalid 'parent_message_id' parameter")
			return
		}
		in.ParentMessageID = &id
	}
	if b := c.Query("before"); b != "" {
		before, err := strconv.ParseInt(b, 10, 64)
		if err != nil || before < 0 {
			badRequest(c, "invalid 'before' parameter")
			return
		}
		in.Before = before
	}
	if in.Limit, ok = intQuery(c, "limit"); !ok {
		return
	}

	page, err := h.svc.List(c.Request.Context(), in, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "list messages", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /v1/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	id, ok := messageIDParam(c)
	if !ok {
		return
	}
	view, err := h.svc.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "get message", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Edit handles PATCH /v1/messages/:id
func (h *MessageHandler) Edit(c *gin.Context) {
	id, ok := messageIDParam(c)
	if !ok {
		return
	}
	var req editMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.Edit(c.Request.Context(), id, req.Body, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "edit message", err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Remove handles DELETE /v1/messages/:id
func (h *MessageHandler) Remove(c *gin.Context) {
	id, ok := messageIDParam(c)
	if !ok {
		return
	}
	stats, err := h.svc.Remove(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "remove message", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": stats})
}

// ToggleReaction handles POST /v1/messages/:id/reactions. reaction_id is
// null when the toggle removed the caller's reaction.
func (h *MessageHandler) ToggleReaction(c *gin.Context) {
	id, ok := messageIDParam(c)
	if !ok {
		return
	}
	var req toggleReactionRequest
	if !bindJSON(c, &req) {
		return
	}
	reactionID, err := h.reactions.Toggle(c.Request.Context(), id, req.Value, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "toggle reaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reaction_id": reactionID})
}

// ListReactions handles GET /v1/messages/:id/reactions
func (h *MessageHandler) ListReactions(c *gin.Context) {
	id, ok := messageIDParam(c)
	if !ok {
		return
	}
	groups, err := h.reactions.ListForMessage(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "list reactions", err)
		return
	}
	c.JSON(http.StatusOK, groups)
}
