package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/middleware"
	"github.com/lalith-99/teamchat/internal/service"
	"go.uber.org/zap"
)

type ConversationHandler struct {
	svc    *service.ConversationService
	logger *zap.Logger
}

func NewConversationHandler(svc *service.ConversationService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{svc: svc, logger: logger}
}

type conversationRequest struct {
	MemberID uuid.UUID `json:"member_id" binding:"required"`
}

// CreateOrGet handles POST /v1/workspaces/:id/conversations. It answers 200
// whether or not the conversation already existed.
func (h *ConversationHandler) CreateOrGet(c *gin.Context) {
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req conversationRequest
	if !bindJSON(c, &req) {
		return
	}
	conv, err := h.svc.CreateOrGet(c.Request.Context(), wsID, req.MemberID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "open conversation", err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Get handles GET /v1/conversations/:id
func (h *ConversationHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	conv, err := h.svc.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "get conversation", err)
		return
	}
	c.JSON(http.StatusOK, conv)
}
