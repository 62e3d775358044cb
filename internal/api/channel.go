package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/teamchat/internal/middleware"
	"github.com/lalith-99/teamchat/internal/service"
	"go.uber.org/zap"
)

// ChannelHandler holds what channel requests need. Handlers only parse and
// respond; authorization lives in the service.
type ChannelHandler struct {
	svc    *service.ChannelService
	logger *zap.Logger
}

func NewChannelHandler(svc *service.ChannelService, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{svc: svc, logger: logger}
}

// channelRequest is the body for create and rename. The server normalises
// the name, so "Q3 Planning" is stored as "q3-planning".
type channelRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create handles POST /v1/workspaces/:id/channels
func (h *ChannelHandler) Create(c *gin.Context) {
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req channelRequest
	if !bindJSON(c, &req) {
		return
	}

	ch, err := h.svc.Create(c.Request.Context(), wsID, req.Name, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "create channel", err)
		return
	}

	c.JSON(http.StatusCreated, ch)
}

// List handles GET /v1/workspaces/:id/channels
func (h *ChannelHandler) List(c *gin.Context) {
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	channels, err := h.svc.List(c.Request.Context(), wsID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "list channels", err)
		return
	}

	// Repositories return make([]T, 0), so this is [] and never null.
	c.JSON(http.StatusOK, channels)
}

// GetByID handles GET /v1/channels/:id
func (h *ChannelHandler) GetByID(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	ch, err := h.svc.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "get channel", err)
		return
	}

	c.JSON(http.StatusOK, ch)
}

// Rename handles PATCH /v1/channels/:id
func (h *ChannelHandler) Rename(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req channelRequest
	if !bindJSON(c, &req) {
		return
	}

	ch, err := h.svc.Rename(c.Request.Context(), id, req.Name, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "rename channel", err)
		return
	}

	c.JSON(http.StatusOK, ch)
}

// Remove handles DELETE /v1/channels/:id
func (h *ChannelHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.svc.Remove(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "remove channel", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": stats})
}
