package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/teamchat/internal/middleware"
	"github.com/lalith-99/teamchat/internal/service"
	"go.uber.org/zap"
)

type WorkspaceHandler struct {
	svc    *service.WorkspaceService
	logger *zap.Logger
}

func NewWorkspaceHandler(svc *service.WorkspaceService, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, logger: logger}
}

type workspaceNameRequest struct {
	Name string `json:"name" binding:"required"`
}

type joinRequest struct {
	JoinCode string `json:"join_code" binding:"required"`
}

// Create handles POST /v1/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req workspaceNameRequest
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.svc.Create(c.Request.Context(), req.Name, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "create workspace", err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

// List handles GET /v1/workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "list workspaces", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ws, err := h.svc.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "get workspace", err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// Info handles GET /v1/workspaces/:id/info, the join page lookup.
func (h *WorkspaceHandler) Info(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	info, err := h.svc.Info(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "get workspace info", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Rename handles PATCH /v1/workspaces/:id
func (h *WorkspaceHandler) Rename(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req workspaceNameRequest
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.svc.Rename(c.Request.Context(), id, req.Name, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "rename workspace", err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// Delete handles DELETE /v1/workspaces/:id
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.svc.Delete(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "delete workspace", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": stats})
}

// RegenerateJoinCode handles POST /v1/workspaces/:id/join-code
func (h *WorkspaceHandler) RegenerateJoinCode(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ws, err := h.svc.RegenerateJoinCode(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "regenerate join code", err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// Join handles POST /v1/workspaces/:id/join
func (h *WorkspaceHandler) Join(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req joinRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.Join(c.Request.Context(), id, req.JoinCode, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "join workspace", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}
