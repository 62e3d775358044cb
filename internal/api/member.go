package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/middleware"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/service"
	"go.uber.org/zap"
)

type MemberHandler struct {
	svc    *service.MemberService
	logger *zap.Logger
}

func NewMemberHandler(svc *service.MemberService, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{svc: svc, logger: logger}
}

// updateRoleRequest relies on the custom "role" tag from RegisterValidators.
type updateRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// List handles GET /v1/workspaces/:id/members?after=<member id>&limit=50
func (h *MemberHandler) List(c *gin.Context) {
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	after, ok := optionalUUIDQuery(c, "after")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}

	cursor := uuid.Nil
	if after != nil {
		cursor = *after
	}

	page, err := h.svc.List(c.Request.Context(), wsID, middleware.GetUserID(c), cursor, limit)
	if err != nil {
		respondError(c, h.logger, "list members", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Current handles GET /v1/workspaces/:id/members/me
func (h *MemberHandler) Current(c *gin.Context) {
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.Current(c.Request.Context(), wsID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "get current member", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Get handles GET /v1/members/:id
func (h *MemberHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "get member", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateRole handles PATCH /v1/members/:id
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.UpdateRole(c.Request.Context(), id, models.Role(req.Role), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "update member role", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Remove handles DELETE /v1/members/:id
func (h *MemberHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.svc.Remove(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "remove member", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": stats})
}
