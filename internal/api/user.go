package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/teamchat/internal/apperr"
	"github.com/lalith-99/teamchat/internal/middleware"
	"github.com/lalith-99/teamchat/internal/repository"
	"go.uber.org/zap"
)

type UserHandler struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserHandler(repo repository.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{repo: repo, logger: logger}
}

// GetMe handles GET /v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.repo.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, "get user", err)
		return
	}
	// A valid token for a user that no longer exists.
	if user == nil {
		respondError(c, h.logger, "get user", apperr.NotFound("user"))
		return
	}

	c.JSON(http.StatusOK, user)
}
