package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/teamchat/internal/middleware"
	"github.com/lalith-99/teamchat/internal/repository"
	"github.com/lalith-99/teamchat/internal/service"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// RouterConfig is everything NewRouter needs to wire the HTTP surface.
type RouterConfig struct {
	Store     repository.Store
	Logger    *zap.Logger
	JWTSecret string
	TokenTTL  time.Duration

	// Sessions enables logout revocation. Nil disables it.
	Sessions middleware.RevocationStore

	// RateLimiter is optional.
	RateLimiter *middleware.RateLimiter

	// Health is optional; without it /v1/health only reports liveness.
	Health Pinger
}

// NewRouter builds the services over cfg.Store and registers every route.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	cascade := service.NewCascadeEngine(logger)

	workspaces := NewWorkspaceHandler(service.NewWorkspaceService(cfg.Store, cascade, logger), logger)
	members := NewMemberHandler(service.NewMemberService(cfg.Store, cascade, logger), logger)
	channels := NewChannelHandler(service.NewChannelService(cfg.Store, cascade, logger), logger)
	conversations := NewConversationHandler(service.NewConversationService(cfg.Store), logger)
	messages := NewMessageHandler(
		service.NewMessageService(cfg.Store, cascade, logger),
		service.NewReactionService(cfg.Store),
		logger,
	)
	authH := NewAuthHandler(cfg.Store.Users(), cfg.Sessions, cfg.JWTSecret, cfg.TokenTTL, logger)
	users := NewUserHandler(cfg.Store.Users(), logger)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimiter != nil {
		limit = cfg.RateLimiter.Middleware()
	}

	// Health is public so load balancers can probe it.
	r.GET("/v1/health", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health.Health(c.Request.Context()); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/v1/auth", limit)
	public.POST("/signup", authH.Signup)
	public.POST("/login", authH.Login)

	// Everything else needs a valid token. The limiter runs after auth so
	// signed-in callers get their own bucket.
	var revoker middleware.Revoker
	if cfg.Sessions != nil {
		revoker = cfg.Sessions
	}
	v1 := r.Group("/v1", middleware.AuthMiddleware(cfg.JWTSecret, revoker, logger), limit)

	v1.POST("/auth/logout", authH.Logout)
	v1.GET("/users/me", users.GetMe)

	v1.POST("/workspaces", workspaces.Create)
	v1.GET("/workspaces", workspaces.List)
	v1.GET("/workspaces/:id", workspaces.Get)
	v1.GET("/workspaces/:id/info", workspaces.Info)
	v1.PATCH("/workspaces/:id", workspaces.Rename)
	v1.DELETE("/workspaces/:id", workspaces.Delete)
	v1.POST("/workspaces/:id/join-code", workspaces.RegenerateJoinCode)
	v1.POST("/workspaces/:id/join", workspaces.Join)

	v1.GET("/workspaces/:id/members", members.List)
	v1.GET("/workspaces/:id/members/me", members.Current)
	v1.GET("/members/:id", members.Get)
	v1.PATCH("/members/:id", members.UpdateRole)
	v1.DELETE("/members/:id", members.Remove)

	v1.POST("/workspaces/:id/channels", channels.Create)
	v1.GET("/workspaces/:id/channels", channels.List)
	v1.GET("/channels/:id", channels.GetByID)
	v1.PATCH("/channels/:id", channels.Rename)
	v1.DELETE("/channels/:id", channels.Remove)

	v1.POST("/workspaces/:id/conversations", conversations.CreateOrGet)
	v1.GET("/conversations/:id", conversations.Get)

	v1.POST("/messages", messages.Create)
	v1.GET("/messages", messages.List)
	v1.GET("/messages/:id", messages.Get)
	v1.PATCH("/messages/:id", messages.Edit)
	v1.DELETE("/messages/:id", messages.Remove)
	v1.POST("/messages/:id/reactions", messages.ToggleReaction)
	v1.GET("/messages/:id/reactions", messages.ListReactions)

	return r, nil
}
