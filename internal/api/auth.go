package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/teamchat/internal/auth"
	"github.com/lalith-99/teamchat/internal/middleware"
	"github.com/lalith-99/teamchat/internal/models"
	"github.com/lalith-99/teamchat/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler issues and revokes tokens. Signup and login are the only
// public endpoints; logout needs the token it revokes.
type AuthHandler struct {
	users     repository.UserRepository
	sessions  middleware.RevocationStore
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthHandler builds the handler. sessions may be nil, in which case
// logout succeeds without revoking anything and tokens live until expiry.
func NewAuthHandler(
	users repository.UserRepository,
	sessions middleware.RevocationStore,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:     users,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=80"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// authResponse is what signup and login return. The client sends the token
// back as "Authorization: Bearer <token>".
type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (h *AuthHandler) issue(c *gin.Context, status int, user *models.User) {
	token, claims, err := auth.GenerateToken(user.ID, user.Email, h.jwtSecret, h.tokenTTL)
	if err != nil {
		respondError(c, h.logger, "issue token", err)
		return
	}
	c.JSON(status, authResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user})
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, "signup", err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered", "code": "email_taken"})
		return
	}

	// bcrypt salts each hash, and its cost makes offline guessing slow.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, h.logger, "signup", err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), email, strings.TrimSpace(req.Name), string(hash))
	if errors.Is(err, repository.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered", "code": "email_taken"})
		return
	}
	if err != nil {
		respondError(c, h.logger, "signup", err)
		return
	}

	h.logger.Info("user signed up", zap.String("user_id", user.ID.String()))
	h.issue(c, http.StatusCreated, user)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	// One message for unknown email and wrong password, so the response
	// does not reveal which emails are registered.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password", "code": "unauthenticated"})
		return
	}

	h.issue(c, http.StatusOK, user)
}

// Logout handles POST /v1/auth/logout. The presented token stops working
// immediately when a revocation store is configured.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "code": "unauthenticated"})
		return
	}
	if h.sessions != nil {
		if err := h.sessions.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			respondError(c, h.logger, "logout", err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}
