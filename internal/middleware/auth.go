package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/auth"
	"go.uber.org/zap"
)

// Context keys for values the auth middleware stores in gin.Context.
const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
	ContextKeyClaims = "claims"
)

// Revoker reports whether a token id has been revoked by logout.
type Revoker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RevocationStore is a Revoker that can also revoke.
type RevocationStore interface {
	Revoker
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

func unauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": msg,
		"code":  "unauthenticated",
	})
}

// AuthMiddleware validates the bearer token and stores its claims in the
// request context. It aborts with 401 when the header is missing or
// malformed, when the token does not verify, and when revoker (which may be
// nil) says the token was logged out.
//
// A revocation lookup that errors fails closed.
func AuthMiddleware(secret string, revoker Revoker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthenticated(c, "missing authorization header")
			return
		}

		// "Bearer eyJhbG..." -> ["Bearer", "eyJhbG..."]
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthenticated(c, "invalid authorization format, expected: Bearer <token>")
			return
		}

		claims, err := auth.ParseToken(strings.TrimSpace(parts[1]), secret)
		if err != nil {
			unauthenticated(c, "invalid or expired token")
			return
		}

		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Error("token revocation check failed", zap.Error(err))
				unauthenticated(c, "could not verify session")
				return
			}
			if revoked {
				unauthenticated(c, "session has been logged out")
				return
			}
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// GetUserID returns the authenticated user, or uuid.Nil when the request
// did not pass through AuthMiddleware.
func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

func GetClaims(c *gin.Context) *auth.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, _ := val.(*auth.Claims)
	return claims
}
