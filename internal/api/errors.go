package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/teamchat/internal/apperr"
	"go.uber.org/zap"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindUnauthorized, apperr.KindAdminCannotBeRemoved, apperr.KindSelfRemovalAsAdmin:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAlreadyMember, apperr.KindLastAdmin:
		return http.StatusConflict
	case apperr.KindInvalidJoinCode, apperr.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error", "code"}. Errors outside the apperr
// taxonomy are logged and reported as a generic 500 so driver details never
// reach the client.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		c.AbortWithStatusJSON(statusFor(ae.Kind), gin.H{"error": ae.Message, "code": string(ae.Kind)})
		return
	}
	logger.Error(op+" failed", zap.Error(err), zap.String("path", c.FullPath()))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": op + " failed", "code": "internal"})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": string(apperr.KindInvalid)})
}

// bindJSON decodes and validates the request body, answering 400 itself on
// failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func messageIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid message id")
		return 0, false
	}
	return id, true
}

// optionalUUIDQuery returns nil when the query parameter is absent.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, "invalid '"+name+"' parameter")
		return 0, false
	}
	return n, true
}
