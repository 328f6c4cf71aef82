package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/connect/internal/helpers"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/services"
)

// statusFor maps domain errors to HTTP status codes. Zero means unmapped.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrSelfFriendRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, helpers.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotOrganizer),
		errors.Is(err, models.ErrNotRequestRecipient):
		return http.StatusForbidden
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrFriendRequestNotFound),
		errors.Is(err, models.ErrNotFriends):
		return http.StatusNotFound
	case errors.Is(err, models.ErrEventFull),
		errors.Is(err, models.ErrAlreadyJoined),
		errors.Is(err, models.ErrNotJoined),
		errors.Is(err, models.ErrCapacityTooLow),
		errors.Is(err, models.ErrEmailTaken),
		errors.Is(err, models.ErrFriendRequestExists),
		errors.Is(err, models.ErrRequestNotPending),
		errors.Is(err, models.ErrAlreadyFriends):
		return http.StatusConflict
	case errors.Is(err, models.ErrUploadsDisabled):
		return http.StatusServiceUnavailable
	}
	return 0
}

// respondError writes mapped errors directly and hands the rest to ErrorHandler.
func respondError(c *gin.Context, err error) {
	if status := statusFor(err); status != 0 {
		c.JSON(status, models.ErrorResponse(err.Error()))
		return
	}
	_ = c.Error(err)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse(message))
}

// currentUser returns the caller's claims and id as set by AuthMiddleware.
func currentUser(c *gin.Context) (*helpers.Claims, uuid.UUID, bool) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return nil, uuid.Nil, false
	}
	claims, ok := value.(*helpers.Claims)
	if !ok {
		_ = c.Error(errors.New("invalid user claims in context"))
		return nil, uuid.Nil, false
	}
	userID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("invalid user ID in token"))
		return nil, uuid.Nil, false
	}
	return claims, userID, true
}

func eventIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid event ID")
		return 0, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		badRequest(c, "invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

func clientInfo(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	}
}
