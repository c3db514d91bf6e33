package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

// respondError maps each engine error kind to a transport status. Unknown
// errors are logged and reported as a generic 500 so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, domain.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
	case errors.Is(err, domain.ErrMalformedToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
	case errors.Is(err, domain.ErrCodeNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code"})
	case errors.Is(err, domain.ErrCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code expired"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domain.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, domain.ErrDuplicateMembership),
		errors.Is(err, domain.ErrAlreadyMember):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is already a project member"})
	case errors.Is(err, domain.ErrNotAMember):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a project member"})
	case errors.Is(err, domain.ErrOwnerCannotLeave):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project owner cannot leave the project"})
	case errors.Is(err, domain.ErrCannotKickSelf):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot kick yourself"})
	case errors.Is(err, domain.ErrNotificationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send notification"})
	default:
		log.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
