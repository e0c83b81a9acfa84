package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/handyhub-dev/handyhub-api/middleware"
	"github.com/handyhub-dev/handyhub-api/models"
	"github.com/handyhub-dev/handyhub-api/services"
)

// respondError maps a typed service error to its HTTP status and writes the
// user-facing message. Internal causes are logged, never exposed.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		forbiddenErr  *services.ForbiddenError
		stateErr      *services.InvalidStateError
		transitionErr *services.InvalidTransitionError
		conflictErr   *services.ConflictError
		internalErr   *services.InternalError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundErr.Error()})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, gin.H{"message": forbiddenErr.Message})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": stateErr.Message})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid status transition from " + string(transitionErr.From) +
				" to " + string(transitionErr.To) + " for this user role.",
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": conflictErr.Message})
	case errors.As(err, &internalErr):
		log.Printf("internal error: %v (cause: %v)", internalErr.Message, internalErr.Cause)
		c.JSON(http.StatusInternalServerError, gin.H{"message": internalErr.Message})
	default:
		log.Printf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// mustAuthUser pulls the resolved caller off the context, writing a 401 when
// the auth middleware did not run.
func mustAuthUser(c *gin.Context) (*models.User, bool) {
	user, err := middleware.GetAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}
	return user, true
}
