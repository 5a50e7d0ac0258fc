package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testhub-api/internal/middleware"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
	"github.com/yourusername/testhub-api/internal/rbac"
	"github.com/yourusername/testhub-api/internal/service"
)

// handleError maps service errors onto HTTP status codes. Anything not
// recognized becomes a 500 without leaking internals.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAttemptNotCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, service.ErrTestHasNoQuestions):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrFeedbackUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: internal server error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// mustSubject returns the authenticated caller; RequireAuth guarantees
// it is present on protected routes.
func mustSubject(c *gin.Context) rbac.Subject {
	subject, _ := middleware.SubjectFromContext(c)
	return subject
}

// pagination reads page/per_page query params with sane bounds and
// returns them together with limit/offset values.
func pagination(c *gin.Context) (page, perPage, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage, perPage, (page - 1) * perPage
}
