package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"procurement-api/config"
	"procurement-api/services"

	"github.com/gin-gonic/gin"
)

// currentActor builds the engine's actor snapshot for the authenticated user.
func currentActor(c *gin.Context) (*services.Actor, bool) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return nil, false
	}
	userID, ok := userIDValue.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user context"})
		return nil, false
	}

	actor, err := services.LoadActor(config.DB, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return nil, false
	}
	return actor, true
}

// docTypeFromPath resolves the :type path param against the registry.
func docTypeFromPath(c *gin.Context) (services.DocTypeConfig, bool) {
	cfg, ok := services.DocTypeConfigFor(c.Param("type"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown document type"})
		return services.DocTypeConfig{}, false
	}
	return cfg, true
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(n), true
}

func parseUintQuery(q string) *uint {
	if q == "" {
		return nil
	}
	n, err := strconv.ParseUint(q, 10, 64)
	if err != nil {
		return nil
	}
	u := uint(n)
	return &u
}

func parsePOS(q string, def int) int {
	if q == "" {
		return def
	}
	n, err := strconv.Atoi(q)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// respondServiceError maps engine errors to HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
	case errors.Is(err, services.ErrForbidden):
		var forbidden *services.ForbiddenError
		if errors.As(err, &forbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Action not permitted", "failed_check": string(forbidden.Check)})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Action not permitted"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Document was modified concurrently, reload and retry"})
	case errors.Is(err, services.ErrQuantityExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrInvalidConfig):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrUnknownDocType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
