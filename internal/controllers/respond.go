package controllers

import (
	"net/http"

	"github.com/dlopezm/gin-task-api/internal/middleware"
	"github.com/dlopezm/gin-task-api/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError maps a service error onto its HTTP status and writes the
// JSON body. Untyped errors surface as 500 without leaking store details.
func respondError(c *gin.Context, err error) {
	apiErr := models.AsAPIError(err)
	if apiErr.Code == models.ErrInternalServer {
		log.WithError(err).Error("Request failed")
	}
	c.JSON(apiErr.Status(), apiErr)
}

// requirePrincipal reads the authenticated principal or aborts with 401.
// JWTAuth guarantees it is present on protected routes; this is the
// fallback for misconfigured routing.
func requirePrincipal(c *gin.Context) (models.Principal, bool) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewUnauthenticatedError("Missing token"))
	}
	return principal, ok
}
