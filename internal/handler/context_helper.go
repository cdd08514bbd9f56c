package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/horunap/timetable-api/internal/middleware"
	"github.com/horunap/timetable-api/internal/models"
)

// claimsFromContext pulls the authenticated claims stored by the JWT
// middleware. Nil means the route was reached without authentication.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
