package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/barbershop-api/internal/middleware"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := middleware.CurrentUser(c)
	return claims
}

// bindJSON decodes the request body, answering 400 on malformed payloads.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

func respond(c *gin.Context, data interface{}) {
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}
