package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
	"github.com/noah-isme/barbershop-api/pkg/response"
)

// AuthHandler reports the identity resolved from the caller's token.
type AuthHandler struct{}

// NewAuthHandler creates a new handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me godoc
// @Summary Current identity
// @Description Returns the e-mail and the role granted by the shop allowlists
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"user_id":   claims.UserID,
		"email":     claims.Email,
		"full_name": claims.FullName,
		"role":      claims.Role,
	}, nil)
}
