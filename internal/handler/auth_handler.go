package handler

import (
	"net/http"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/service"
	"anoa.com/perpustakaan/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Me echoes the authenticated principal, so the SPA can restore a session
// from a stored token.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAuthUser(user))
}
