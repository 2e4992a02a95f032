package handlers

import (
	"net/http"

	"food-distribution-backend/dtos"
	"food-distribution-backend/middleware"
	"food-distribution-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Sessions *services.SessionService
	Log      *zap.Logger
}

// Signup creates a staff account for the caller. It does not sign in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dtos.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.Sessions.ProvisionAccount(c.Request.Context(), nil, services.ProvisionRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, dtos.SessionResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.Principal})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Sessions.SignOut(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentSession(c).Principal)
}
