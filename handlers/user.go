package handlers

import (
	"net/http"

	"food-distribution-backend/dtos"
	"food-distribution-backend/middleware"
	"food-distribution-backend/models"
	"food-distribution-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	Users *services.UserService
	Log   *zap.Logger
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dtos.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.Users.Create(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req dtos.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.Users.UpdateRole(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), models.Role(req.Role))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req dtos.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.Users.UpdateStatus(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), models.PrincipalStatus(req.Status))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) UpdatePermissions(c *gin.Context) {
	var req dtos.UpdatePermissionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.CanCreateBeneficiaries == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "canCreateBeneficiaries is required", "code": "ValidationError", "field": "canCreateBeneficiaries"})
		return
	}

	p, err := h.Users.SetBeneficiaryPermission(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), *req.CanCreateBeneficiaries)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), middleware.CurrentSession(c), c.Param("id")); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
