package handlers

import (
	"net/http"

	"food-distribution-backend/dtos"
	"food-distribution-backend/middleware"
	"food-distribution-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CenterHandler struct {
	Centers *services.CenterService
	Log     *zap.Logger
}

func (h *CenterHandler) List(c *gin.Context) {
	centers, err := h.Centers.List(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, centers)
}

func (h *CenterHandler) Get(c *gin.Context) {
	center, err := h.Centers.Get(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, center)
}

func (h *CenterHandler) Create(c *gin.Context) {
	var req dtos.CenterRequest
	if !bindJSON(c, &req) {
		return
	}

	center, err := h.Centers.Create(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, center)
}

func (h *CenterHandler) Update(c *gin.Context) {
	var req dtos.CenterRequest
	if !bindJSON(c, &req) {
		return
	}

	center, err := h.Centers.Update(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, center)
}

func (h *CenterHandler) Delete(c *gin.Context) {
	res, err := h.Centers.Delete(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
