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

type BeneficiaryHandler struct {
	Beneficiaries *services.BeneficiaryService
	Schedules     *services.ScheduleService
	Workflow      *services.WorkflowService
	Log           *zap.Logger
}

func (h *BeneficiaryHandler) List(c *gin.Context) {
	list, err := h.Beneficiaries.List(c.Request.Context(), middleware.CurrentSession(c),
		c.Query("search"), models.BeneficiaryStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Eligible lists approved beneficiaries that have no pickup scheduled yet.
func (h *BeneficiaryHandler) Eligible(c *gin.Context) {
	list, err := h.Schedules.EligibleBeneficiaries(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BeneficiaryHandler) Get(c *gin.Context) {
	b, err := h.Beneficiaries.Get(c.Request.Context(), middleware.CurrentSession(c), c.Param("cnic"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BeneficiaryHandler) Create(c *gin.Context) {
	var req dtos.CreateBeneficiaryRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.Beneficiaries.Create(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BeneficiaryHandler) Update(c *gin.Context) {
	var req dtos.UpdateBeneficiaryRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.Beneficiaries.Update(c.Request.Context(), middleware.CurrentSession(c), c.Param("cnic"), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BeneficiaryHandler) Approve(c *gin.Context) {
	b, err := h.Workflow.Approve(c.Request.Context(), middleware.CurrentSession(c), c.Param("cnic"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BeneficiaryHandler) Reject(c *gin.Context) {
	b, err := h.Workflow.Reject(c.Request.Context(), middleware.CurrentSession(c), c.Param("cnic"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
