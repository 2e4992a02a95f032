package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"food-distribution-backend/apperror"
	"food-distribution-backend/dtos"
	"food-distribution-backend/middleware"
	"food-distribution-backend/models"
	"food-distribution-backend/repository"
	"food-distribution-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	Schedules *services.ScheduleService
	Workflow  *services.WorkflowService
	Log       *zap.Logger
}

func (h *ScheduleHandler) List(c *gin.Context) {
	filter := repository.ScheduleFilter{Center: c.Query("center")}
	if v := c.Query("distributed"); v != "" {
		distributed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, h.Log, apperror.Invalid("distributed", "must be true or false"))
			return
		}
		filter.Distributed = &distributed
	}

	list, err := h.Schedules.List(c.Request.Context(), middleware.CurrentSession(c), filter)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	fs, err := h.Schedules.Get(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, fs)
}

func (h *ScheduleHandler) GetByToken(c *gin.Context) {
	fs, err := h.Schedules.FindByToken(c.Request.Context(), middleware.CurrentSession(c), c.Param("token"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, fs)
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dtos.CreateScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	fs, err := h.Schedules.Create(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, fs)
}

func (h *ScheduleHandler) Distribute(c *gin.Context) {
	fs, err := h.Workflow.MarkDistributed(c.Request.Context(), middleware.CurrentSession(c), c.Param("id"))
	h.respondDistributed(c, fs, err)
}

func (h *ScheduleHandler) DistributeByToken(c *gin.Context) {
	fs, err := h.Workflow.MarkDistributedByToken(c.Request.Context(), middleware.CurrentSession(c), c.Param("token"))
	h.respondDistributed(c, fs, err)
}

// respondDistributed answers a repeated mark with 200 and the current
// record, so double scans at the counter are harmless.
func (h *ScheduleHandler) respondDistributed(c *gin.Context, fs *models.FoodSchedule, err error) {
	already := errors.Is(err, apperror.ErrAlreadyDistributed)
	if err != nil && !already {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": fs, "already_distributed": already})
}
