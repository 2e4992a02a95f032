package handlers

import (
	"net/http"
	"time"

	"food-distribution-backend/dtos"
	"food-distribution-backend/middleware"
	"food-distribution-backend/services"
	"food-distribution-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	Reports *services.ReportService
	Log     *zap.Logger
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.Reports.DashboardStats(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReportHandler) Distributed(c *gin.Context) {
	var filter dtos.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err), "code": "ValidationError"})
		return
	}

	rows, err := h.Reports.DistributedReport(c.Request.Context(), middleware.CurrentSession(c), filter)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows)})
}

// Export sends the distributed report as an xlsx download.
func (h *ReportHandler) Export(c *gin.Context) {
	var filter dtos.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err), "code": "ValidationError"})
		return
	}

	data, err := h.Reports.ExportDistributedReport(c.Request.Context(), middleware.CurrentSession(c), filter)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	filename := "distributed-packages-" + time.Now().Format(utils.DateLayout) + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
