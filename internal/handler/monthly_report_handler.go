package handler

import (
	"net/http"

	"mrtrack/internal/middleware"
	"mrtrack/internal/model"
	"mrtrack/internal/service"
	"mrtrack/pkg/pagination"
	"mrtrack/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MonthlyReportHandler struct {
	monthlyReportService service.MonthlyReportService
}

func NewMonthlyReportHandler(monthlyReportService service.MonthlyReportService) *MonthlyReportHandler {
	return &MonthlyReportHandler{monthlyReportService: monthlyReportService}
}

func (h *MonthlyReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/monthly-reports")
	{
		reports.POST("/generate", middleware.RequireRole(model.RoleAdmin), h.Generate)
		reports.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleMR), h.List)
	}
}

type generateMonthlyReportRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required"`
}

// Generate handles POST /monthly-reports/generate, recomputing the rollups
// for the given month. Safe to re-run after late approvals.
func (h *MonthlyReportHandler) Generate(c *gin.Context) {
	var req generateMonthlyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	written, err := h.monthlyReportService.Generate(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"month":   req.Month,
		"year":    req.Year,
		"written": written,
	}))
}

// List handles GET /monthly-reports. Admins see every MR's rollups; MRs only
// their own.
func (h *MonthlyReportHandler) List(c *gin.Context) {
	userID, role, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	var mrID *uuid.UUID
	if role == model.RoleMR {
		mrID = &userID
	} else {
		var ok bool
		mrID, ok = queryUUID(c, "mr_id")
		if !ok {
			return
		}
	}

	params := pagination.Parse(c)
	reports, total, err := h.monthlyReportService.List(c.Request.Context(), mrID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(reports, total, params.Page, params.Limit))
}
