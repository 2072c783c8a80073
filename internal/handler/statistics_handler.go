package handler

import (
	"net/http"

	"mrtrack/internal/middleware"
	"mrtrack/internal/model"
	"mrtrack/internal/service"
	"mrtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statistics := router.Group("/statistics")
	{
		statistics.GET("/leaderboard", middleware.RequireRole(model.RoleAdmin, model.RoleMR), h.Leaderboard)
		statistics.GET("/dashboard", middleware.RequireRole(model.RoleAdmin), h.DashboardStats)
		statistics.GET("/trend", middleware.RequireRole(model.RoleAdmin), h.VisitTrend)
	}
}

// Leaderboard returns per-MR activity rankings for the requested window
// (all, weekly or daily)
func (h *StatisticsHandler) Leaderboard(c *gin.Context) {
	window := c.DefaultQuery("window", service.WindowAll)

	entries, err := h.statisticsService.Leaderboard(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// DashboardStats returns the headline counts for the admin dashboard
func (h *StatisticsHandler) DashboardStats(c *gin.Context) {
	stats, err := h.statisticsService.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// VisitTrend returns the six-month visit/order trend
func (h *StatisticsHandler) VisitTrend(c *gin.Context) {
	trend, err := h.statisticsService.VisitTrend(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, trend))
}
