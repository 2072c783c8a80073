package handler

import (
	"net/http"

	"mrtrack/internal/middleware"
	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/internal/service"
	"mrtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

type VisitHandler struct {
	visitService service.VisitService
}

func NewVisitHandler(visitService service.VisitService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

func (h *VisitHandler) RegisterRoutes(router *gin.RouterGroup) {
	visits := router.Group("/visits", middleware.RequireRole(model.RoleAdmin, model.RoleMR))
	{
		visits.POST("", h.CreateVisit)
		visits.GET("", h.ListVisits)
		visits.GET("/:id", h.GetVisit)
	}

	medicalVisits := router.Group("/medical-visits", middleware.RequireRole(model.RoleAdmin, model.RoleMR))
	{
		medicalVisits.POST("", h.CreateMedicalVisit)
		medicalVisits.GET("", h.ListMedicalVisits)
		medicalVisits.GET("/:id", h.GetMedicalVisit)
	}
}

// CreateVisit handles POST /visits; the submitting MR comes from the token
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	var req service.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	visit, err := h.visitService.CreateVisit(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, visit))
}

// ListVisits handles GET /visits. Admins see every visit; MRs only their own.
func (h *VisitHandler) ListVisits(c *gin.Context) {
	filter, ok := h.scopedFilter(c)
	if !ok {
		return
	}

	visits, err := h.visitService.ListVisits(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, visits))
}

// GetVisit handles GET /visits/:id
func (h *VisitHandler) GetVisit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	visit, err := h.visitService.GetVisit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, role, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}
	if role == model.RoleMR && visit.MRID != userID {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, visit))
}

// CreateMedicalVisit handles POST /medical-visits
func (h *VisitHandler) CreateMedicalVisit(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	var req service.CreateMedicalVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	visit, err := h.visitService.CreateMedicalVisit(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, visit))
}

// ListMedicalVisits handles GET /medical-visits
func (h *VisitHandler) ListMedicalVisits(c *gin.Context) {
	filter, ok := h.scopedFilter(c)
	if !ok {
		return
	}

	visits, err := h.visitService.ListMedicalVisits(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, visits))
}

// GetMedicalVisit handles GET /medical-visits/:id
func (h *VisitHandler) GetMedicalVisit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	visit, err := h.visitService.GetMedicalVisit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, role, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}
	if role == model.RoleMR && visit.MRID != userID {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, visit))
}

// scopedFilter builds the list filter, pinning MRs to their own records
func (h *VisitHandler) scopedFilter(c *gin.Context) (repository.VisitFilter, bool) {
	userID, role, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return repository.VisitFilter{}, false
	}

	filter := repository.VisitFilter{Status: c.Query("status")}
	if role == model.RoleMR {
		filter.MRID = &userID
	}
	return filter, true
}
