package handler

import (
	"net/http"

	"mrtrack/internal/middleware"
	"mrtrack/internal/model"
	"mrtrack/internal/service"
	"mrtrack/pkg/pagination"
	"mrtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

type MedicalHandler struct {
	medicalService service.MedicalService
}

func NewMedicalHandler(medicalService service.MedicalService) *MedicalHandler {
	return &MedicalHandler{medicalService: medicalService}
}

func (h *MedicalHandler) RegisterRoutes(router *gin.RouterGroup) {
	medicals := router.Group("/medicals")
	{
		medicals.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleMR), h.ListMedicals)
		medicals.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleMR), h.GetMedicalByID)
		medicals.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateMedical)
		medicals.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateMedical)
		medicals.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteMedical)
	}
}

// CreateMedical handles POST /medicals
func (h *MedicalHandler) CreateMedical(c *gin.Context) {
	var req service.CreateMedicalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	medical, err := h.medicalService.CreateMedical(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, medical))
}

// ListMedicals handles GET /medicals with pagination
func (h *MedicalHandler) ListMedicals(c *gin.Context) {
	params := pagination.Parse(c)

	medicals, total, err := h.medicalService.ListMedicals(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(medicals, total, params.Page, params.Limit))
}

// GetMedicalByID handles GET /medicals/:id
func (h *MedicalHandler) GetMedicalByID(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	medical, err := h.medicalService.GetMedicalByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, medical))
}

// UpdateMedical handles PUT /medicals/:id
func (h *MedicalHandler) UpdateMedical(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateMedicalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	medical, err := h.medicalService.UpdateMedical(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, medical))
}

// DeleteMedical handles DELETE /medicals/:id
func (h *MedicalHandler) DeleteMedical(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.medicalService.DeleteMedical(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}
