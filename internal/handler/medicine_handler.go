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

type MedicineHandler struct {
	medicineService service.MedicineService
}

func NewMedicineHandler(medicineService service.MedicineService) *MedicineHandler {
	return &MedicineHandler{medicineService: medicineService}
}

func (h *MedicineHandler) RegisterRoutes(router *gin.RouterGroup) {
	medicines := router.Group("/medicines")
	{
		medicines.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleMR), h.ListMedicines)
		medicines.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleMR), h.GetMedicineByID)
		medicines.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateMedicine)
		medicines.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateMedicine)
		medicines.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteMedicine)
	}
}

// CreateMedicine handles POST /medicines
func (h *MedicineHandler) CreateMedicine(c *gin.Context) {
	var req service.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	medicine, err := h.medicineService.CreateMedicine(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, medicine))
}

// ListMedicines handles GET /medicines with pagination
func (h *MedicineHandler) ListMedicines(c *gin.Context) {
	params := pagination.Parse(c)

	medicines, total, err := h.medicineService.ListMedicines(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(medicines, total, params.Page, params.Limit))
}

// GetMedicineByID handles GET /medicines/:id
func (h *MedicineHandler) GetMedicineByID(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	medicine, err := h.medicineService.GetMedicineByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, medicine))
}

// UpdateMedicine handles PUT /medicines/:id
func (h *MedicineHandler) UpdateMedicine(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	medicine, err := h.medicineService.UpdateMedicine(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, medicine))
}

// DeleteMedicine handles DELETE /medicines/:id
func (h *MedicineHandler) DeleteMedicine(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.medicineService.DeleteMedicine(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}
