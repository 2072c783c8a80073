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

type DoctorHandler struct {
	doctorService service.DoctorService
}

func NewDoctorHandler(doctorService service.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

func (h *DoctorHandler) RegisterRoutes(router *gin.RouterGroup) {
	doctors := router.Group("/doctors")
	{
		doctors.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleMR), h.CreateDoctor)
		doctors.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleMR), h.ListDoctors)
		doctors.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleMR), h.GetDoctorByID)
		doctors.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateDoctor)
	}
}

// CreateDoctor handles POST /doctors. MR submissions start unverified and
// land in the approval queue; admin submissions are verified immediately.
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	userID, role, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	var req service.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doctor, err := h.doctorService.CreateDoctor(c.Request.Context(), userID, role, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doctor))
}

// ListDoctors handles GET /doctors with pagination
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	params := pagination.Parse(c)

	doctors, total, err := h.doctorService.ListDoctors(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(doctors, total, params.Page, params.Limit))
}

// GetDoctorByID handles GET /doctors/:id
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	doctor, err := h.doctorService.GetDoctorByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doctor))
}

// UpdateDoctor handles PUT /doctors/:id
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doctor, err := h.doctorService.UpdateDoctor(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doctor))
}
