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

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports", middleware.RequireRole(model.RoleAdmin, model.RoleMR))
	{
		reports.GET("/visits", h.VisitReport)
		reports.GET("/medical-visits", h.MedicalVisitReport)
	}
}

// VisitReport handles GET /reports/visits
// @Summary      Doctor visit report
// @Description  Returns a filtered, paginated page of denormalized visit rows. MRs are scoped to their own visits regardless of filters.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        mr_id            query     string  false  "Representative id (admin only; ignored for MR callers)"
// @Param        counterparty_id  query     string  false  "Doctor id"
// @Param        medicine_id      query     string  false  "Medicine id"
// @Param        start_date       query     string  false  "Inclusive lower bound, YYYY-MM-DD"
// @Param        end_date         query     string  false  "Inclusive upper bound, YYYY-MM-DD"
// @Param        search           query     string  false  "Case-insensitive free text"
// @Param        page             query     int     false  "Page number"
// @Param        limit            query     int     false  "Page size (10, 30 or 100)"
// @Success      200              {object}  response.Page{data=[]model.ReportRow}
// @Failure      400              {object}  response.Response
// @Router       /reports/visits [get]
func (h *ReportHandler) VisitReport(c *gin.Context) {
	query, ok := h.parseQuery(c)
	if !ok {
		return
	}

	rows, total, err := h.reportService.VisitReport(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(rows, total, query.Page, query.Limit))
}

// MedicalVisitReport handles GET /reports/medical-visits
// @Summary      Medical facility visit report
// @Description  Facility-visit counterpart of the doctor visit report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        mr_id            query     string  false  "Representative id (admin only; ignored for MR callers)"
// @Param        counterparty_id  query     string  false  "Facility id"
// @Param        medicine_id      query     string  false  "Medicine id"
// @Param        start_date       query     string  false  "Inclusive lower bound, YYYY-MM-DD"
// @Param        end_date         query     string  false  "Inclusive upper bound, YYYY-MM-DD"
// @Param        search           query     string  false  "Case-insensitive free text"
// @Param        page             query     int     false  "Page number"
// @Param        limit            query     int     false  "Page size (10, 30 or 100)"
// @Success      200              {object}  response.Page{data=[]model.ReportRow}
// @Failure      400              {object}  response.Response
// @Router       /reports/medical-visits [get]
func (h *ReportHandler) MedicalVisitReport(c *gin.Context) {
	query, ok := h.parseQuery(c)
	if !ok {
		return
	}

	rows, total, err := h.reportService.MedicalVisitReport(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(rows, total, query.Page, query.Limit))
}

func (h *ReportHandler) parseQuery(c *gin.Context) (service.ReportQuery, bool) {
	userID, role, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return service.ReportQuery{}, false
	}

	mrID, ok := queryUUID(c, "mr_id")
	if !ok {
		return service.ReportQuery{}, false
	}
	counterpartyID, ok := queryUUID(c, "counterparty_id")
	if !ok {
		return service.ReportQuery{}, false
	}
	medicineID, ok := queryUUID(c, "medicine_id")
	if !ok {
		return service.ReportQuery{}, false
	}

	params := pagination.Parse(c)
	return service.ReportQuery{
		RequesterID:    userID,
		RequesterRole:  role,
		MRID:           mrID,
		CounterpartyID: counterpartyID,
		MedicineID:     medicineID,
		StartDate:      c.Query("start_date"),
		EndDate:        c.Query("end_date"),
		Search:         c.Query("search"),
		Page:           params.Page,
		Limit:          params.Limit,
	}, true
}
