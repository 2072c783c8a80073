package handler

import (
	"net/http"

	"mrtrack/internal/middleware"
	"mrtrack/internal/model"
	"mrtrack/internal/service"
	"mrtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/approvals", middleware.RequireRole(model.RoleAdmin))
	{
		approvals.GET("", h.ListPending)
		approvals.GET("/:kind/:id", h.GetDetail)
		approvals.PUT("/:kind/:id/approve", h.Approve)
		approvals.PUT("/:kind/:id/reject", h.Reject)
	}

	users := router.Group("/users", middleware.RequireRole(model.RoleAdmin))
	{
		users.PATCH("/:id/toggle-active", h.ToggleUserActive)
	}
}

// ListPending returns the unified pending queue across all four kinds
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	items, err := h.approvalService.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// GetDetail returns the enriched payload behind one queue entry
func (h *ApprovalHandler) GetDetail(c *gin.Context) {
	kind, err := model.ParseApprovalKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	detail, err := h.approvalService.GetDetail(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// Approve applies the approving transition for the kind
func (h *ApprovalHandler) Approve(c *gin.Context) {
	kind, err := model.ParseApprovalKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.approvalService.Approve(c.Request.Context(), kind, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"kind": kind, "id": id, "action": "approved"}))
}

// Reject applies the rejecting transition for the kind
func (h *ApprovalHandler) Reject(c *gin.Context) {
	kind, err := model.ParseApprovalKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.approvalService.Reject(c.Request.Context(), kind, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"kind": kind, "id": id, "action": "rejected"}))
}

// ToggleUserActive flips an MR account between active and inactive
func (h *ApprovalHandler) ToggleUserActive(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	status, err := h.approvalService.ToggleUserActive(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id, "status": status}))
}
