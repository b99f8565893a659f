package handler

import (
	"net/http"

	"repairdesk/internal/middleware"
	"repairdesk/internal/service"
	"repairdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.Use(middleware.RequireRole(middleware.RoleManager))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs lists recorded mutations, optionally for one entity
// @Summary      Get audit logs
// @Description  Mutations recorded by actor, newest first
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        entity_type  query     string  false  "client, service, category, order, purchase"
// @Param        entity_id    query     string  false  "Entity ID"
// @Success      200          {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params, ok := parsePage(c)
	if !ok {
		return
	}
	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), service.AuditListQuery{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Params:     params,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, logs, params, total))
}
