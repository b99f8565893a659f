package handler

import (
	"net/http"
	"time"

	"repairdesk/internal/apperror"
	"repairdesk/internal/middleware"
	"repairdesk/internal/service"
	"repairdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/duty", h.GetDuty)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id", h.UpdateOrder)
		orders.DELETE("/:id", middleware.RequireRole(middleware.RoleManager), h.DeleteOrder)
		orders.POST("/:id/services", h.AttachServices)
		orders.DELETE("/:id/services/:serviceId", h.DetachService)
	}
}

// parseDateBound accepts RFC3339 or a bare date. A bare upper bound covers the whole day.
func parseDateBound(field, raw string, upper bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperror.Validation(field, "invalid_date", "expected RFC3339 or YYYY-MM-DD")
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

// ListOrders searches and filters orders, newest first
// @Summary      List orders
// @Description  Newest first. Search matches accepted equipment, client phone, or the order number.
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        page          query     int     false  "Page number (default: 1)"
// @Param        limit         query     int     false  "Items per page (default: 20)"
// @Param        search        query     string  false  "Equipment, detail, client name or phone, order number or code"
// @Param        status        query     string  false  "Order status"
// @Param        client_id     query     string  false  "Client ID"
// @Param        legal_kind    query     string  false  "Client legal kind"
// @Param        created_from  query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        created_to    query     string  false  "RFC3339 or YYYY-MM-DD, inclusive day"
// @Success      200           {object}  response.Response
// @Failure      400           {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	from, err := parseDateBound("created_from", c.Query("created_from"), false)
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := parseDateBound("created_to", c.Query("created_to"), true)
	if err != nil {
		writeError(c, err)
		return
	}

	params, ok := parsePage(c)
	if !ok {
		return
	}
	orders, total, err := h.orderService.ListOrders(c.Request.Context(), service.OrderListQuery{
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		ClientID:    c.Query("client_id"),
		LegalKind:   c.Query("legal_kind"),
		CreatedFrom: from,
		CreatedTo:   to,
		Params:      params,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, orders, params, total))
}

// CreateOrder issues the next order number and attaches the listed services
// @Summary      Create order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateOrderRequest  true  "Order payload"
// @Success      201  {object}  response.Response{data=service.OrderResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	order, err := h.orderService.CreateOrder(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// GetOrder returns an order with its lines, purchases and position
// @Summary      Get order with its financial position
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateOrder applies the fields present in the body. services_total_override: null clears the override.
// @Summary      Update order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Order ID"
// @Param        payload  body  service.UpdateOrderRequest  true  "Fields to change"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [patch]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	order, err := h.orderService.UpdateOrder(c.Request.Context(), middleware.ActorID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// DeleteOrder removes an order and leaves its purchases unlinked
// @Summary      Delete order
// @Description  Purchases linked to the order are kept and become unlinked
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), middleware.ActorID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Order deleted successfully"}))
}

// AttachServices adds a batch of services to an order, all or nothing
// @Summary      Attach services to an order
// @Description  All-or-nothing. Lines without a price capture the current catalog price.
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Order ID"
// @Param        payload  body  service.AttachServicesRequest  true  "Services to attach"
// @Success      201  {object}  response.Response{data=[]service.OrderLineResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/orders/{id}/services [post]
func (h *OrderHandler) AttachServices(c *gin.Context) {
	var req service.AttachServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	lines, err := h.orderService.AttachServices(c.Request.Context(), middleware.ActorID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, lines))
}

// DetachService removes one service line from an order
// @Summary      Detach a service from an order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id         path  string  true  "Order ID"
// @Param        serviceId  path  string  true  "Service ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/services/{serviceId} [delete]
func (h *OrderHandler) DetachService(c *gin.Context) {
	err := h.orderService.DetachService(c.Request.Context(), middleware.ActorID(c), c.Param("id"), c.Param("serviceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Service detached successfully"}))
}

// GetDuty sums the outstanding balance over the matching orders
// @Summary      Duty rollup
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status     query     string  false  "Order status"
// @Param        client_id  query     string  false  "Client ID"
// @Success      200        {object}  response.Response{data=service.DutyRollupResponse}
// @Failure      400        {object}  response.Response
// @Router       /api/orders/duty [get]
func (h *OrderHandler) GetDuty(c *gin.Context) {
	res, err := h.orderService.Duty(c.Request.Context(), service.DutyQuery{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
