package handler

import (
	"net/http"
	"strconv"

	"repairdesk/internal/middleware"
	"repairdesk/internal/service"
	"repairdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/api/purchases")
	{
		purchases.GET("", h.ListPurchases)
		purchases.POST("", h.CreatePurchase)
		purchases.GET("/:id", h.GetPurchase)
		purchases.PUT("/:id", h.UpdatePurchase)
		purchases.DELETE("/:id", middleware.RequireRole(middleware.RoleManager), h.DeletePurchase)
	}
}

// ListPurchases searches and filters purchases, newest first
// @Summary      List purchases
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        page      query     int     false  "Page number (default: 1)"
// @Param        limit     query     int     false  "Items per page (default: 20)"
// @Param        search    query     string  false  "Search by detail or order number"
// @Param        status    query     string  false  "awaiting_delivery, received, installed"
// @Param        store     query     string  false  "Store name"
// @Param        order_id  query     string  false  "Order ID"
// @Param        orphans   query     bool    false  "Only purchases without an order"
// @Success      200       {object}  response.Response
// @Router       /api/purchases [get]
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	orphans, _ := strconv.ParseBool(c.DefaultQuery("orphans", "false"))
	params, ok := parsePage(c)
	if !ok {
		return
	}

	purchases, total, err := h.purchaseService.ListPurchases(c.Request.Context(), service.PurchaseListQuery{
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		Store:       c.Query("store"),
		OrderID:     c.Query("order_id"),
		OrphansOnly: orphans,
		Params:      params,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, purchases, params, total))
}

// CreatePurchase records a purchase, linked to an order or not
// @Summary      Record purchase
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreatePurchaseRequest  true  "Purchase payload"
// @Success      201  {object}  response.Response{data=service.PurchaseResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/purchases [post]
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req service.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

// GetPurchase returns one purchase
// @Summary      Get purchase
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase ID"
// @Success      200  {object}  response.Response{data=service.PurchaseResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// UpdatePurchase replaces a purchase, including its order link
// @Summary      Update purchase
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Purchase ID"
// @Param        payload  body  service.UpdatePurchaseRequest  true  "Purchase payload"
// @Success      200  {object}  response.Response{data=service.PurchaseResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [put]
func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	var req service.UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	purchase, err := h.purchaseService.UpdatePurchase(c.Request.Context(), middleware.ActorID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// DeletePurchase removes a purchase
// @Summary      Delete purchase
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Purchase ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [delete]
func (h *PurchaseHandler) DeletePurchase(c *gin.Context) {
	if err := h.purchaseService.DeletePurchase(c.Request.Context(), middleware.ActorID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Purchase deleted successfully"}))
}
