package handler

import (
	"net/http"

	"repairdesk/internal/middleware"
	"repairdesk/internal/service"
	"repairdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/api/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", middleware.RequireRole(middleware.RoleManager), h.CreateCategory)
	}

	services := router.Group("/api/services")
	{
		services.GET("", h.ListServices)
		services.POST("", middleware.RequireRole(middleware.RoleManager), h.CreateService)
		services.GET("/:id", h.GetService)
		services.PUT("/:id", middleware.RequireRole(middleware.RoleManager), h.UpdateService)
		services.DELETE("/:id", middleware.RequireRole(middleware.RoleManager), h.DeleteService)
	}
}

// ListCategories returns every service category
// @Summary      List service categories
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CategoryResponse}
// @Router       /api/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateCategory adds a category with a unique slug
// @Summary      Create service category
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateCategoryRequest  true  "Category payload"
// @Success      201  {object}  response.Response{data=service.CategoryResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// ListServices returns catalog services ordered by name
// @Summary      List services
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        page      query     int     false  "Page number (default: 1)"
// @Param        limit     query     int     false  "Items per page (default: 20)"
// @Param        search    query     string  false  "Search by name"
// @Param        category  query     string  false  "Category slug"
// @Success      200       {object}  response.Response
// @Router       /api/services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	params, ok := parsePage(c)
	if !ok {
		return
	}
	services, total, err := h.catalogService.ListServices(c.Request.Context(), service.ServiceListQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Params:   params,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, services, params, total))
}

// CreateService adds a catalog service at its current price
// @Summary      Create service
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateServiceRequest  true  "Service payload"
// @Success      201  {object}  response.Response{data=service.ServiceResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/services [post]
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req service.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	svc, err := h.catalogService.CreateService(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, svc))
}

// GetService returns one catalog service
// @Summary      Get service
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response{data=service.ServiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/services/{id} [get]
func (h *CatalogHandler) GetService(c *gin.Context) {
	svc, err := h.catalogService.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, svc))
}

// UpdateService changes the catalog price. Lines already on orders keep the price they captured.
// @Summary      Update service
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Service ID"
// @Param        payload  body  service.UpdateServiceRequest  true  "Service payload"
// @Success      200  {object}  response.Response{data=service.ServiceResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/services/{id} [put]
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	var req service.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	svc, err := h.catalogService.UpdateService(c.Request.Context(), middleware.ActorID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, svc))
}

// DeleteService removes a service that no order line references
// @Summary      Delete service
// @Description  Fails with 409 while the service is attached to any order
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Service ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/services/{id} [delete]
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	if err := h.catalogService.DeleteService(c.Request.Context(), middleware.ActorID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Service deleted successfully"}))
}
