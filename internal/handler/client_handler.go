package handler

import (
	"net/http"
	"strings"

	"repairdesk/internal/config"
	"repairdesk/internal/middleware"
	"repairdesk/internal/service"
	"repairdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
	requireSearch bool
}

func NewClientHandler(clientService service.ClientService, cfg config.Config) *ClientHandler {
	return &ClientHandler{clientService: clientService, requireSearch: cfg.Clients.RequireSearch}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	clients := router.Group("/api/clients")
	{
		clients.GET("", h.ListClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", middleware.RequireRole(middleware.RoleManager), h.DeleteClient)
	}
}

// ListClients returns a page of clients matching the search
// @Summary      List clients
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        page        query     int     false  "Page number (default: 1)"
// @Param        limit       query     int     false  "Items per page (default: 20)"
// @Param        search      query     string  false  "Search by name, phone, company, address"
// @Param        legal_kind  query     string  false  "individual or organization"
// @Success      200         {object}  response.Response
// @Failure      400         {object}  response.Response
// @Router       /api/clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	if h.requireSearch && search == "" {
		c.JSON(http.StatusBadRequest, response.ErrorWithCode(http.StatusBadRequest, "search_required", "search", "a search term is required to list clients"))
		return
	}

	params, ok := parsePage(c)
	if !ok {
		return
	}
	clients, total, err := h.clientService.ListClients(c.Request.Context(), service.ClientListQuery{
		Search:    search,
		LegalKind: c.Query("legal_kind"),
		Params:    params,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, clients, params, total))
}

// CreateClient creates a new client
// @Summary      Create client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateClientRequest  true  "Client payload"
// @Success      201  {object}  response.Response{data=service.ClientResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

// GetClient returns a client together with the duty summed over its orders
// @Summary      Get client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response{data=service.ClientResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// UpdateClient replaces the client's fields
// @Summary      Update client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                       true  "Client ID"
// @Param        payload  body  service.UpdateClientRequest  true  "Client payload"
// @Success      200  {object}  response.Response{data=service.ClientResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), middleware.ActorID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// DeleteClient deletes a client and its orders. Purchases of those orders are kept unlinked.
// @Summary      Delete client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Client ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	if err := h.clientService.DeleteClient(c.Request.Context(), middleware.ActorID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Client deleted successfully"}))
}
