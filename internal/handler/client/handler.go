package client

import (
	"github.com/gin-gonic/gin"

	clientService "github.com/bcdservices/dashboard-api/internal/service/client"
	"github.com/bcdservices/dashboard-api/pkg/httputil"
)

type Handler struct {
	service clientService.ClientServicer
}

func NewHandler(service clientService.ClientServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clients := r.Group("/clients")
	{
		clients.GET("", h.ListClients)
		clients.GET("/orders", h.ClientOrders)
	}
}

type listQuery struct {
	Page   int    `form:"page"`
	Search string `form:"search"`
}

func (h *Handler) ListClients(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	page, err := h.service.ListClients(c.Request.Context(), q.Page, q.Search)
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithPagination(c, page.Clients, page.Page, page.TotalPages)
}

func (h *Handler) ClientOrders(c *gin.Context) {
	history, err := h.service.ClientOrders(c.Request.Context(), c.Query("email"))
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}
