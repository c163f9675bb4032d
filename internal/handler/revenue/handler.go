package revenue

import (
	"github.com/gin-gonic/gin"

	revenueService "github.com/bcdservices/dashboard-api/internal/service/revenue"
	"github.com/bcdservices/dashboard-api/pkg/httputil"
)

type Handler struct {
	service revenueService.RevenueServicer
}

func NewHandler(service revenueService.RevenueServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/revenue", h.GetRevenue)
}

func (h *Handler) GetRevenue(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context())
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}
