package invoice

import (
	"github.com/gin-gonic/gin"

	"github.com/bcdservices/dashboard-api/internal/model"
	invoiceService "github.com/bcdservices/dashboard-api/internal/service/invoice"
	"github.com/bcdservices/dashboard-api/pkg/httputil"
)

type Handler struct {
	service invoiceService.InvoiceServicer
}

func NewHandler(service invoiceService.InvoiceServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/invoices", h.ListInvoices)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	var q model.InvoiceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	invoices, err := h.service.ListInvoices(c.Request.Context(), q)
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, invoices)
}
