package product

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/pkg/httputil"
)

type Lister interface {
	List(ctx context.Context) ([]model.Product, error)
}

type Handler struct {
	products Lister
}

func NewHandler(products Lister) *Handler {
	return &Handler{products: products}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/products", h.ListProducts)
}

// ListProducts returns what the order editor can add to a cart; sweeping
// services are booked separately.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, model.Sellable(products))
}
