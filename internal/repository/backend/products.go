package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository"
)

const productsCacheKey = "products"

// productRepository keeps the product list for ttl; the catalog changes
// far less often than the dashboard asks for it.
type productRepository struct {
	c     *Client
	cache *cache.Cache
}

func NewProductRepository(c *Client, ttl time.Duration) repository.ProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &productRepository{c: c, cache: cache.New(ttl, 2*ttl)}
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	if cached, ok := r.cache.Get(productsCacheKey); ok {
		return cached.([]model.Product), nil
	}

	var products []model.Product
	if err := r.c.do(ctx, "products.list", http.MethodGet, "/products", nil, nil, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	r.cache.SetDefault(productsCacheKey, products)
	return products, nil
}
