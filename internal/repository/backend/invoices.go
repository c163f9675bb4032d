package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository"
)

type invoiceRepository struct {
	c *Client
}

func NewInvoiceRepository(c *Client) repository.InvoiceRepository {
	return &invoiceRepository{c: c}
}

func (r *invoiceRepository) List(ctx context.Context, q model.InvoiceQuery) ([]model.Invoice, error) {
	query := url.Values{}
	for key, value := range map[string]string{
		"month":  q.Month,
		"day":    q.Day,
		"search": q.Search,
		"filter": string(q.Filter),
	} {
		if value != "" {
			query.Set(key, value)
		}
	}

	var invoices []model.Invoice
	if err := r.c.do(ctx, "invoices.list", http.MethodGet, "/completedSales", query, nil, &invoices); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepository) Estimated(ctx context.Context) ([]model.EstimatedSale, error) {
	var sales []model.EstimatedSale
	if err := r.c.do(ctx, "invoices.estimated", http.MethodGet, "/estimatedRevenue", nil, nil, &sales); err != nil {
		return nil, fmt.Errorf("failed to load estimated revenue: %w", err)
	}
	return sales, nil
}
