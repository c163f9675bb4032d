package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository"
)

type clientRepository struct {
	c *Client
}

func NewClientRepository(c *Client) repository.ClientRepository {
	return &clientRepository{c: c}
}

func (r *clientRepository) List(ctx context.Context, page, limit int, search string) (*model.ClientPage, error) {
	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	if search != "" {
		query.Set("search", search)
	}

	var out model.ClientPage
	if err := r.c.do(ctx, "clients.list", http.MethodGet, "/clients", query, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	out.Page = page
	return &out, nil
}

func (r *clientRepository) History(ctx context.Context, email string) (*model.ClientHistory, error) {
	var out model.ClientHistory
	query := url.Values{"email": {email}}
	if err := r.c.do(ctx, "clients.history", http.MethodGet, "/client-orders", query, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to load orders for %s: %w", email, err)
	}
	return &out, nil
}
