package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
)

type orderRepository struct {
	c *Client
}

func NewOrderRepository(c *Client) repository.OrderRepository {
	return &orderRepository{c: c}
}

// ListWeek decodes the week's orders one by one. A record that does not
// decode or carries no date is logged, counted as dropped and skipped; the
// rest of the week is kept.
func (r *orderRepository) ListWeek(ctx context.Context, weekStart string) ([]model.OrderRecord, error) {
	var raw []json.RawMessage
	query := url.Values{"start_date": {weekStart}}
	if err := r.c.do(ctx, "orders.list_week", http.MethodGet, "/get-week-orders", query, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list orders for week %s: %w", weekStart, err)
	}

	records := make([]model.OrderRecord, 0, len(raw))
	dropped := 0
	for i, msg := range raw {
		var rec model.OrderRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			r.c.log.Warn("malformed order dropped", "week", weekStart, "index", i, "error", err.Error())
			dropped++
			continue
		}
		if rec.Date.IsZero() {
			r.c.log.Warn("order without a date dropped", "week", weekStart, "index", i, "id", rec.ID)
			dropped++
			continue
		}
		records = append(records, rec)
	}
	r.c.metrics.AddDropped(dropped)
	return records, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.OrderPayload) (*model.SavedOrder, error) {
	var saved model.SavedOrder
	if err := r.c.do(ctx, "orders.create", http.MethodPost, "/orders", nil, order, &saved); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &saved, nil
}

// Update edits a delivery order or, for sweeping, the ramonage record.
func (r *orderRepository) Update(ctx context.Context, kind model.OrderKind, id string, order *model.OrderPayload) (*model.SavedOrder, error) {
	if id == "" {
		return nil, apperrors.NewBadRequest("order id is required", nil)
	}
	path := "/orders/" + url.PathEscape(id)
	op := "orders.update"
	if kind == model.OrderKindSweeping {
		path = "/ramonages/" + url.PathEscape(id)
		op = "ramonages.update"
	}

	var saved model.SavedOrder
	if err := r.c.do(ctx, op, http.MethodPut, path, nil, order, &saved); err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", id, err)
	}
	return &saved, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewBadRequest("order id is required", nil)
	}
	if err := r.c.do(ctx, "orders.delete", http.MethodDelete, "/orders/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	return nil
}
