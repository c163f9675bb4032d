package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository"
)

type blockedDateRepository struct {
	c *Client
}

func NewBlockedDateRepository(c *Client) repository.BlockedDateRepository {
	return &blockedDateRepository{c: c}
}

// List skips and logs records that do not decode, so one bad date never
// hides every other block.
func (r *blockedDateRepository) List(ctx context.Context) ([]model.BlockedDate, error) {
	var raw []json.RawMessage
	if err := r.c.do(ctx, "blocked_dates.list", http.MethodGet, "/blocked-dates", nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list blocked dates: %w", err)
	}

	records := make([]model.BlockedDate, 0, len(raw))
	for i, msg := range raw {
		var rec model.BlockedDate
		if err := json.Unmarshal(msg, &rec); err != nil {
			r.c.log.Warn("malformed blocked date skipped", "index", i, "error", err.Error())
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Block creates the date's block or extends it with more labels.
func (r *blockedDateRepository) Block(ctx context.Context, req *model.BlockRequest) error {
	if err := r.c.do(ctx, "blocked_dates.block", http.MethodPost, "/blocked-dates", nil, req, nil); err != nil {
		return fmt.Errorf("failed to block %s: %w", req.Date, err)
	}
	return nil
}

// Unblock removes the listed labels, or the whole date when req has none.
func (r *blockedDateRepository) Unblock(ctx context.Context, date string, req *model.UnblockRequest) error {
	if req == nil {
		req = &model.UnblockRequest{}
	}
	path := "/blocked-dates/" + url.PathEscape(date)
	if err := r.c.do(ctx, "blocked_dates.unblock", http.MethodDelete, path, nil, req, nil); err != nil {
		return fmt.Errorf("failed to unblock %s: %w", date, err)
	}
	return nil
}
