package repository

import (
	"context"

	"github.com/bcdservices/dashboard-api/internal/model"
)

// All repository interfaces in one file. Every implementation talks to the
// business backend; nothing is persisted locally.
type (
	// OrderRepository handles delivery and sweeping orders
	OrderRepository interface {
		ListWeek(ctx context.Context, weekStart string) ([]model.OrderRecord, error)
		Create(ctx context.Context, order *model.OrderPayload) (*model.SavedOrder, error)
		Update(ctx context.Context, kind model.OrderKind, id string, order *model.OrderPayload) (*model.SavedOrder, error)
		Delete(ctx context.Context, id string) error
	}

	BlockedDateRepository interface {
		List(ctx context.Context) ([]model.BlockedDate, error)
		Block(ctx context.Context, req *model.BlockRequest) error
		Unblock(ctx context.Context, date string, req *model.UnblockRequest) error
	}

	ProductRepository interface {
		List(ctx context.Context) ([]model.Product, error)
	}

	ClientRepository interface {
		List(ctx context.Context, page, limit int, search string) (*model.ClientPage, error)
		History(ctx context.Context, email string) (*model.ClientHistory, error)
	}

	InvoiceRepository interface {
		List(ctx context.Context, query model.InvoiceQuery) ([]model.Invoice, error)
		Estimated(ctx context.Context) ([]model.EstimatedSale, error)
	}
)
