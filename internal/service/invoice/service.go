package invoice

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
	pkgvalidator "github.com/bcdservices/dashboard-api/pkg/validator"
)

type InvoiceServicer interface {
	ListInvoices(ctx context.Context, query model.InvoiceQuery) ([]model.Invoice, error)
}

type Service struct {
	repo     repository.InvoiceRepository
	validate *validator.Validate
}

func NewService(repo repository.InvoiceRepository) *Service {
	return &Service{repo: repo, validate: pkgvalidator.New()}
}

// ListInvoices searches completed sales. An empty filter means all kinds.
func (s *Service) ListInvoices(ctx context.Context, query model.InvoiceQuery) ([]model.Invoice, error) {
	if query.Filter == "" {
		query.Filter = model.InvoiceFilterAll
	}
	if !query.Filter.Valid() {
		return nil, apperrors.NewBadRequest("unknown invoice filter "+string(query.Filter), nil)
	}
	if err := s.validate.Struct(query); err != nil {
		return nil, apperrors.NewBadRequest(pkgvalidator.Summary(err), err)
	}

	invoices, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []model.Invoice{}
	}
	return invoices, nil
}
