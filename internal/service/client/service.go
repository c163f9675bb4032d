package client

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository"
	"github.com/bcdservices/dashboard-api/internal/schedule"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
	pkgvalidator "github.com/bcdservices/dashboard-api/pkg/validator"
)

// PageSize is the number of clients the roster shows per page.
const PageSize = 12

type ClientServicer interface {
	ListClients(ctx context.Context, page int, search string) (*model.ClientPage, error)
	ClientOrders(ctx context.Context, email string) (*model.ClientHistory, error)
}

type Service struct {
	repo     repository.ClientRepository
	validate *validator.Validate
}

func NewService(repo repository.ClientRepository) *Service {
	return &Service{repo: repo, validate: pkgvalidator.New()}
}

// ListClients returns one page of the roster. Pages start at 1; anything
// lower is treated as the first page.
func (s *Service) ListClients(ctx context.Context, page int, search string) (*model.ClientPage, error) {
	if page < 1 {
		page = 1
	}
	result, err := s.repo.List(ctx, page, PageSize, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}

	for i := range result.Clients {
		result.Clients[i].Nom = schedule.FormatName(result.Clients[i].Nom)
		result.Clients[i].Prenom = schedule.FormatName(result.Clients[i].Prenom)
	}
	if result.Clients == nil {
		result.Clients = []model.Client{}
	}
	result.Page = page
	return result, nil
}

func (s *Service) ClientOrders(ctx context.Context, email string) (*model.ClientHistory, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.NewBadRequest("a valid client email is required", err)
	}
	return s.repo.History(ctx, email)
}
