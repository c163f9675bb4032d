package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcdservices/dashboard-api/internal/model"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
)

type fakeRepo struct {
	page, limit int
	search      string
	email       string
	clients     []model.Client
	err         error
}

func (f *fakeRepo) List(ctx context.Context, page, limit int, search string) (*model.ClientPage, error) {
	f.page, f.limit, f.search = page, limit, search
	if f.err != nil {
		return nil, f.err
	}
	return &model.ClientPage{Clients: f.clients, Page: page, TotalPages: 3}, nil
}

func (f *fakeRepo) History(ctx context.Context, email string) (*model.ClientHistory, error) {
	f.email = email
	return &model.ClientHistory{Orders: []model.ClientOrder{{ID: "o1"}}}, f.err
}

func TestListClientsTitleCasesNames(t *testing.T) {
	repo := &fakeRepo{clients: []model.Client{{Nom: "DUPONT", Prenom: "jean-marc"}, {Nom: "de la tour", Prenom: "ÉLODIE"}}}
	svc := NewService(repo)

	page, err := svc.ListClients(context.Background(), 2, "  dup ")
	require.NoError(t, err)

	assert.Equal(t, 2, repo.page)
	assert.Equal(t, PageSize, repo.limit)
	assert.Equal(t, "dup", repo.search)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "Dupont", page.Clients[0].Nom)
	assert.Equal(t, "Jean-Marc", page.Clients[0].Prenom)
	assert.Equal(t, "De La Tour", page.Clients[1].Nom)
	assert.Equal(t, "Élodie", page.Clients[1].Prenom)
}

func TestListClientsClampsPage(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	page, err := svc.ListClients(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.page)
	assert.NotNil(t, page.Clients)

	_, err = svc.ListClients(context.Background(), -4, "")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.page)
}

func TestClientOrdersRequiresEmail(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.ClientOrders(context.Background(), "")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = svc.ClientOrders(context.Background(), "not-an-email")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Empty(t, repo.email)

	history, err := svc.ClientOrders(context.Background(), "claire@example.fr")
	require.NoError(t, err)
	assert.Equal(t, "claire@example.fr", repo.email)
	assert.Len(t, history.Orders, 1)
}
