package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

type barberCatalogStub struct {
	barberStoreStub
	createErr error
	lastPage  models.BarberFilter
}

func (s *barberCatalogStub) List(ctx context.Context, filter models.BarberFilter) ([]models.Barber, int, error) {
	s.lastPage = filter
	out := make([]models.Barber, 0, len(s.barbers))
	for _, b := range s.barbers {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (s *barberCatalogStub) Create(ctx context.Context, barber *models.Barber) error {
	if s.createErr != nil {
		return s.createErr
	}
	barber.ID = "new-barber"
	s.barbers[barber.ID] = barber
	return nil
}

func (s *barberCatalogStub) SetActive(ctx context.Context, id string, active bool) error {
	b, ok := s.barbers[id]
	if !ok {
		return sql.ErrNoRows
	}
	b.Active = active
	return nil
}

type serviceCatalogStub struct {
	createErr error
}

func (s *serviceCatalogStub) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	return []models.Service{{ID: "svc-1", Name: "Taglio", Active: true}}, nil
}

func (s *serviceCatalogStub) Create(ctx context.Context, svc *models.Service) error {
	if s.createErr != nil {
		return s.createErr
	}
	svc.ID = "svc-new"
	return nil
}

func newCatalogService() (*CatalogService, *barberCatalogStub, *serviceCatalogStub, *invalidationRecorder) {
	barbers := &barberCatalogStub{barberStoreStub: barberStoreStub{barbers: map[string]*models.Barber{
		"fabio": {ID: "fabio", Email: "fabio@shop.test", Active: true},
	}}}
	services := &serviceCatalogStub{}
	inv := &invalidationRecorder{}
	return NewCatalogService(barbers, services, inv, nil, nil), barbers, services, inv
}

func TestCatalogServiceBarbers(t *testing.T) {
	svc, barbers, _, inv := newCatalogService()
	ctx := context.Background()

	_, page, err := svc.ListBarbers(ctx, models.BarberFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, barbers.lastPage.PageSize)

	_, err = svc.CreateBarber(ctx, dto.CreateBarberRequest{Email: "new@shop.test", FullName: "New"}, fabioActor)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	created, err := svc.CreateBarber(ctx, dto.CreateBarberRequest{Email: " New@Shop.test ", FullName: "New"}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, "new@shop.test", created.Email)
	assert.True(t, created.Active)

	barbers.createErr = &pq.Error{Code: "23505"}
	_, err = svc.CreateBarber(ctx, dto.CreateBarberRequest{Email: "dup@shop.test", FullName: "Dup"}, adminActor)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	off := false
	updated, err := svc.SetBarberActive(ctx, "fabio", dto.SetBarberActiveRequest{Active: &off}, adminActor)
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, []string{"fabio"}, inv.barbers)

	_, err = svc.SetBarberActive(ctx, "ghost", dto.SetBarberActiveRequest{Active: &off}, adminActor)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestCatalogServiceServices(t *testing.T) {
	svc, _, services, _ := newCatalogService()
	ctx := context.Background()

	list, err := svc.ListServices(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.CreateService(ctx, dto.CreateServiceRequest{Name: "Barba", DurationMinutes: 2}, adminActor)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	created, err := svc.CreateService(ctx, dto.CreateServiceRequest{Name: "Barba", PriceCents: 1200, DurationMinutes: 20}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, "svc-new", created.ID)

	services.createErr = &pq.Error{Code: "23505"}
	_, err = svc.CreateService(ctx, dto.CreateServiceRequest{Name: "Barba", DurationMinutes: 20}, adminActor)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}
