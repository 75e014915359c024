package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
)

var serviceRowColumns = []string{"id", "name", "price_cents", "duration_minutes", "active", "created_at", "updated_at"}

func TestServiceRepositoryList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM services WHERE active = TRUE ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows(serviceRowColumns).AddRow("s1", "Taglio", 2500, 30, true, now, now))
	services, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Taglio", services[0].Name)

	mock.ExpectQuery(regexp.QuoteMeta("FROM services ORDER BY name ASC")).
		WillReturnError(errors.New("connection reset"))
	_, err = repo.List(context.Background(), false)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepositoryCreateAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceRepository(db)

	mock.ExpectExec("INSERT INTO services").WillReturnResult(sqlmock.NewResult(1, 1))
	svc := &models.Service{Name: "Barba", PriceCents: 1500, DurationMinutes: 30, Active: true}
	require.NoError(t, repo.Create(context.Background(), svc))
	assert.NotEmpty(t, svc.ID)
	assert.False(t, svc.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
