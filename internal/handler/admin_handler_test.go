package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/dto"
	"github.com/noah-isme/barbershop-api/internal/models"
)

type adminMock struct {
	barberID string
	from     time.Time
	days     int
}

func (m *adminMock) RegenerateSchedules(ctx context.Context, barberID string, from time.Time, days int) (int, error) {
	m.barberID, m.from, m.days = barberID, from, days
	return days, nil
}

func (m *adminMock) Schedule(ctx context.Context, barberID, date string, actor *models.JWTClaims) (*models.BarberSchedule, error) {
	return &models.BarberSchedule{BarberID: barberID, ScheduleDate: date}, nil
}

func (m *adminMock) SyncRecurringClosures(ctx context.Context, from time.Time, days int) (*dto.SyncClosuresResult, error) {
	m.from, m.days = from, days
	return &dto.SyncClosuresResult{Barbers: 2, Inserted: 3}, nil
}

func (m *adminMock) ExpireOffers(ctx context.Context) (*dto.ExpireOffersResult, error) {
	return &dto.ExpireOffersResult{Expired: 1}, nil
}

func TestAdminHandlerRegenerateSchedules(t *testing.T) {
	mock := &adminMock{}
	h := NewAdminHandler(mock, mock, mock)

	c, w := newGinContext(http.MethodPost, "/admin/schedules/regenerate", []byte(`{"barberId":"fabio","from":"2025-06-01","days":14}`))
	h.RegenerateSchedules(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fabio", mock.barberID)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), mock.from)
	assert.Contains(t, w.Body.String(), `"written":14`)

	c, w = newGinContext(http.MethodPost, "/admin/schedules/regenerate", []byte(`{"from":"01/06/2025","days":14}`))
	h.RegenerateSchedules(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodPost, "/admin/schedules/regenerate", []byte(`{"from":"2025-06-01","days":0}`))
	h.RegenerateSchedules(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandlerMaintenanceJobs(t *testing.T) {
	mock := &adminMock{}
	h := NewAdminHandler(mock, mock, mock)

	c, w := newGinContext(http.MethodPost, "/admin/closures/sync", []byte(`{"from":"2025-06-01","days":30}`))
	h.SyncClosures(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, mock.days)
	assert.Contains(t, w.Body.String(), `"inserted":3`)

	c, w = newGinContext(http.MethodPost, "/admin/waitlist/expire", nil)
	h.ExpireOffers(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expired":1`)

	c, w = newGinContext(http.MethodGet, "/barbers/fabio/schedule?date=2025-06-02", nil)
	h.Schedule(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
