package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
)

func TestScheduleRepositoryUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO barber_schedules .* ON CONFLICT \\(barber_id, schedule_date\\) DO UPDATE").
		WithArgs("b1", "2025-06-02", false, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	schedule := &models.BarberSchedule{
		BarberID:         "b1",
		ScheduleDate:     "2025-06-02",
		AvailableSlots:   pq.StringArray{"09:00", "09:30"},
		UnavailableSlots: pq.StringArray{"10:00"},
	}
	require.NoError(t, repo.Upsert(context.Background(), schedule))
	assert.False(t, schedule.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)
	now := time.Now()
	columns := []string{"barber_id", "schedule_date", "day_off", "available_slots", "unavailable_slots", "updated_at"}

	mock.ExpectQuery("FROM barber_schedules WHERE barber_id = \\$1 AND schedule_date = \\$2").
		WithArgs("b1", "2025-06-02").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("b1", "2025-06-02", false, "{09:00,09:30}", "{10:00}", now))

	schedule, err := repo.Get(context.Background(), "b1", "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"09:00", "09:30"}, schedule.AvailableSlots)
	assert.Equal(t, pq.StringArray{"10:00"}, schedule.UnavailableSlots)

	mock.ExpectQuery("FROM barber_schedules").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "b1", "2025-06-03")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
