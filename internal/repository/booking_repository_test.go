package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
)

func TestBookingRepositoryOccupiedTimes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT booking_time FROM bookings WHERE barber_id = $1 AND booking_date = $2 AND status <> $3")).
		WithArgs("barber-1", "2025-03-08", models.BookingCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"booking_time"}).AddRow("10:00").AddRow("11:30"))

	occupied, err := repo.OccupiedTimes(context.Background(), "barber-1", "2025-03-08")
	require.NoError(t, err)
	assert.Len(t, occupied, 2)
	assert.Contains(t, occupied, "10:00")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(1, 1))

	booking := &models.Booking{BarberID: "barber-1", CustomerName: "Luca", CustomerEmail: "luca@example.com", BookingDate: "2025-03-08", BookingTime: "10:00", ServiceID: "svc-1"}
	require.NoError(t, repo.Create(context.Background(), booking))
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryFindAndUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "barber_id", "customer_name", "customer_email", "customer_phone", "booking_date", "booking_time", "service_id", "status", "created_by", "created_at", "updated_at"}).
		AddRow("bk-1", "barber-1", "Luca", "luca@example.com", "", "2025-03-08", "10:00", "svc-1", "confirmed", nil, now, now)
	mock.ExpectQuery("SELECT id, barber_id, customer_name .* FROM bookings WHERE id = \\$1").
		WithArgs("bk-1").
		WillReturnRows(rows)

	booking, err := repo.FindByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-08", booking.BookingDate)
	assert.Nil(t, booking.CreatedBy)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(models.BookingCancelled, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateStatus(context.Background(), "missing", models.BookingCancelled)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
