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

func TestWaitlistRepositoryCreateAssignsPosition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWaitlistRepository(db)

	mock.ExpectQuery("INSERT INTO waitlist_entries .* RETURNING position").
		WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(3))

	entry := &models.WaitlistEntry{BarberID: "b1", EntryDate: "2025-03-08", CustomerName: "Anna", CustomerEmail: "anna@example.com"}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, 3, entry.Position)
	assert.Equal(t, models.WaitlistWaiting, entry.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryMarkOfferedRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWaitlistRepository(db)
	expires := time.Now().Add(30 * time.Minute)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE waitlist_entries SET status = $1, offered_time = $2, offer_expires_at = $3, updated_at = $4 WHERE id = $5 AND status = $6")).
		WithArgs(models.WaitlistOffered, "10:00", expires, sqlmock.AnyArg(), "w1", models.WaitlistWaiting).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkOffered(context.Background(), "w1", "10:00", expires)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryTransition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWaitlistRepository(db)
	bookingID := "bk-9"

	mock.ExpectExec("UPDATE waitlist_entries SET status = \\$1, offered_booking_id").
		WithArgs(models.WaitlistAccepted, &bookingID, sqlmock.AnyArg(), "w1", models.WaitlistOffered).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Transition(context.Background(), "w1", models.WaitlistOffered, models.WaitlistAccepted, &bookingID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryExpiredOffers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWaitlistRepository(db)
	now := time.Now()
	slot := "10:00"

	mock.ExpectQuery("FROM waitlist_entries WHERE status = \\$1 AND offer_expires_at < \\$2").
		WithArgs(models.WaitlistOffered, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "barber_id", "entry_date", "entry_time", "customer_name", "customer_email", "customer_phone", "service_id", "status", "position", "offered_booking_id", "offered_time", "offer_expires_at", "created_at", "updated_at"}).
			AddRow("w1", "b1", "2025-03-08", nil, "Anna", "anna@example.com", "", "svc-1", "offered", 1, nil, slot, now.Add(-time.Minute), now, now))

	entries, err := repo.ExpiredOffers(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].EntryTime)
	assert.Equal(t, "10:00", *entries[0].OfferedTime)
}

func TestWaitlistRepositoryExistsActiveAndExpireStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWaitlistRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LOWER(customer_email) = LOWER($3) AND status IN ($4, $5)")).
		WithArgs("b1", "2025-03-08", "Anna@Example.com", models.WaitlistWaiting, models.WaitlistOffered).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	exists, err := repo.ExistsActive(context.Background(), "b1", "2025-03-08", "Anna@Example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE waitlist_entries SET status = $1, updated_at = $2 WHERE status = $3 AND entry_date < $4")).
		WithArgs(models.WaitlistExpired, sqlmock.AnyArg(), models.WaitlistWaiting, "2025-03-09").
		WillReturnResult(sqlmock.NewResult(0, 4))
	expired, err := repo.ExpireStale(context.Background(), "2025-03-09")
	require.NoError(t, err)
	assert.EqualValues(t, 4, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}
