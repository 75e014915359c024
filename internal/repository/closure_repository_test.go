package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
)

func TestClosureRepositoryGetSettings(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClosureRepository(db)
	now := time.Now()

	mock.ExpectQuery("FROM closure_settings WHERE id = \\$1").
		WithArgs(models.ShopClosuresID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "closed_days", "closed_dates", "updated_by", "updated_at"}).
			AddRow(models.ShopClosuresID, "{0}", "{2025-12-25,2026-01-01}", "admin@shop.test", now))

	settings, err := repo.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pq.Int64Array{0}, settings.ClosedDays)
	assert.Equal(t, pq.StringArray{"2025-12-25", "2026-01-01"}, settings.ClosedDates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosureRepositoryGetSettingsMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClosureRepository(db)

	mock.ExpectQuery("FROM closure_settings").WillReturnError(sql.ErrNoRows)

	settings, err := repo.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, settings.ClosedDays)
	assert.Empty(t, settings.ClosedDates)
}

func TestClosureRepositoryGetSettingsFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClosureRepository(db)

	mock.ExpectQuery("FROM closure_settings").WillReturnError(errors.New("connection refused"))

	_, err := repo.GetSettings(context.Background())
	assert.Error(t, err)
}

func TestClosureRepositoryRecurringDays(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClosureRepository(db)

	mock.ExpectQuery("FROM barber_recurring_closures WHERE barber_email = \\$1").
		WithArgs("fabio@shop.test").
		WillReturnRows(sqlmock.NewRows([]string{"barber_email", "closed_days", "updated_by", "updated_at"}).
			AddRow("fabio@shop.test", "{1,3}", "", time.Now()))

	days, err := repo.RecurringDays(context.Background(), "Fabio@Shop.test")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, days)

	mock.ExpectQuery("FROM barber_recurring_closures").WillReturnError(sql.ErrNoRows)
	days, err = repo.RecurringDays(context.Background(), "michele@shop.test")
	require.NoError(t, err)
	assert.Empty(t, days)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosureRepositoryUpsertRecurring(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClosureRepository(db)

	mock.ExpectExec("INSERT INTO barber_recurring_closures .* ON CONFLICT \\(barber_email\\) DO UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rule := &models.RecurringClosure{BarberEmail: "FABIO@shop.test"}
	require.NoError(t, repo.UpsertRecurring(context.Background(), rule))
	assert.Equal(t, "fabio@shop.test", rule.BarberEmail)
	assert.NotNil(t, rule.ClosedDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosureRepositoryListAdhoc(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClosureRepository(db)

	mock.ExpectQuery("FROM barber_closures WHERE barber_email = \\$1 AND closure_date = \\$2").
		WithArgs("fabio@shop.test", "2025-03-03").
		WillReturnRows(sqlmock.NewRows([]string{"id", "barber_email", "closure_date", "closure_type", "reason", "created_by", "created_at"}).
			AddRow("c1", "fabio@shop.test", "2025-03-03", "morning", "dentist", "admin@shop.test", time.Now()).
			AddRow("c2", "fabio@shop.test", "2025-03-03", "afternoon", "", "", time.Now()))

	closures, err := repo.ListAdhoc(context.Background(), "fabio@shop.test", "2025-03-03")
	require.NoError(t, err)
	require.Len(t, closures, 2)
	assert.Equal(t, models.ClosureMorning, closures[0].ClosureType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosureRepositoryCreateAdhocIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClosureRepository(db)

	mock.ExpectExec("INSERT INTO barber_closures .* ON CONFLICT \\(barber_email, closure_date, closure_type\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO barber_closures").
		WillReturnResult(sqlmock.NewResult(0, 0))

	closure := models.BarberClosure{BarberEmail: "fabio@shop.test", ClosureDate: "2025-03-03", ClosureType: models.ClosureFull}
	first := closure
	created, err := repo.CreateAdhoc(context.Background(), &first)
	require.NoError(t, err)
	assert.True(t, created)

	second := closure
	created, err = repo.CreateAdhoc(context.Background(), &second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosureRepositoryDeleteAdhoc(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClosureRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM barber_closures WHERE barber_email = $1 AND closure_date = $2 AND closure_type = $3")).
		WithArgs("fabio@shop.test", "2025-03-03", models.ClosureMorning).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM barber_closures WHERE barber_email = $1 AND closure_date = $2")).
		WithArgs("fabio@shop.test", "2025-03-04").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteAdhoc(context.Background(), "fabio@shop.test", "2025-03-03", models.ClosureMorning)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteAdhoc(context.Background(), "fabio@shop.test", "2025-03-04", "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
