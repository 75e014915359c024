package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/barbershop-api/internal/models"
)

const closureColumns = `id, barber_email, to_char(closure_date, 'YYYY-MM-DD') AS closure_date, closure_type,
	COALESCE(reason, '') AS reason, COALESCE(created_by, '') AS created_by, created_at`

// ClosureRepository persists shop settings, recurring and ad-hoc barber closures.
type ClosureRepository struct {
	db *sqlx.DB
}

// NewClosureRepository constructs the repository.
func NewClosureRepository(db *sqlx.DB) *ClosureRepository {
	return &ClosureRepository{db: db}
}

// GetSettings loads the shop wide closures. A missing singleton row yields empty settings.
func (r *ClosureRepository) GetSettings(ctx context.Context) (*models.ClosureSettings, error) {
	const query = `SELECT id, closed_days, closed_dates, COALESCE(updated_by, '') AS updated_by, updated_at FROM closure_settings WHERE id = $1`
	var settings models.ClosureSettings
	if err := r.db.GetContext(ctx, &settings, query, models.ShopClosuresID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.ClosureSettings{ID: models.ShopClosuresID, ClosedDays: pq.Int64Array{}, ClosedDates: pq.StringArray{}}, nil
		}
		return nil, fmt.Errorf("load closure settings: %w", err)
	}
	return &settings, nil
}

// UpsertSettings replaces the shop wide closures.
func (r *ClosureRepository) UpsertSettings(ctx context.Context, settings *models.ClosureSettings) error {
	settings.ID = models.ShopClosuresID
	settings.UpdatedAt = time.Now().UTC()
	if settings.ClosedDays == nil {
		settings.ClosedDays = pq.Int64Array{}
	}
	if settings.ClosedDates == nil {
		settings.ClosedDates = pq.StringArray{}
	}
	const query = `INSERT INTO closure_settings (id, closed_days, closed_dates, updated_by, updated_at)
		VALUES (:id, :closed_days, :closed_dates, :updated_by, :updated_at)
		ON CONFLICT (id) DO UPDATE
		SET closed_days = EXCLUDED.closed_days,
		    closed_dates = EXCLUDED.closed_dates,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert closure settings: %w", err)
	}
	return nil
}

// RecurringDays returns the weekdays the barber is closed every week.
func (r *ClosureRepository) RecurringDays(ctx context.Context, barberEmail string) ([]int64, error) {
	rule, err := r.GetRecurring(ctx, barberEmail)
	if err != nil {
		return nil, err
	}
	return rule.ClosedDays, nil
}

// GetRecurring loads the recurring rule of a barber. A barber without a rule has no closed weekday.
func (r *ClosureRepository) GetRecurring(ctx context.Context, barberEmail string) (*models.RecurringClosure, error) {
	const query = `SELECT barber_email, closed_days, COALESCE(updated_by, '') AS updated_by, updated_at FROM barber_recurring_closures WHERE barber_email = $1`
	var rule models.RecurringClosure
	if err := r.db.GetContext(ctx, &rule, query, strings.ToLower(barberEmail)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.RecurringClosure{BarberEmail: barberEmail, ClosedDays: pq.Int64Array{}}, nil
		}
		return nil, fmt.Errorf("load recurring closures: %w", err)
	}
	return &rule, nil
}

// ListRecurring returns all recurring rules with at least one closed weekday.
func (r *ClosureRepository) ListRecurring(ctx context.Context) ([]models.RecurringClosure, error) {
	const query = `SELECT barber_email, closed_days, COALESCE(updated_by, '') AS updated_by, updated_at FROM barber_recurring_closures WHERE cardinality(closed_days) > 0 ORDER BY barber_email`
	var rules []models.RecurringClosure
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list recurring closures: %w", err)
	}
	return rules, nil
}

// UpsertRecurring replaces the weekday set of a barber.
func (r *ClosureRepository) UpsertRecurring(ctx context.Context, rule *models.RecurringClosure) error {
	rule.BarberEmail = strings.ToLower(rule.BarberEmail)
	rule.UpdatedAt = time.Now().UTC()
	if rule.ClosedDays == nil {
		rule.ClosedDays = pq.Int64Array{}
	}
	const query = `INSERT INTO barber_recurring_closures (barber_email, closed_days, updated_by, updated_at)
		VALUES (:barber_email, :closed_days, :updated_by, :updated_at)
		ON CONFLICT (barber_email) DO UPDATE
		SET closed_days = EXCLUDED.closed_days,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("upsert recurring closures: %w", err)
	}
	return nil
}

// ListAdhoc returns the ad-hoc closures of a barber on date.
func (r *ClosureRepository) ListAdhoc(ctx context.Context, barberEmail, date string) ([]models.BarberClosure, error) {
	query := "SELECT " + closureColumns + " FROM barber_closures WHERE barber_email = $1 AND closure_date = $2"
	var closures []models.BarberClosure
	if err := r.db.SelectContext(ctx, &closures, query, strings.ToLower(barberEmail), date); err != nil {
		return nil, fmt.Errorf("load ad-hoc closures: %w", err)
	}
	return closures, nil
}

// ListAdhocRange returns the ad-hoc closures of a barber between from and to inclusive.
func (r *ClosureRepository) ListAdhocRange(ctx context.Context, barberEmail, from, to string) ([]models.BarberClosure, error) {
	query := "SELECT " + closureColumns + " FROM barber_closures WHERE barber_email = $1 AND closure_date BETWEEN $2 AND $3 ORDER BY closure_date, closure_type"
	var closures []models.BarberClosure
	if err := r.db.SelectContext(ctx, &closures, query, strings.ToLower(barberEmail), from, to); err != nil {
		return nil, fmt.Errorf("list ad-hoc closures: %w", err)
	}
	return closures, nil
}

// CreateAdhoc inserts an ad-hoc closure. It reports false when an identical closure already exists.
func (r *ClosureRepository) CreateAdhoc(ctx context.Context, closure *models.BarberClosure) (bool, error) {
	if closure.ID == "" {
		closure.ID = uuid.NewString()
	}
	closure.BarberEmail = strings.ToLower(closure.BarberEmail)
	closure.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO barber_closures (id, barber_email, closure_date, closure_type, reason, created_by, created_at)
		VALUES (:id, :barber_email, :closure_date, :closure_type, :reason, :created_by, :created_at)
		ON CONFLICT (barber_email, closure_date, closure_type) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, closure)
	if err != nil {
		return false, fmt.Errorf("create ad-hoc closure: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAdhoc removes ad-hoc closures of a barber on date. An empty closure type removes all of them.
func (r *ClosureRepository) DeleteAdhoc(ctx context.Context, barberEmail, date string, closureType models.ClosureType) (int64, error) {
	query := "DELETE FROM barber_closures WHERE barber_email = $1 AND closure_date = $2"
	args := []interface{}{strings.ToLower(barberEmail), date}
	if closureType != "" {
		query += " AND closure_type = $3"
		args = append(args, closureType)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete ad-hoc closures: %w", err)
	}
	return res.RowsAffected()
}
