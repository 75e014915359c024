package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

const barberColumns = "id, email, full_name, active, created_at, updated_at"

// BarberRepository persists barbers.
type BarberRepository struct {
	db *sqlx.DB
}

// NewBarberRepository constructs the repository.
func NewBarberRepository(db *sqlx.DB) *BarberRepository {
	return &BarberRepository{db: db}
}

// List returns barbers ordered by name with the total count for pagination.
func (r *BarberRepository) List(ctx context.Context, filter models.BarberFilter) ([]models.Barber, int, error) {
	base := "FROM barbers"
	var args []interface{}
	if filter.ActiveOnly {
		base += " WHERE active = $1"
		args = append(args, true)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY full_name ASC LIMIT %d OFFSET %d", barberColumns, base, size, offset)
	var barbers []models.Barber
	if err := r.db.SelectContext(ctx, &barbers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list barbers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count barbers: %w", err)
	}
	return barbers, total, nil
}

// ListActive returns every active barber.
func (r *BarberRepository) ListActive(ctx context.Context) ([]models.Barber, error) {
	query := "SELECT " + barberColumns + " FROM barbers WHERE active = TRUE ORDER BY full_name ASC"
	var barbers []models.Barber
	if err := r.db.SelectContext(ctx, &barbers, query); err != nil {
		return nil, fmt.Errorf("list active barbers: %w", err)
	}
	return barbers, nil
}

// FindByID fetches a barber by primary key.
func (r *BarberRepository) FindByID(ctx context.Context, id string) (*models.Barber, error) {
	query := "SELECT " + barberColumns + " FROM barbers WHERE id = $1"
	var barber models.Barber
	if err := r.db.GetContext(ctx, &barber, query, id); err != nil {
		return nil, err
	}
	return &barber, nil
}

// FindByEmail fetches a barber by e-mail, case insensitively.
func (r *BarberRepository) FindByEmail(ctx context.Context, email string) (*models.Barber, error) {
	query := "SELECT " + barberColumns + " FROM barbers WHERE email = $1"
	var barber models.Barber
	if err := r.db.GetContext(ctx, &barber, query, strings.ToLower(email)); err != nil {
		return nil, err
	}
	return &barber, nil
}

// Create inserts a barber.
func (r *BarberRepository) Create(ctx context.Context, barber *models.Barber) error {
	if barber.ID == "" {
		barber.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	barber.Email = strings.ToLower(barber.Email)
	barber.CreatedAt = now
	barber.UpdatedAt = now

	const query = `INSERT INTO barbers (id, email, full_name, active, created_at, updated_at)
		VALUES (:id, :email, :full_name, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, barber); err != nil {
		return fmt.Errorf("create barber: %w", err)
	}
	return nil
}

// SetActive toggles whether the barber accepts bookings.
func (r *BarberRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE barbers SET active = $1, updated_at = $2 WHERE id = $3", active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set barber active: %w", err)
	}
	return requireAffected(res)
}
