package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

const bookingColumns = `id, barber_id, customer_name, customer_email, COALESCE(customer_phone, '') AS customer_phone,
	to_char(booking_date, 'YYYY-MM-DD') AS booking_date, booking_time, service_id, status, created_by, created_at, updated_at`

// BookingRepository persists appointments.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// OccupiedTimes returns the slot labels held by non cancelled bookings of a barber on date.
func (r *BookingRepository) OccupiedTimes(ctx context.Context, barberID, date string) (map[string]struct{}, error) {
	const query = `SELECT booking_time FROM bookings WHERE barber_id = $1 AND booking_date = $2 AND status <> $3`
	var times []string
	if err := r.db.SelectContext(ctx, &times, query, barberID, date, models.BookingCancelled); err != nil {
		return nil, fmt.Errorf("load occupied slots: %w", err)
	}
	occupied := make(map[string]struct{}, len(times))
	for _, t := range times {
		occupied[t] = struct{}{}
	}
	return occupied, nil
}

// Create inserts a booking. A taken slot surfaces as a unique violation.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = models.BookingConfirmed
	}

	const query = `INSERT INTO bookings (id, barber_id, customer_name, customer_email, customer_phone, booking_date, booking_time, service_id, status, created_by, created_at, updated_at)
		VALUES (:id, :barber_id, :customer_name, :customer_email, :customer_phone, :booking_date, :booking_time, :service_id, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// FindByID fetches a booking.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, "SELECT "+bookingColumns+" FROM bookings WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus changes the status of a booking.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3", status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return requireAffected(res)
}

// ListByBarberDate returns the bookings of a barber on date ordered by time.
func (r *BookingRepository) ListByBarberDate(ctx context.Context, barberID, date string) ([]models.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE barber_id = $1 AND booking_date = $2 ORDER BY booking_time ASC"
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, barberID, date); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}
