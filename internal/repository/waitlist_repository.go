package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

const waitlistColumns = `id, barber_id, to_char(entry_date, 'YYYY-MM-DD') AS entry_date, entry_time, customer_name, customer_email,
	COALESCE(customer_phone, '') AS customer_phone, service_id, status, position, offered_booking_id, offered_time, offer_expires_at, created_at, updated_at`

// WaitlistRepository persists waitlist entries.
type WaitlistRepository struct {
	db *sqlx.DB
}

// NewWaitlistRepository constructs the repository.
func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// Create appends an entry at the end of the queue of its barber and date.
func (r *WaitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	entry.Status = models.WaitlistWaiting

	const query = `INSERT INTO waitlist_entries (id, barber_id, entry_date, entry_time, customer_name, customer_email, customer_phone, service_id, status, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM waitlist_entries WHERE barber_id = $2 AND entry_date = $3), $10, $11)
		RETURNING position`
	if err := r.db.GetContext(ctx, &entry.Position, query,
		entry.ID, entry.BarberID, entry.EntryDate, entry.EntryTime, entry.CustomerName, entry.CustomerEmail,
		entry.CustomerPhone, entry.ServiceID, entry.Status, entry.CreatedAt, entry.UpdatedAt); err != nil {
		return fmt.Errorf("create waitlist entry: %w", err)
	}
	return nil
}

// FindByID fetches an entry.
func (r *WaitlistRepository) FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := r.db.GetContext(ctx, &entry, "SELECT "+waitlistColumns+" FROM waitlist_entries WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByBarberDate returns the queue of a barber on date in position order.
func (r *WaitlistRepository) ListByBarberDate(ctx context.Context, barberID, date string) ([]models.WaitlistEntry, error) {
	query := "SELECT " + waitlistColumns + " FROM waitlist_entries WHERE barber_id = $1 AND entry_date = $2 ORDER BY position ASC"
	var entries []models.WaitlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, barberID, date); err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	return entries, nil
}

// Waiting returns the waiting entries of a barber on date in position order.
func (r *WaitlistRepository) Waiting(ctx context.Context, barberID, date string) ([]models.WaitlistEntry, error) {
	query := "SELECT " + waitlistColumns + " FROM waitlist_entries WHERE barber_id = $1 AND entry_date = $2 AND status = $3 ORDER BY position ASC"
	var entries []models.WaitlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, barberID, date, models.WaitlistWaiting); err != nil {
		return nil, fmt.Errorf("list waiting entries: %w", err)
	}
	return entries, nil
}

// ExistsActive reports whether the customer already queues for barber and date.
func (r *WaitlistRepository) ExistsActive(ctx context.Context, barberID, date, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM waitlist_entries WHERE barber_id = $1 AND entry_date = $2 AND LOWER(customer_email) = LOWER($3) AND status IN ($4, $5))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, barberID, date, email, models.WaitlistWaiting, models.WaitlistOffered); err != nil {
		return false, fmt.Errorf("check waitlist entry: %w", err)
	}
	return exists, nil
}

// MarkOffered moves a waiting entry to offered. It returns sql.ErrNoRows when the entry is no longer waiting.
func (r *WaitlistRepository) MarkOffered(ctx context.Context, id, slot string, expiresAt time.Time) error {
	const query = `UPDATE waitlist_entries SET status = $1, offered_time = $2, offer_expires_at = $3, updated_at = $4 WHERE id = $5 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, models.WaitlistOffered, slot, expiresAt, time.Now().UTC(), id, models.WaitlistWaiting)
	if err != nil {
		return fmt.Errorf("offer waitlist entry: %w", err)
	}
	return requireAffected(res)
}

// Transition moves an entry from one status to another, optionally linking the booking it produced.
// It returns sql.ErrNoRows when the entry is not in the expected status.
func (r *WaitlistRepository) Transition(ctx context.Context, id string, from, to models.WaitlistStatus, bookingID *string) error {
	const query = `UPDATE waitlist_entries SET status = $1, offered_booking_id = COALESCE($2, offered_booking_id), updated_at = $3 WHERE id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, to, bookingID, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("transition waitlist entry: %w", err)
	}
	return requireAffected(res)
}

// ExpiredOffers returns offered entries whose offer lapsed before now.
func (r *WaitlistRepository) ExpiredOffers(ctx context.Context, now time.Time) ([]models.WaitlistEntry, error) {
	query := "SELECT " + waitlistColumns + " FROM waitlist_entries WHERE status = $1 AND offer_expires_at < $2 ORDER BY offer_expires_at ASC"
	var entries []models.WaitlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, models.WaitlistOffered, now); err != nil {
		return nil, fmt.Errorf("list expired offers: %w", err)
	}
	return entries, nil
}

// ExpireStale marks entries of past dates that are still waiting as expired.
func (r *WaitlistRepository) ExpireStale(ctx context.Context, today string) (int64, error) {
	const query = `UPDATE waitlist_entries SET status = $1, updated_at = $2 WHERE status = $3 AND entry_date < $4`
	res, err := r.db.ExecContext(ctx, query, models.WaitlistExpired, time.Now().UTC(), models.WaitlistWaiting, today)
	if err != nil {
		return 0, fmt.Errorf("expire stale waitlist entries: %w", err)
	}
	return res.RowsAffected()
}
