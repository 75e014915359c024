package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

// ScheduleRepository persists materialised barber schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Upsert writes the schedule of a barber for one date.
func (r *ScheduleRepository) Upsert(ctx context.Context, schedule *models.BarberSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO barber_schedules (barber_id, schedule_date, day_off, available_slots, unavailable_slots, updated_at)
		VALUES (:barber_id, :schedule_date, :day_off, :available_slots, :unavailable_slots, :updated_at)
		ON CONFLICT (barber_id, schedule_date) DO UPDATE
		SET day_off = EXCLUDED.day_off,
		    available_slots = EXCLUDED.available_slots,
		    unavailable_slots = EXCLUDED.unavailable_slots,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("upsert barber schedule: %w", err)
	}
	return nil
}

// Get loads the schedule of a barber for one date.
func (r *ScheduleRepository) Get(ctx context.Context, barberID, date string) (*models.BarberSchedule, error) {
	const query = `SELECT barber_id, to_char(schedule_date, 'YYYY-MM-DD') AS schedule_date, day_off, available_slots, unavailable_slots, updated_at
		FROM barber_schedules WHERE barber_id = $1 AND schedule_date = $2`
	var schedule models.BarberSchedule
	if err := r.db.GetContext(ctx, &schedule, query, barberID, date); err != nil {
		return nil, err
	}
	return &schedule, nil
}
