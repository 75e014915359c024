package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/barbershop-api/internal/models"
)

const serviceColumns = "id, name, price_cents, duration_minutes, active, created_at, updated_at"

// ServiceRepository persists the shop price list.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository constructs the repository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// List returns services ordered by name.
func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	query := "SELECT " + serviceColumns + " FROM services"
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name ASC"
	var services []models.Service
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// FindByID fetches a service.
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, "SELECT "+serviceColumns+" FROM services WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &svc, nil
}

// Create inserts a service.
func (r *ServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	const query = `INSERT INTO services (id, name, price_cents, duration_minutes, active, created_at, updated_at)
		VALUES (:id, :name, :price_cents, :duration_minutes, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}
