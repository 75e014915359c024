package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/noah-isme/barbershop-api/internal/models"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

func loadBarber(ctx context.Context, barbers interface {
	FindByID(ctx context.Context, id string) (*models.Barber, error)
}, id string) (*models.Barber, error) {
	barber, err := barbers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "barber not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to load barber")
	}
	return barber, nil
}

// authorizeBarber allows admins, and barbers acting on their own record.
func authorizeBarber(actor *models.JWTClaims, barber *models.Barber) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleBarber && strings.EqualFold(actor.Email, barber.Email) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to manage this barber")
}

// authorizeCustomer allows admins, the barber of the appointment and the customer who owns it.
func authorizeCustomer(actor *models.JWTClaims, barberEmail, customerEmail string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	switch {
	case actor.Role == models.RoleAdmin:
		return nil
	case actor.Role == models.RoleBarber && strings.EqualFold(actor.Email, barberEmail):
		return nil
	case strings.EqualFold(actor.Email, customerEmail):
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to access this booking")
}
