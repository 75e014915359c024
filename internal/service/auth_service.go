package service

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/config"
	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

// RoleResolver assigns roles from the e-mail allowlists loaded at startup.
type RoleResolver struct {
	admins  map[string]struct{}
	barbers map[string]struct{}
}

// NewRoleResolver builds a resolver from configuration.
func NewRoleResolver(cfg config.RolesConfig) *RoleResolver {
	r := &RoleResolver{admins: map[string]struct{}{}, barbers: map[string]struct{}{}}
	for _, e := range cfg.AdminEmails {
		r.admins[strings.ToLower(e)] = struct{}{}
	}
	for _, e := range cfg.BarberEmails {
		r.barbers[strings.ToLower(e)] = struct{}{}
	}
	return r
}

// Resolve returns the role of the given e-mail. Admin wins over barber; everyone else is a customer.
func (r *RoleResolver) Resolve(email string) models.UserRole {
	email = strings.ToLower(strings.TrimSpace(email))
	if r == nil || email == "" {
		return models.RoleCustomer
	}
	if _, ok := r.admins[email]; ok {
		return models.RoleAdmin
	}
	if _, ok := r.barbers[email]; ok {
		return models.RoleBarber
	}
	return models.RoleCustomer
}

// AuthConfig defines token verification parameters.
type AuthConfig struct {
	AccessTokenSecret string
	Issuer            string
}

// AuthService verifies access tokens issued by the identity provider.
type AuthService struct {
	roles  *RoleResolver
	config AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(roles *RoleResolver, config AuthConfig) *AuthService {
	return &AuthService{roles: roles, config: config}
}

// ValidateToken parses and validates an access token returning the claims with the resolved role.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no email")
	}
	claims.Email = strings.ToLower(claims.Email)
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	claims.Role = s.roles.Resolve(claims.Email)
	return claims, nil
}
