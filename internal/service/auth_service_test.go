package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
	"github.com/noah-isme/barbershop-api/pkg/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, claims *models.JWTClaims, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func newTestAuthService() *AuthService {
	roles := NewRoleResolver(config.RolesConfig{
		AdminEmails:  []string{"owner@shop.test"},
		BarberEmails: []string{"fabio@shop.test", "owner@shop.test"},
	})
	return NewAuthService(roles, AuthConfig{AccessTokenSecret: testSecret, Issuer: "identity"})
}

func TestRoleResolver(t *testing.T) {
	roles := NewRoleResolver(config.RolesConfig{AdminEmails: []string{"Owner@Shop.test"}, BarberEmails: []string{"fabio@shop.test"}})
	assert.Equal(t, models.RoleAdmin, roles.Resolve("owner@shop.test"))
	assert.Equal(t, models.RoleBarber, roles.Resolve(" FABIO@shop.test "))
	assert.Equal(t, models.RoleCustomer, roles.Resolve("luca@example.com"))
	assert.Equal(t, models.RoleCustomer, roles.Resolve(""))
}

func TestAuthServiceValidateTokenAssignsRole(t *testing.T) {
	svc := newTestAuthService()
	token := signToken(t, jwt.SigningMethodHS256, &models.JWTClaims{
		Email: "Owner@Shop.test",
		Role:  models.RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, []byte(testSecret))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "owner@shop.test", claims.Email)
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	svc := newTestAuthService()
	base := jwt.RegisteredClaims{Issuer: "identity", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	wrongKey := signToken(t, jwt.SigningMethodHS256, &models.JWTClaims{Email: "a@b.c", RegisteredClaims: base}, []byte("other"))
	_, err := svc.ValidateToken(wrongKey)
	assert.Error(t, err)

	expiredClaims := base
	expiredClaims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expired := signToken(t, jwt.SigningMethodHS256, &models.JWTClaims{Email: "a@b.c", RegisteredClaims: expiredClaims}, []byte(testSecret))
	_, err = svc.ValidateToken(expired)
	assert.Error(t, err)

	otherIssuer := base
	otherIssuer.Issuer = "someone-else"
	foreign := signToken(t, jwt.SigningMethodHS256, &models.JWTClaims{Email: "a@b.c", RegisteredClaims: otherIssuer}, []byte(testSecret))
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)

	noEmail := signToken(t, jwt.SigningMethodHS256, &models.JWTClaims{RegisteredClaims: base}, []byte(testSecret))
	_, err = svc.ValidateToken(noEmail)
	assert.Error(t, err)
}
