package jwt

import (
	"time"

	"ride-booking/internal/domain/user"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims defines our canonical JWT claims payload.
type Claims struct {
	Role user.Role `json:"role"` // actor role (PASSENGER/DRIVER/ADMIN/SERVICE)
	jwtlib.RegisteredClaims
}

// ensure Claims implements jwtlib.Claims interface
var _ jwtlib.Claims = (*Claims)(nil)

// NewUserClaims constructs end-user claims (passenger/driver/admin).
func NewUserClaims(userID string, role user.Role, ttl time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		Role: role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
}

// NewServiceClaims constructs claims for service-to-service calls on the
// internal RPC surface.
func NewServiceClaims(serviceName string, ttl time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		Role: user.RoleService,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   serviceName,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
}
