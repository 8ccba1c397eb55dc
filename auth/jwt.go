package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// Resolver turns bearer tokens into caller identities.
type Resolver struct {
	key []byte
}

func NewResolver(secret string) Resolver {
	return Resolver{
		key: []byte(secret),
	}
}

// Resolve verifies the token and returns the identity in its claims. An empty token
// resolves to the anonymous identity.
func (r Resolver) Resolve(token string) (entity.Identity, error) {
	if token == "" {
		return entity.Identity{}, nil
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return r.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%w: %w", entity.ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return entity.Identity{}, fmt.Errorf("%w: invalid token", entity.ErrUnauthorized)
	}

	role := claims.Role
	switch role {
	case "":
		role = entity.RoleBuyer
	case entity.RoleBuyer, entity.RoleOperator:
	default:
		return entity.Identity{}, fmt.Errorf("%w: unknown role %q", entity.ErrUnauthorized, role)
	}

	return entity.Identity{
		BuyerID: claims.Subject,
		Email:   claims.Email,
		Role:    role,
	}, nil
}

// NewToken signs a token for the identity, valid for ttl.
func (r Resolver) NewToken(identity entity.Identity, ttl time.Duration) (string, error) {
	if identity.IsAnonymous() {
		return "", errors.New("can not sign a token for an anonymous identity")
	}

	now := time.Now()
	claims := &Claims{
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.BuyerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.key)
}
