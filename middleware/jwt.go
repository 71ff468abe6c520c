package middleware

import (
	"context"
	"strings"

	"elearning/apperr"
	"elearning/services"
	"elearning/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	claimsKey = "claims"
	actorKey  = "actor"
)

// RevocationStore answers whether a token id was logged out.
type RevocationStore interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Auth struct {
	tokens      *utils.TokenManager
	revocations RevocationStore
}

func NewAuth(tokens *utils.TokenManager, revocations RevocationStore) *Auth {
	return &Auth{tokens: tokens, revocations: revocations}
}

// Protect checks for a valid, non-revoked bearer token in the request.
func (a *Auth) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get the token from the Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.Unauthorized("Missing or invalid Authorization header")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return apperr.Unauthorized("Invalid Authorization header format")
		}

		claims, err := a.tokens.ParseJWT(strings.TrimSpace(authHeader[len("Bearer "):]))
		if err != nil {
			return apperr.Unauthorized("Invalid or expired token")
		}

		revoked, err := a.revocations.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return err
		}
		if revoked {
			return apperr.Unauthorized("Token has been revoked")
		}

		c.Locals(claimsKey, claims)
		c.Locals(actorKey, services.Actor{UserID: claims.UserID, Role: claims.Role})
		return c.Next()
	}
}

// ActorFrom returns the caller stored by Protect.
func ActorFrom(c *fiber.Ctx) services.Actor {
	actor, _ := c.Locals(actorKey).(services.Actor)
	return actor
}

// ClaimsFrom returns the verified token claims stored by Protect.
func ClaimsFrom(c *fiber.Ctx) *utils.Claims {
	claims, _ := c.Locals(claimsKey).(*utils.Claims)
	return claims
}
