package identity

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Roles carried in the JWT "role" claim. The identity provider assigns
// them; this package only reads them back out of the verified token.
const (
	RoleChef    = "chef"
	RoleClient  = "client"
	RoleCashier = "cashier"
)

// Identity is the acting user as seen by every core operation. Handlers
// extract it at the boundary and pass it down explicitly; nothing below
// the handler layer reads auth state on its own.
type Identity struct {
	UserID string
	Role   string
}

// FromCtx extracts the user_id and role claims from the JWT token stored
// in `c.Locals("user")` by the jwt middleware. Several packages need
// this, so it is exported here for reuse.
func FromCtx(c *fiber.Ctx) (Identity, error) {
	u := c.Locals("user")
	if u == nil {
		return Identity{}, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return Identity{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fiber.ErrUnauthorized
	}
	id := Identity{}
	if raw, ok := claims["user_id"]; ok {
		if s, ok := raw.(string); ok && s != "" {
			id.UserID = s
		}
	}
	if raw, ok := claims["role"]; ok {
		if s, ok := raw.(string); ok {
			id.Role = s
		}
	}
	if id.UserID == "" {
		return Identity{}, fiber.ErrUnauthorized
	}
	return id, nil
}

// RequireRole returns a middleware that rejects requests whose token does
// not carry one of the given roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, err := FromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		for _, r := range roles {
			if ident.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	}
}
