package identity

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Handler exposes a dev token mint so the system can be exercised end to
// end without the real identity provider. Production deployments leave
// ALLOW_DEV_TOKENS unset and receive tokens from the provider instead.
type Handler struct {
	secret string
}

func NewHandler(secret string) *Handler {
	return &Handler{secret: secret}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	// gated dev-only endpoint, same pattern as other /dev routes
	app.Post("/dev/token", h.mintToken)
}

type tokenRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (h *Handler) mintToken(c *fiber.Ctx) error {
	if os.Getenv("ALLOW_DEV_TOKENS") != "1" {
		return c.Status(fiber.StatusForbidden).SendString("not allowed")
	}

	payload := new(tokenRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "userId is required"})
	}
	switch payload.Role {
	case RoleChef, RoleClient, RoleCashier:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid role"})
	}

	claims := jwt.MapClaims{
		"user_id": payload.UserID,
		"role":    payload.Role,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}
	return c.JSON(fiber.Map{"token": signed})
}
