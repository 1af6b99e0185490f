package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ordena/restaurant-pos-backend/internal/identity"
)

// Handler exposes the session cart over HTTP. This keeps cart-specific
// routing isolated from order submission.
type Handler struct {
	sessions *Sessions
}

func NewHandler(sessions *Sessions) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Post("/api/v1/cart/items/:productId<[0-9]+>/decrement", h.decrementItem)
	app.Put("/api/v1/cart/items/:productId<[0-9]+>", h.setQuantity)
	app.Delete("/api/v1/cart/items/:productId<[0-9]+>", h.removeItem)
	app.Delete("/api/v1/cart", h.clearCart)
}

type addItemRequest struct {
	ProductID int    `json:"productId"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items     []Item `json:"items"`
	Total     int    `json:"total"`
	ItemCount int    `json:"itemCount"`
}

func (h *Handler) respond(c *fiber.Ctx, userID string) error {
	var out cartResponse
	h.sessions.With(userID, func(cart *Cart) {
		out = cartResponse{Items: cart.Items(), Total: cart.Total(), ItemCount: cart.ItemCount()}
	})
	return c.JSON(out)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return h.respond(c, ident.UserID)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	if payload.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity must be positive"})
	}
	if payload.Price < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "price must be non-negative"})
	}

	h.sessions.With(ident.UserID, func(cart *Cart) {
		cart.AddItem(Item{
			ProductID: payload.ProductID,
			Title:     payload.Title,
			Price:     payload.Price,
			Quantity:  payload.Quantity,
		})
	})
	return h.respond(c, ident.UserID)
}

func (h *Handler) decrementItem(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	pid, err := c.ParamsInt("productId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	h.sessions.With(ident.UserID, func(cart *Cart) { cart.DecrementOrRemove(pid) })
	return h.respond(c, ident.UserID)
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	pid, err := c.ParamsInt("productId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	h.sessions.With(ident.UserID, func(cart *Cart) { cart.SetQuantity(pid, payload.Quantity) })
	return h.respond(c, ident.UserID)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	pid, err := c.ParamsInt("productId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	h.sessions.With(ident.UserID, func(cart *Cart) { cart.RemoveItem(pid) })
	return h.respond(c, ident.UserID)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	h.sessions.Clear(ident.UserID)
	return h.respond(c, ident.UserID)
}
