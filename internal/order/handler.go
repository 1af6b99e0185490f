package order

import (
	"bufio"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ordena/restaurant-pos-backend/internal/cart"
	"github.com/ordena/restaurant-pos-backend/internal/identity"
)

// Handler wires order submission, status updates and the live SSE views.
// It also needs the cart sessions so submission can freeze and clear the
// caller's cart.
type Handler struct {
	service  *Service
	sessions *cart.Sessions
}

func NewHandler(service *Service, sessions *cart.Sessions) *Handler {
	return &Handler{service: service, sessions: sessions}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.createOrder)
	app.Get("/api/v1/orders", h.getOrders)
	app.Get("/api/v1/orders/stream", h.streamOrders)
	app.Get("/api/v1/order/:id<[0-9]+>", h.getOrder)
	app.Patch("/api/v1/order/:id<[0-9]+>/status", h.updateStatus)
}

type createOrderRequest struct {
	Notes        string `json:"notes,omitempty"`
	SubmissionID string `json:"submissionId,omitempty"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(createOrderRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	}
	if payload.SubmissionID == "" {
		payload.SubmissionID = uuid.NewString()
	}

	snapshot, _ := h.sessions.Snapshot(ident.UserID)
	created, err := h.service.Submit(ident.UserID, snapshot, payload.Notes, payload.SubmissionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cart cannot be empty"})
		case errors.Is(err, ErrNotAuthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	// the cart is cleared only once the write is known to have succeeded
	h.sessions.Clear(ident.UserID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var f Filter
	switch ident.Role {
	case identity.RoleChef:
		f = ChefFilter()
	case identity.RoleCashier:
		f = Filter{Ascending: false}
	default:
		f = CustomerFilter(ident.UserID)
	}

	orders, err := h.service.List(f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	o, err := h.service.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if ident.Role == identity.RoleClient && o.UserID != ident.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	}
	return c.JSON(o)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	to, err := ParseStatus(payload.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// clients may only cancel their own orders; staff run the kitchen flow
	if ident.Role == identity.RoleClient {
		if to != StatusCancelled {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
		}
		existing, err := h.service.GetByID(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
		if existing.UserID != ident.UserID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
		}
	}

	updated, err := h.service.UpdateStatus(id, to)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		case errors.Is(err, ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "invalid status transition"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(updated)
}

// streamOrders pushes full snapshots over server-sent events. Two views
// exist: `chef` (active orders oldest-first, re-annotated with elapsed
// time on every clock tick) and `mine` (the caller's history, newest
// first). Stream errors are reported as events without dropping the
// connection, so the client keeps whatever it last rendered.
func (h *Handler) streamOrders(c *fiber.Ctx) error {
	ident, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	view := c.Query("view", "mine")
	var f Filter
	chefView := false
	switch view {
	case "chef":
		if ident.Role != identity.RoleChef && ident.Role != identity.RoleCashier {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
		}
		f = ChefFilter()
		chefView = true
	case "mine":
		f = CustomerFilter(ident.UserID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown view"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	sub := h.service.Subscribe(f)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer sub.Unsubscribe()

		var last []Order
		emit := func() error {
			if chefView {
				return writeSSE(w, "orders", AnnotateElapsed(last, time.Now().UTC()))
			}
			return writeSSE(w, "orders", last)
		}

		// chef urgency display refreshes at least once per second
		tick := time.NewTicker(time.Second)
		defer tick.Stop()

		for {
			select {
			case snap := <-sub.C:
				last = snap
				if emit() != nil {
					return
				}
			case err := <-sub.Errors():
				if writeSSE(w, "error", fiber.Map{"message": err.Error()}) != nil {
					return
				}
			case <-tick.C:
				if !chefView {
					continue
				}
				if emit() != nil {
					return
				}
			}
		}
	})
	return nil
}

func writeSSE(w *bufio.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := w.WriteString("event: " + event + "\ndata: " + string(data) + "\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
