package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/golang-jwt/jwt/v4"
	"github.com/ordena/restaurant-pos-backend/internal/cart"
)

// bootstrap middleware injecting a jwt.Token into locals from headers,
// standing in for the jwtware middleware.
func makeApp(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		// c.Get returns zero-copy views into the pooled request buffer;
		// copy them before they outlive the request inside the claims.
		if v := utils.CopyString(c.Get("X-User-ID")); v != "" {
			role := utils.CopyString(c.Get("X-Role"))
			if role == "" {
				role = "client"
			}
			claims := jwt.MapClaims{"user_id": v, "role": role}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func request(t *testing.T, app *fiber.App, method, path, userID, role string, body any) (int, []byte) {
	t.Helper()
	var buf []byte
	if body != nil {
		buf, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-Role", role)
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	out := new(bytes.Buffer)
	_, _ = out.ReadFrom(res.Body)
	return res.StatusCode, out.Bytes()
}

func seededSessions(userID string) *cart.Sessions {
	sessions := cart.NewSessions()
	sessions.With(userID, func(c *cart.Cart) {
		c.AddItem(cart.Item{ProductID: 2, Title: "B", Price: 500, Quantity: 1})
	})
	return sessions
}

func TestCreateOrder_SubmitsAndClearsCart(t *testing.T) {
	sessions := seededSessions("u1")
	service := newTestService(NewInMemoryRepository())
	app := makeApp(NewHandler(service, sessions))

	code, body := request(t, app, "POST", "/api/v1/orders", "u1", "client", map[string]any{"notes": "table 4"})
	if code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}

	var created Order
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || created.Total != 500 || created.Status != StatusOrdered {
		t.Fatalf("unexpected order: %+v", created)
	}

	items, total := sessions.Snapshot("u1")
	if len(items) != 0 || total != 0 {
		t.Fatalf("cart not cleared after successful submission")
	}
}

func TestCreateOrder_EmptyCartRejects(t *testing.T) {
	service := newTestService(NewInMemoryRepository())
	app := makeApp(NewHandler(service, cart.NewSessions()))

	code, _ := request(t, app, "POST", "/api/v1/orders", "u1", "client", nil)
	if code != 400 {
		t.Fatalf("expected 400 for empty cart, got %d", code)
	}
}

// failingRepo rejects every write.
type failingRepo struct {
	*InMemoryRepository
}

func (r *failingRepo) Create(o Order) (Order, error) {
	return Order{}, errors.New("storage unavailable")
}

func TestCreateOrder_FailedWriteLeavesCartUntouched(t *testing.T) {
	sessions := seededSessions("u1")
	service := newTestService(&failingRepo{NewInMemoryRepository()})
	app := makeApp(NewHandler(service, sessions))

	code, _ := request(t, app, "POST", "/api/v1/orders", "u1", "client", nil)
	if code != 500 {
		t.Fatalf("expected 500, got %d", code)
	}

	items, total := sessions.Snapshot("u1")
	if len(items) != 1 || total != 500 {
		t.Fatalf("failed submission must leave the cart as it was, got %+v", items)
	}
}

func TestCreateOrder_Unauthorized(t *testing.T) {
	service := newTestService(NewInMemoryRepository())
	app := makeApp(NewHandler(service, cart.NewSessions()))
	code, _ := request(t, app, "POST", "/api/v1/orders", "", "", nil)
	if code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestUpdateStatus_KitchenFlowAndConflicts(t *testing.T) {
	sessions := seededSessions("u1")
	service := newTestService(NewInMemoryRepository())
	app := makeApp(NewHandler(service, sessions))

	_, body := request(t, app, "POST", "/api/v1/orders", "u1", "client", nil)
	var created Order
	_ = json.Unmarshal(body, &created)
	path := "/api/v1/order/" + strconv.Itoa(created.ID) + "/status"

	code, _ := request(t, app, "PATCH", path, "chef-1", "chef", map[string]string{"status": "Preparing"})
	if code != 200 {
		t.Fatalf("chef transition failed with %d", code)
	}

	// moving back to Ordered is stale and must 409 without effect
	code, _ = request(t, app, "PATCH", path, "chef-1", "chef", map[string]string{"status": "Ordered"})
	if code != 409 {
		t.Fatalf("expected 409 for backward transition, got %d", code)
	}
	stored, _ := service.GetByID(created.ID)
	if stored.Status != StatusPreparing {
		t.Fatalf("status disturbed by rejected transition: %s", stored.Status)
	}

	// unknown status string is a 400, not a 409
	code, _ = request(t, app, "PATCH", path, "chef-1", "chef", map[string]string{"status": "Cooking"})
	if code != 400 {
		t.Fatalf("expected 400 for unknown status, got %d", code)
	}

	code, _ = request(t, app, "PATCH", "/api/v1/order/999/status", "chef-1", "chef", map[string]string{"status": "Preparing"})
	if code != 404 {
		t.Fatalf("expected 404 for missing order, got %d", code)
	}
}

func TestUpdateStatus_ClientMayOnlyCancelOwnOrder(t *testing.T) {
	sessions := seededSessions("u1")
	service := newTestService(NewInMemoryRepository())
	app := makeApp(NewHandler(service, sessions))

	_, body := request(t, app, "POST", "/api/v1/orders", "u1", "client", nil)
	var created Order
	_ = json.Unmarshal(body, &created)
	path := "/api/v1/order/" + strconv.Itoa(created.ID) + "/status"

	// advancing the kitchen flow is staff-only
	code, _ := request(t, app, "PATCH", path, "u1", "client", map[string]string{"status": "Preparing"})
	if code != 403 {
		t.Fatalf("client advancing status must 403, got %d", code)
	}

	// cancelling someone else's order is forbidden
	code, _ = request(t, app, "PATCH", path, "u2", "client", map[string]string{"status": "Cancelled"})
	if code != 403 {
		t.Fatalf("foreign cancel must 403, got %d", code)
	}

	// cancelling your own pre-prep order works
	code, _ = request(t, app, "PATCH", path, "u1", "client", map[string]string{"status": "Cancelled"})
	if code != 200 {
		t.Fatalf("own cancel failed with %d", code)
	}
}

func TestGetOrders_RoleViews(t *testing.T) {
	sessions := cart.NewSessions()
	service := newTestService(NewInMemoryRepository())
	app := makeApp(NewHandler(service, sessions))

	for i, user := range []string{"alice", "bob", "alice"} {
		sessions.With(user, func(c *cart.Cart) {
			c.AddItem(cart.Item{ProductID: i + 1, Title: "X", Price: 100, Quantity: 1})
		})
		code, _ := request(t, app, "POST", "/api/v1/orders", user, "client", nil)
		if code != 201 {
			t.Fatalf("seed order %d failed: %d", i, code)
		}
	}

	var mine []Order
	_, body := request(t, app, "GET", "/api/v1/orders", "alice", "client", nil)
	_ = json.Unmarshal(body, &mine)
	if len(mine) != 2 {
		t.Fatalf("expected 2 alice orders, got %d", len(mine))
	}
	if !mine[0].CreatedAt.After(mine[1].CreatedAt) {
		t.Fatalf("customer history must be newest-first")
	}
	for _, o := range mine {
		if o.UserID != "alice" {
			t.Fatalf("foreign order in customer view")
		}
	}

	var queue []Order
	_, body = request(t, app, "GET", "/api/v1/orders", "chef-1", "chef", nil)
	_ = json.Unmarshal(body, &queue)
	if len(queue) != 3 {
		t.Fatalf("expected 3 active orders in chef view, got %d", len(queue))
	}
	if !queue[0].CreatedAt.Before(queue[2].CreatedAt) {
		t.Fatalf("chef queue must be oldest-first")
	}
}

func TestGetOrder_OwnershipEnforced(t *testing.T) {
	sessions := seededSessions("u1")
	service := newTestService(NewInMemoryRepository())
	app := makeApp(NewHandler(service, sessions))

	_, body := request(t, app, "POST", "/api/v1/orders", "u1", "client", nil)
	var created Order
	_ = json.Unmarshal(body, &created)

	code, _ := request(t, app, "GET", "/api/v1/order/"+strconv.Itoa(created.ID), "u2", "client", nil)
	if code != 403 {
		t.Fatalf("foreign order read must 403, got %d", code)
	}
	code, _ = request(t, app, "GET", "/api/v1/order/"+strconv.Itoa(created.ID), "chef-9", "chef", nil)
	if code != 200 {
		t.Fatalf("staff order read failed: %d", code)
	}
}
