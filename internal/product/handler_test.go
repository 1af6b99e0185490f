package product

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type nopBlobStore struct{}

func (nopBlobStore) Upload(name string, data []byte) (string, error) {
	return "/uploads/" + name, nil
}

// makeApp wires the catalog handler behind a stub auth middleware that
// turns the X-Role header into a jwt.Token in locals.
func makeApp(repo Repository) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role := c.Get("X-Role"); role != "" {
			claims := jwt.MapClaims{"user_id": "u1", "role": role}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
		return c.Next()
	})
	h := NewHandler(NewService(repo, nopBlobStore{}))
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app
}

func request(t *testing.T, app *fiber.App, method, path, role string, body any) (int, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Role", role)
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(res.Body)
	return res.StatusCode, raw
}

func TestCreateProduct_JSON(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	app := makeApp(repo)

	code, raw := request(t, app, "POST", "/products", "cashier", map[string]any{
		"title":       "Green Curry",
		"description": "with jasmine rice",
		"category":    "fastfood",
		"price":       2400,
	})
	if code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, raw)
	}
	var created Product
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || created.Price != 2400 {
		t.Fatalf("unexpected product: %+v", created)
	}

	code, raw = request(t, app, "GET", "/products", "", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var all []Product
	if err := json.Unmarshal(raw, &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Title != "Green Curry" {
		t.Fatalf("catalog listing: %+v", all)
	}
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	app := makeApp(NewInMemoryRepository(nil))

	cases := []map[string]any{
		{"title": "", "category": "drink", "price": 100},
		{"title": "Cola", "category": "soda", "price": 100},
		{"title": "Cola", "category": "drink", "price": -1},
	}
	for i, payload := range cases {
		code, raw := request(t, app, "POST", "/products", "cashier", payload)
		if code != 400 {
			t.Fatalf("case %d: expected 400, got %d: %s", i, code, raw)
		}
	}
}

func TestProductRoutes_RoleGate(t *testing.T) {
	app := makeApp(NewInMemoryRepository(nil))

	payload := map[string]any{"title": "Pho", "category": "starter", "price": 1200}

	if code, _ := request(t, app, "POST", "/products", "", payload); code != 401 {
		t.Fatalf("anonymous create should be 401, got %d", code)
	}
	if code, _ := request(t, app, "POST", "/products", "client", payload); code != 403 {
		t.Fatalf("client create should be 403, got %d", code)
	}
	if code, _ := request(t, app, "POST", "/products", "chef", payload); code != 403 {
		t.Fatalf("chef create should be 403, got %d", code)
	}
	if code, _ := request(t, app, "DELETE", "/product/1", "client", nil); code != 403 {
		t.Fatalf("client delete should be 403, got %d", code)
	}
}

func TestGetAndDeleteProduct(t *testing.T) {
	repo := NewInMemoryRepository([]Product{
		{ID: 7, Title: "Brownie", Category: "dessert", Price: 900},
	})
	app := makeApp(repo)

	code, raw := request(t, app, "GET", "/product/7", "", nil)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatal(err)
	}
	if p.Title != "Brownie" {
		t.Fatalf("unexpected product: %+v", p)
	}

	if code, _ := request(t, app, "DELETE", "/product/7", "cashier", nil); code != 200 {
		t.Fatalf("expected 200 on delete, got %d", code)
	}
	if code, _ := request(t, app, "GET", "/product/7", "", nil); code != 404 {
		t.Fatalf("expected 404 after delete, got %d", code)
	}
	if code, _ := request(t, app, "DELETE", "/product/7", "cashier", nil); code != 404 {
		t.Fatalf("expected 404 deleting twice, got %d", code)
	}
}
