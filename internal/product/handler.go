package product

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ordena/restaurant-pos-backend/internal/identity"
	"github.com/ordena/restaurant-pos-backend/internal/storage"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/products", h.getProducts)
	app.Get("/products/stream", h.streamProducts)
	app.Get("/product/:id<[0-9]+>", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/products", identity.RequireRole(identity.RoleCashier), h.createProduct)
	app.Delete("/product/:id<[0-9]+>", identity.RequireRole(identity.RoleCashier), h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}
	p, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Product not found")
	}
	return c.JSON(p)
}

type createProductRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int    `json:"price"`
}

func validateProductPayload(p *createProductRequest) map[string]string {
	errs := map[string]string{}
	if p.Title == "" {
		errs["title"] = "title is required"
	}
	if p.Price < 0 {
		errs["price"] = "price must be >= 0"
	}
	if !ValidCategory(p.Category) {
		errs["category"] = "invalid category"
	}
	return errs
}

// createProduct accepts either plain JSON or multipart form data with an
// optional `photo` file part. The photo is uploaded before the product
// row is written; on upload failure, nothing is created.
func (h *Handler) createProduct(c *fiber.Ctx) error {
	payload := new(createProductRequest)
	var photoBytes []byte
	var photoName string

	if form, err := c.MultipartForm(); err == nil && form != nil {
		payload.Title = c.FormValue("title")
		payload.Description = c.FormValue("description")
		payload.Category = c.FormValue("category")
		if v := c.FormValue("price"); v != "" {
			price, err := strconv.Atoi(v)
			if err != nil || price < 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": map[string]string{"price": "price must be a non-negative integer"}})
			}
			payload.Price = price
		}
		if file, err := c.FormFile("photo"); err == nil {
			f, err := file.Open()
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
			}
			defer f.Close()
			photoBytes, err = io.ReadAll(f)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
			}
			photoName = file.Filename
		}
	} else if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if ves := validateProductPayload(payload); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	}

	created, err := h.service.Create(Product{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Price:       payload.Price,
	}, photoBytes, photoName)
	if err != nil {
		if errors.Is(err, storage.ErrUploadFailed) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}
	if err := h.service.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Product not found")
		}
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	return c.SendString("Product deleted")
}

// streamProducts pushes the full catalog as a server-sent event on every
// change. Both the cashier management view and the customer menu consume
// this endpoint.
func (h *Handler) streamProducts(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	sub := h.service.Subscribe()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer sub.Unsubscribe()
		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()
		for {
			select {
			case snap := <-sub.C:
				if writeSSE(w, "products", snap) != nil {
					return
				}
			case err := <-sub.Errors():
				// stream stays up; the client keeps its last snapshot
				if writeSSE(w, "error", fiber.Map{"message": err.Error()}) != nil {
					return
				}
			case <-keepalive.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
				if w.Flush() != nil {
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
