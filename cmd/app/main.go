package main

import (
	"database/sql"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/ordena/restaurant-pos-backend/internal/cart"
	"github.com/ordena/restaurant-pos-backend/internal/config"
	"github.com/ordena/restaurant-pos-backend/internal/events"
	"github.com/ordena/restaurant-pos-backend/internal/identity"
	"github.com/ordena/restaurant-pos-backend/internal/logging"
	"github.com/ordena/restaurant-pos-backend/internal/metrics"
	"github.com/ordena/restaurant-pos-backend/internal/order"
	"github.com/ordena/restaurant-pos-backend/internal/product"
	"github.com/ordena/restaurant-pos-backend/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	mustBootstrapSchema(db)

	go func() {
		if err := metrics.Serve(cfg.MetricsAddr); err != nil {
			log.Printf("metrics listener stopped: %v", err)
		}
	}()

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()

	blobs := storage.NewDiskStore(cfg.UploadDir)
	sessions := cart.NewSessions()

	productService := product.NewService(product.NewPostgresRepository(db), blobs)
	productHandler := product.NewHandler(productService)

	orderService := order.NewService(order.NewPostgresRepository(db), publisher)
	orderHandler := order.NewHandler(orderService, sessions)

	cartHandler := cart.NewHandler(sessions)

	identityHandler := identity.NewHandler(cfg.JWTSecret)
	identityHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	// uploaded product photos are served statically
	app.Static("/uploads", cfg.UploadDir)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)

	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	logging.Log(logging.Fields{
		Service: "http",
		Step:    c.Method() + " " + c.Path(),
		Status:  strconv.Itoa(c.Response().StatusCode()),
		Elapsed: time.Since(start).Milliseconds(),
	})
	return err
}

func mustOpenDB(url string) *sql.DB {
	if url == "" {
		panic("DATABASE_URL is not set")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		panic(err)
	}
	if err := db.Ping(); err != nil {
		panic(err)
	}
	return db
}

func mustBootstrapSchema(db *sql.DB) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS product (
		product_id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		price INT NOT NULL DEFAULT 0,
		photo TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		panic(err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS orders (
		order_id SERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		items JSONB NOT NULL DEFAULT '[]',
		total INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		submission_id TEXT UNIQUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		panic(err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status)`); err != nil {
		panic(err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS orders_user_idx ON orders (user_id)`); err != nil {
		panic(err)
	}
}
