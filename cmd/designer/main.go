package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"track-designer/internal/common/config"
	"track-designer/internal/common/middleware"
	"track-designer/internal/designer/catalog"
	"track-designer/internal/designer/handlers"
	"track-designer/internal/designer/repository"
	"track-designer/internal/designer/validate"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Designer Service
// ============================================================

func main() {
	cfg := config.Load()

	db, err := repository.OpenSQLite(cfg.DesignsDBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.MigrationsPath); err != nil {
		log.Fatalf("init db: %v", err)
	}

	// внешняя таблица совместимости; при отказе загрузки — документи-
	// рованная деградация до «все пары допустимы», с явным предупреждением
	table, err := validate.LoadTable(cfg.CompatPath)
	if err != nil {
		log.Printf("WARNING: compatibility table unavailable, all pairs allowed: %v", err)
		table = validate.AllowAll()
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadYAML(cfg.CatalogPath)
		if err != nil {
			log.Fatalf("load catalog: %v", err)
		}
	}

	handler := handlers.New(repo, cat, validate.New(table))

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Designer Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Designer Routes
	// ============================================================

	app.Get("/catalog", handler.GetCatalog)

	app.Post("/designs", handler.CreateDesign)
	app.Get("/designs", handler.ListDesigns)
	app.Get("/designs/:id", handler.GetDesign)
	app.Put("/designs/:id", handler.PutDesign)
	app.Delete("/designs/:id", handler.DeleteDesign)

	app.Post("/designs/:id/sequences", handler.CreateSequence)
	app.Delete("/designs/:id/sequences/:name", handler.DeleteSequence)
	app.Post("/designs/:id/sequences/:name/shapes", handler.InsertShape)
	app.Post("/designs/:id/sequences/:name/link", handler.SetLink)
	app.Put("/designs/:id/sequences/:name/anchor", handler.SetAnchor)
	app.Delete("/designs/:id/sequences/:name/anchor", handler.ClearAnchor)

	app.Patch("/designs/:id/shapes/:shapeId", handler.PatchShape)
	app.Delete("/designs/:id/shapes/:shapeId", handler.RemoveShape)

	app.Get("/designs/:id/geometry", handler.GetGeometry)
	app.Get("/designs/:id/svg", handler.GetSVG)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Designer Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
