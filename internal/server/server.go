// Package server exposes the summarizer and the transcript loader over HTTP.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/at-ishikawa/qasummary/internal/config"
)

// NewApp creates the fiber application with every route registered.
func NewApp(cfg config.ServerConfig, handler *SummaryHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		StrictRouting: true,
		AppName:       "qasummary",
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post("/get_summary", handler.GetSummary)
	app.Post("/parse", handler.Parse)
	app.Get("/summaries", handler.ListSummaries)
	app.Get("/summaries/:id", handler.GetSavedSummary)

	return app
}
