package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/EivindHaugen/SponsorFlow/internal/pkg/cache"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/database"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/env"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/metrics/counter"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/router"
)

func main() {
	app := NewApplication()

	counter.StartFlusher(5 * time.Second)

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	app := fiber.New(fiber.Config{
		AppName: "SponsorFlow",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
