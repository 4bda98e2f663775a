package router

import (
	"log"

	"github.com/EivindHaugen/SponsorFlow/app/controllers"
	"github.com/EivindHaugen/SponsorFlow/app/repository"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/attribution"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/checkout"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/database"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/env"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/hierarchy"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/middleware"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/payout"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/session"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/settlement"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	db := database.GetDB()
	repos := repository.NewRepositories(db)

	calc, err := settlement.NewCalculatorFromEnv()
	if err != nil {
		log.Fatalf("settlement config: %v", err)
	}

	processor := payout.NewClientFromEnv()
	registry := payout.NewRegistryFromDB(db, processor, env.GetEnv("APP_BASE_URL", "http://localhost:3000"))
	resolver := hierarchy.NewResolver(repos.Recipient, hierarchy.NewRedisCache())
	checkoutSvc := checkout.NewService(
		repos.Order,
		repos.Subscription,
		attribution.NewServiceFromDB(db),
		registry,
		resolver,
		processor,
		calc,
		env.GetEnv("SETTLEMENT_CURRENCY", "NOK"),
	)

	controllers.InitializeOnboardingController(registry)
	controllers.InitializeSponsorshipController(resolver, checkoutSvc, calc)

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
