package router

import (
	"github.com/EivindHaugen/SponsorFlow/app/controllers"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)

	// Payout onboarding management
	adminGroup.Get("/teams/:teamID/payout", controllers.HandleAdminTeamPayout)
	adminGroup.Post("/teams/:teamID/payout/start", controllers.HandleAdminTeamPayoutStart)
	adminGroup.Post("/teams/:teamID/payout/refresh", controllers.HandleAdminTeamPayoutRefresh)
}
