package router

import (
	"github.com/EivindHaugen/SponsorFlow/app/controllers"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/constants"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Processor redirect landings. These arrive from the processor's hosted
	// onboarding, so they are GETs outside the CSRF group.
	app.Get(constants.ProcessorReturnRoute+"/:teamID", controllers.HandleProcessorReturn)
	app.Get(constants.ProcessorRefreshRoute+"/:teamID", controllers.HandleProcessorRefresh)
}
