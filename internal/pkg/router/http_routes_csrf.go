package router

import (
	"strings"
	"time"

	"github.com/EivindHaugen/SponsorFlow/app/controllers"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/constants"
	"github.com/EivindHaugen/SponsorFlow/internal/pkg/env"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))

	// Sponsor pages: club, team, and athlete permalinks
	group.Get(constants.SponsorRoute+"/:clubSlug", controllers.HandleSponsorPage)
	group.Get(constants.SponsorRoute+"/:clubSlug/:teamSlug", controllers.HandleSponsorPage)
	group.Get(constants.SponsorRoute+"/:clubSlug/:teamSlug/:athleteSlug", controllers.HandleSponsorPage)

	// Checkout consumes the intent parked in the session cart
	group.Post(constants.CheckoutRoute, controllers.HandleCheckout)
}
