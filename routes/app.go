package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/meinhoongagan/wellness-portal/logger"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// bodyLimit leaves room for a therapist photo upload.
const bodyLimit = 6 << 20

// NewApp builds the fiber app with the shared middleware and every route.
func NewApp(h Handlers, corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "wellness-portal",
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		// browsers refuse credentials with a wildcard origin
		AllowCredentials: corsOrigins != "*",
	}))

	Setup(app, h)
	return app
}
