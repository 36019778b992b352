package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mkehrer/monopoly-server/app/controllers"
	"github.com/mkehrer/monopoly-server/platform/registry"
)

func GameRoutes(a *fiber.App, reg *registry.Registry) {
	route := a.Group("/game")

	route.Get("/all", controllers.GetAllSessions(reg))
	route.Get("/verify", controllers.VerifyGame(reg))
}
