package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mkehrer/monopoly-server/platform/registry"
)

// GetAllSessions lists joinable sessions from the registry's redis-backed
// directory.
func GetAllSessions(reg *registry.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(reg.List())
	}
}

// VerifyGame checks whether a session code can still be joined.
func VerifyGame(reg *registry.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Query("code")
		if code == "" {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"status": reg.Verify(code)})
	}
}
