package server

import (
	"postboard/internal/featureflags"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and their state for the caller's IP.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw": s.featureFlags.Snapshot(),
		"evaluated": fiber.Map{
			featureflags.PostEvents:     s.featureFlags.On(featureflags.PostEvents),
			featureflags.WriteRateLimit: s.featureFlags.Enabled(featureflags.WriteRateLimit, c.IP()),
		},
	})
}
