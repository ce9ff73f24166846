package server

import (
	"strconv"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// parsePostID extracts the :id route parameter. Anything that cannot name a
// stored post (non-numeric, zero, negative) is reported as not found.
func parsePostID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("Post", raw)
	}
	return uint(id), nil
}

// respondError writes err as the JSON error envelope. Internal errors are
// logged with their cause; the response only carries the generic message.
func respondError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "internal error",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return models.RespondWithError(c, appErr.Status(), appErr)
}

// decodeBody parses the request body as a JSON object.
func decodeBody(c *fiber.Ctx) (map[string]any, error) {
	return validation.DecodePost(c.Body())
}

// dataResponse is the success envelope.
type dataResponse struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
