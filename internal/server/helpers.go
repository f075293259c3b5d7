package server

import (
	"fmt"

	"wouldyourather/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a route parameter as a positive id. Anything else is a 404,
// the same as an id that does not exist.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

// principal returns the authenticated user. Handlers behind the session gate
// can rely on it; a missing principal means the gate was bypassed.
func principal(c *fiber.Ctx) (*middleware.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	return p, nil
}

func questionURL(id uint) string {
	return fmt.Sprintf("/question/%d/", id)
}

// parseForm decodes a urlencoded or multipart body into out.
func parseForm(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed form submission.")
	}
	return nil
}
