package response

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		page, limit := ParsePagination(c)
		c.Set("X-Page", fmt.Sprintf("%d/%d", page, limit))
		return NoContent(c)
	})
	return app
}
