package about

import "github.com/gofiber/fiber/v2"

// Static informational pages.
func RegisterRoutes(r fiber.Router) {
	r.Get("/author", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"title": "About the author",
			"text":  "This blog platform is a personal project; it is still growing, so check back to see the progress.",
		})
	})

	r.Get("/tech", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"title": "Technology used in this project",
			"text":  "Go, Fiber, PostgreSQL, Redis",
		})
	})
}
