package group

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service, requireUser fiber.Handler) {
	r.Post("/", requireUser, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		isAdmin, err := svc.IsAdmin(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if !isAdmin {
			return fiber.NewError(fiber.StatusForbidden, "administrator access required")
		}

		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		g, err := svc.Create(c.Context(), req)
		if err != nil {
			if req.Title == "" || req.Slug == "" {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	})
}
