package social

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Routes are registered on the app root because follow targets live under
// /:username, matching the rest of the profile URL surface.
func RegisterRoutes(app *fiber.App, svc *Service, requireUser fiber.Handler) {
	app.Post("/:username/follow", requireUser, func(c *fiber.Ctx) error {
		username := c.Params("username")
		authorID, err := svc.AuthorIDByUsername(c.Context(), username)
		if err != nil {
			if errors.Is(err, ErrUnknownUser) {
				return fiber.NewError(fiber.StatusNotFound, "user not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		userID, _ := c.Locals("user_id").(string)
		if userID != authorID {
			if err := svc.Follow(c.Context(), Follow{UserID: userID, AuthorID: authorID}); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.Redirect("/"+username+"/", fiber.StatusFound)
	})

	app.Post("/:username/unfollow", requireUser, func(c *fiber.Ctx) error {
		username := c.Params("username")
		authorID, err := svc.AuthorIDByUsername(c.Context(), username)
		if err != nil {
			if errors.Is(err, ErrUnknownUser) {
				return fiber.NewError(fiber.StatusNotFound, "user not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		userID, _ := c.Locals("user_id").(string)
		if err := svc.Unfollow(c.Context(), Follow{UserID: userID, AuthorID: authorID}); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "follow not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		caller, _ := c.Locals("username").(string)
		return c.Redirect("/"+caller+"/", fiber.StatusFound)
	})
}
