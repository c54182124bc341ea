package post

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pakodev28/yatube-project/internal/feedcache"
	"github.com/pakodev28/yatube-project/internal/group"
)

// FollowChecker reports whether a viewer follows an author; the profile
// page carries that flag.
type FollowChecker interface {
	IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
}

// GroupFinder resolves a group slug for the group feed.
type GroupFinder interface {
	BySlug(ctx context.Context, slug string) (group.Group, error)
}

// ImageStore persists an uploaded post image and returns its relative path.
type ImageStore interface {
	SaveImage(ctx context.Context, userID string, file *multipart.FileHeader) (string, error)
}

// RegisterRoutes mounts the whole post URL surface on the app root. Static
// segments must be registered before the /:username wildcards.
func RegisterRoutes(app *fiber.App, svc *Service, follows FollowChecker, groups GroupFinder, images ImageStore, cache *feedcache.Cache, requireUser, optionalUser fiber.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		page := pageParam(c)
		key := feedcache.IndexKey(page)

		var cached Page
		if cache.Get(c.Context(), key, &cached) {
			return c.JSON(fiber.Map{"page": cached})
		}

		pg, err := svc.feedPage(c.Context(), filterAll(), page)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		cache.Set(c.Context(), key, pg)
		return c.JSON(fiber.Map{"page": pg})
	})

	app.Get("/new", requireUser, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"form": PostForm{}})
	})

	app.Post("/new", requireUser, func(c *fiber.Ctx) error {
		author := callerAuthor(c)

		var form PostForm
		_ = c.BodyParser(&form)
		if errs := form.Validate(); len(errs) > 0 {
			return c.JSON(fiber.Map{"errors": errs, "values": form})
		}

		imagePath, err := saveUpload(c, images, author.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if _, err := svc.Create(c.Context(), author, form, imagePath); err != nil {
			if errors.Is(err, ErrGroupNotFound) {
				return c.JSON(fiber.Map{"errors": map[string]string{"group_id": "unknown group"}, "values": form})
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Redirect("/", fiber.StatusFound)
	})

	app.Get("/follow", requireUser, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		pg, err := svc.feedPage(c.Context(), filterFollowed(userID), pageParam(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"page": pg})
	})

	app.Get("/group/:slug", func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		g, err := groups.BySlug(c.Context(), slug)
		if err != nil {
			if errors.Is(err, group.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "group not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		pg, err := svc.feedPage(c.Context(), filterGroup(slug), pageParam(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"group": g, "page": pg})
	})

	app.Get("/:username/:postID/edit", requireUser, func(c *fiber.Ctx) error {
		username, postID := c.Params("username"), c.Params("postID")
		p, err := svc.ByPath(c.Context(), username, postID)
		if err != nil {
			return notFoundOr500(err)
		}
		if userID, _ := c.Locals("user_id").(string); userID != p.Author.ID {
			return c.Redirect(detailPath(username, postID), fiber.StatusFound)
		}
		return c.JSON(fiber.Map{"form": editForm(p), "post": p})
	})

	app.Post("/:username/:postID/edit", requireUser, func(c *fiber.Ctx) error {
		username, postID := c.Params("username"), c.Params("postID")
		p, err := svc.ByPath(c.Context(), username, postID)
		if err != nil {
			return notFoundOr500(err)
		}

		// Non-authors are sent back to the post, not shown an error.
		userID, _ := c.Locals("user_id").(string)
		if userID != p.Author.ID {
			return c.Redirect(detailPath(username, postID), fiber.StatusFound)
		}

		var form PostForm
		_ = c.BodyParser(&form)
		if errs := form.Validate(); len(errs) > 0 {
			return c.JSON(fiber.Map{"errors": errs, "values": form})
		}

		imagePath, err := saveUpload(c, images, userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if _, err := svc.Update(c.Context(), p, form, imagePath); err != nil {
			if errors.Is(err, ErrGroupNotFound) {
				return c.JSON(fiber.Map{"errors": map[string]string{"group_id": "unknown group"}, "values": form})
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Redirect(detailPath(username, postID), fiber.StatusFound)
	})

	app.Post("/:username/:postID/comment", requireUser, func(c *fiber.Ctx) error {
		username, postID := c.Params("username"), c.Params("postID")

		var form CommentForm
		_ = c.BodyParser(&form)
		if errs := form.Validate(); len(errs) > 0 {
			return c.JSON(fiber.Map{"errors": errs, "values": form})
		}

		if _, err := svc.AddComment(c.Context(), callerAuthor(c), username, postID, form); err != nil {
			return notFoundOr500(err)
		}
		return c.Redirect(detailPath(username, postID), fiber.StatusFound)
	})

	app.Get("/:username/:postID", func(c *fiber.Ctx) error {
		p, postCount, comments, err := svc.Detail(c.Context(), c.Params("username"), c.Params("postID"))
		if err != nil {
			return notFoundOr500(err)
		}
		return c.JSON(fiber.Map{
			"post":         p,
			"author":       p.Author,
			"post_count":   postCount,
			"comments":     comments,
			"comment_form": CommentForm{},
		})
	})

	app.Get("/:username", optionalUser, func(c *fiber.Ctx) error {
		username := c.Params("username")
		author, err := svc.AuthorByUsername(c.Context(), username)
		if err != nil {
			return notFoundOr500(err)
		}

		pg, err := svc.feedPage(c.Context(), filterAuthor(username), pageParam(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		following := false
		if userID, ok := c.Locals("user_id").(string); ok && follows != nil {
			following, _ = follows.IsFollowing(c.Context(), userID, author.ID)
		}
		return c.JSON(fiber.Map{"author": author, "page": pg, "following": following})
	})
}

func callerAuthor(c *fiber.Ctx) Author {
	userID, _ := c.Locals("user_id").(string)
	username, _ := c.Locals("username").(string)
	return Author{ID: userID, Username: username}
}

func pageParam(c *fiber.Ctx) int {
	n, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return 1
	}
	return n
}

func detailPath(username, postID string) string {
	return "/" + username + "/" + postID + "/"
}

func editForm(p Post) PostForm {
	form := PostForm{Text: p.Text}
	if p.Group != nil {
		form.GroupID = p.Group.ID
	}
	return form
}

func notFoundOr500(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

func saveUpload(c *fiber.Ctx, images ImageStore, userID string) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || images == nil {
		return "", nil
	}
	return images.SaveImage(c.Context(), userID, fh)
}
