package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pakodev28/yatube-project/internal/about"
	"github.com/pakodev28/yatube-project/internal/auth"
	"github.com/pakodev28/yatube-project/internal/config"
	"github.com/pakodev28/yatube-project/internal/feedcache"
	"github.com/pakodev28/yatube-project/internal/group"
	"github.com/pakodev28/yatube-project/internal/post"
	"github.com/pakodev28/yatube-project/internal/social"
	"github.com/pakodev28/yatube-project/internal/storage"
	"github.com/pakodev28/yatube-project/internal/stream"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	requireUser := auth.RequireUser(s.Cfg.JWTSecret)
	optionalUser := auth.OptionalUser(s.Cfg.JWTSecret)

	cache := feedcache.New(s.Redis, time.Duration(s.Cfg.FeedCacheTTLSeconds)*time.Second)
	groupSvc := group.NewService(s.DB)
	postSvc := post.NewService(s.DB, s.Stream)
	socialSvc := social.NewService(s.DB)
	store := storage.NewService(s.DB, s.Cfg.MediaRoot)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	about.RegisterRoutes(s.App.Group("/about"))
	group.RegisterRoutes(s.App.Group("/groups"), groupSvc, requireUser)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)

	// The wildcard /:username routes go last so the static segments above
	// keep winning the match.
	post.RegisterRoutes(s.App, postSvc, socialSvc, groupSvc, store, cache, requireUser, optionalUser)
	social.RegisterRoutes(s.App, socialSvc, requireUser)
}

// errorHandler renders every fiber error as a small JSON document carrying
// the request path, and hides internals behind a generic 500.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code != fiber.StatusInternalServerError {
			message = fe.Message
		}
	}
	return c.Status(code).JSON(fiber.Map{"error": message, "path": c.Path()})
}
