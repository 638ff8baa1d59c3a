package routes

import (
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything Setup mounts.
type Handlers struct {
	Health        *handlers.HealthHandler
	Users         *handlers.UserHandler
	Social        *handlers.SocialHandler
	Lists         *handlers.ListHandler
	Comments      *handlers.CommentHandler
	Reviews       *handlers.ReviewHandler
	Messages      *handlers.MessageHandler
	Notifications *handlers.NotificationHandler
	Moderation    *handlers.ModerationHandler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	api := app.Group("/api")

	api.Use(middleware.Timeout(cfg.StatementTimeout))

	api.Get("/health", h.Health.Check)

	// Reads accept anonymous callers; writes need a token.
	optional := middleware.OptionalAuth(cfg)
	protected := middleware.JWTProtected(cfg)

	// Users and social graph
	api.Post("/users", protected, h.Users.Register)
	api.Get("/users/me", protected, h.Users.Me)
	api.Patch("/users/me/settings", protected, h.Users.UpdateSettings)
	api.Delete("/users/me", protected, h.Users.DeleteAccount)
	api.Get("/users/:id", optional, h.Users.GetProfile)
	api.Get("/users/:id/followers", optional, h.Social.Followers)
	api.Get("/users/:id/following", optional, h.Social.Following)
	api.Get("/users/:id/lists", optional, h.Lists.ListByUser)
	api.Post("/users/:id/follow", protected, h.Social.Follow)
	api.Delete("/users/:id/follow", protected, h.Social.Unfollow)

	api.Get("/blocks", protected, h.Social.Blocked)
	api.Post("/blocks", protected, h.Social.BlockUser)
	api.Delete("/blocks/:id", protected, h.Social.UnblockUser)

	// Lists, ratings and comments
	api.Post("/lists", protected, h.Lists.Create)
	api.Get("/lists/:id", optional, h.Lists.Get)
	api.Put("/lists/:id", protected, h.Lists.Update)
	api.Delete("/lists/:id", protected, h.Lists.Delete)
	api.Put("/lists/:id/rating", protected, h.Lists.Rate)
	api.Delete("/lists/:id/rating", protected, h.Lists.RemoveRating)
	api.Get("/lists/:id/comments", optional, h.Comments.Tree)
	api.Post("/lists/:id/comments", protected, h.Comments.Create)

	api.Get("/comments/:id", optional, h.Comments.Thread)
	api.Put("/comments/:id", protected, h.Comments.Edit)
	api.Delete("/comments/:id", protected, h.Comments.Delete)
	api.Post("/comments/:id/vote", protected, h.Comments.Vote)

	// Reviews
	api.Post("/reviews", protected, h.Reviews.Create)
	api.Get("/reviews/:id", optional, h.Reviews.Get)
	api.Delete("/reviews/:id", protected, h.Reviews.Delete)
	api.Post("/reviews/:id/vote", protected, h.Reviews.Vote)
	api.Get("/games/:game_id/reviews", optional, h.Reviews.ListForGame)

	// Messages and notifications
	api.Post("/messages", protected, h.Messages.Send)
	api.Get("/messages/:user_id", protected, h.Messages.Conversation)
	api.Put("/messages/:user_id/read", protected, h.Messages.MarkRead)
	api.Get("/notifications", protected, h.Notifications.List)
	api.Post("/notifications/read", protected, h.Notifications.MarkAllRead)

	// Moderation reports
	api.Post("/reports", protected, h.Moderation.CreateReport)

	// Admin moderation panel (token or listed admin user)
	admin := api.Group("/admin", optional, middleware.AdminRequired(cfg))
	admin.Get("/moderation/reports", h.Moderation.ListReports)
	admin.Put("/moderation/reports/:id", h.Moderation.ActionReport)
}
