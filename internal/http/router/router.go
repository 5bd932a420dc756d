package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-jobs/internal/config"
	"github.com/ignatzorin/freelance-jobs/internal/http/middleware"
	"github.com/ignatzorin/freelance-jobs/internal/interface/http/handler"
	"github.com/ignatzorin/freelance-jobs/internal/service"
	"github.com/ignatzorin/freelance-jobs/internal/storage"
)

// Handlers собирает все обработчики API. Nil-поля отключают свои маршруты.
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Jobs          *handler.JobHandler
	Proposals     *handler.ProposalHandler
	Invitations   *handler.InvitationHandler
	Notifications *handler.NotificationHandler
	Conversations *handler.ConversationHandler
	Attachments   *handler.AttachmentHandler
	WS            *handler.WSHandler
	Metrics       http.Handler
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	if h.Health != nil {
		r.GET("/health", h.Health.Health)
	}
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}
	if cfg.AttachmentsPath != "" {
		r.StaticFS(storage.PublicPrefix, http.Dir(cfg.AttachmentsPath))
	}

	api := r.Group("/api")
	auth := middleware.AuthMiddleware(tokenManager)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}

	if h.WS != nil {
		api.GET("/ws", h.WS.Handle)
	}

	// Публичные маршруты
	api.GET("/jobs", h.Jobs.List)
	api.GET("/jobs/featured", h.Jobs.Featured)
	api.GET("/jobs/:id", middleware.UUIDValidator("id"), h.Jobs.Get)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(auth)
	{
		protected.GET("/jobs/stats", h.Jobs.Stats)
		protected.POST("/jobs", h.Jobs.Create)
		protected.PUT("/jobs/:id", middleware.UUIDValidator("id"), h.Jobs.Update)
		protected.DELETE("/jobs/:id", middleware.UUIDValidator("id"), h.Jobs.Delete)
		protected.POST("/jobs/:id/complete", middleware.UUIDValidator("id"), h.Jobs.Complete)
		protected.POST("/jobs/:id/cancel", middleware.UUIDValidator("id"), h.Jobs.Cancel)
		protected.GET("/jobs/:id/overview", middleware.UUIDValidator("id"), h.Jobs.Overview)
		protected.GET("/me/jobs", h.Jobs.MyJobs)

		protected.POST("/jobs/:id/proposals", middleware.UUIDValidator("id"), h.Proposals.Submit)
		protected.GET("/jobs/:id/proposals", middleware.UUIDValidator("id"), h.Proposals.ListForJob)
		protected.POST("/jobs/:id/proposals/:proposalId/accept", middleware.UUIDValidator("id", "proposalId"), h.Proposals.Accept)
		protected.POST("/proposals/:proposalId/reject", middleware.UUIDValidator("proposalId"), h.Proposals.Reject)
		protected.GET("/me/proposals", h.Proposals.ListMine)

		protected.POST("/jobs/:id/invitations", middleware.UUIDValidator("id"), h.Invitations.Send)
		protected.GET("/jobs/:id/invitations", middleware.UUIDValidator("id"), h.Invitations.ListForJob)
		protected.GET("/jobs/:id/suggestions", middleware.UUIDValidator("id"), h.Invitations.Suggestions)
		protected.PATCH("/invitations/:invitationId", middleware.UUIDValidator("invitationId"), h.Invitations.Respond)
		protected.GET("/me/invitations", h.Invitations.ListMine)

		protected.GET("/notifications", h.Notifications.List)
		protected.GET("/notifications/unread/count", h.Notifications.UnreadCount)
		protected.POST("/notifications/read-all", h.Notifications.MarkAllRead)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notifications.MarkRead)

		protected.GET("/conversations", h.Conversations.ListMine)
		protected.GET("/conversations/:conversationId/messages", middleware.UUIDValidator("conversationId"), h.Conversations.ListMessages)
		protected.POST("/conversations/:conversationId/messages", middleware.UUIDValidator("conversationId"), h.Conversations.SendMessage)

		if h.Attachments != nil {
			protected.POST("/attachments", h.Attachments.Upload)
			protected.DELETE("/attachments", h.Attachments.Delete)
		}
	}

	return r
}
