package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eventdesk/internal/config"
	"eventdesk/internal/feed"
	"eventdesk/internal/middleware"
	"eventdesk/internal/models"
	"eventdesk/internal/repository"
	"eventdesk/internal/service"
	"eventdesk/internal/storage"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	events   *service.EventService
	banners  *service.BannerService
	hub      *feed.Hub
	db       *pgxpool.Pool
	cache    *redis.Client
	users    *repository.UserRepository
	sessions *repository.SessionRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	banners *storage.BannerStore,
	hub *feed.Hub,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	eventRepo := repository.NewEventRepository(db)

	publisher := feed.NewPublisher(cache, cfg.Redis.Stream, log)
	auth := service.NewAuthService(userRepo, sessionRepo, service.NewGoogleVerifier(), cfg, log)
	events := service.NewEventService(eventRepo, publisher, log)
	banner := service.NewBannerService(eventRepo, banners, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		events:   events,
		banners:  banner,
		hub:      hub,
		db:       db,
		cache:    cache,
		users:    userRepo,
		sessions: sessionRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	// legacy stub kept for the old front-end build; returns canned
	// bodies and touches nothing
	router.GET("/users", h.LegacyListUsers)
	router.POST("/users", h.LegacyCreateUser)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(h.cache, h.cfg.Security.AuthRateLimit, h.cfg.Security.AuthRateWindow))
		auth.POST("/register", h.SignUp)
		auth.POST("/login", h.Login)
		auth.POST("/google", h.LoginWithGoogle)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)

		me := v1.Group("/auth")
		me.Use(middleware.Auth(h.cfg, h.users, h.sessions))
		me.GET("/me", h.Me)

		events := v1.Group("/events")
		events.GET("", h.ListEvents)
		events.GET("/watch", h.WatchEvents)
		events.GET("/calendar.ics", h.CalendarFeed)
		events.GET("/:id", h.GetEvent)
		events.GET("/:id/register", h.RegisterForEvent)

		admin := v1.Group("/events")
		admin.Use(
			middleware.Auth(h.cfg, h.users, h.sessions),
			middleware.RequireRoles(models.UserRoleAdmin),
		)
		admin.POST("", h.CreateEvent)
		admin.POST("/:id/banner", h.UploadBanner)
	}
}
