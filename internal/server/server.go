package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ripple-chat/config"
	"ripple-chat/internal/auth"
	"ripple-chat/internal/handler"
	"ripple-chat/internal/middleware"
	"ripple-chat/internal/redis"
	"ripple-chat/internal/transport/httpdto"
	"ripple-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Channels *handler.ChannelHandler
	Messages *handler.MessageHandler
	Users    *handler.UserHandler
	Uploads  *handler.UploadHandler
	Presence *handler.PresenceHandler
	Stream   *StreamHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *auth.Service, limiter *redis.RateLimiter, redisClient *goredis.Client) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	requireAuth := middleware.AuthMiddleware(authService)

	authGroup := s.engine.Group("/v1/auth")
	{
		authGroup.POST("/register", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.Register)
		authGroup.POST("/login", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.Login)
		authGroup.POST("/login-guest", middleware.AuthRateLimitMiddleware(limiter), handlers.Auth.LoginGuest(s.config.GuestUserID))
		authGroup.POST("/logout", requireAuth, handlers.Auth.Logout(middleware.UserID))
	}

	channels := s.engine.Group("/v1/channels", requireAuth)
	{
		channels.GET("", handlers.Channels.List)
		channels.POST("", handlers.Channels.Create)
		channels.GET("/name-exists", handlers.Channels.NameExists)
		channels.GET("/:id", handlers.Channels.Get)
		channels.POST("/:id/members", handlers.Channels.AddMembers)
		channels.POST("/:id/messages", middleware.MessageRateLimitMiddleware(limiter), handlers.Messages.SendToChannel)
		channels.POST("/:id/threads/:threadId/messages", middleware.MessageRateLimitMiddleware(limiter), handlers.Messages.SendToThread)
		channels.PATCH("/:id/threads/:threadId", handlers.Messages.EditThreadMessage)
		channels.DELETE("/:id/threads/:threadId", handlers.Messages.DeleteThreadMessage)
	}

	dm := s.engine.Group("/v1/dm", requireAuth)
	{
		dm.POST("/:userId/messages", middleware.MessageRateLimitMiddleware(limiter), handlers.Messages.SendDirect)
	}

	users := s.engine.Group("/v1/users", requireAuth)
	{
		users.GET("/search", handlers.Users.Search)
	}

	uploads := s.engine.Group("/v1/uploads", requireAuth)
	{
		uploads.POST("/avatar", handlers.Uploads.Avatar)
		uploads.POST("/attachment", handlers.Uploads.Attachment)
		uploads.GET("/url", handlers.Uploads.DownloadURL)
		uploads.DELETE("", handlers.Uploads.Delete)
	}

	presenceGroup := s.engine.Group("/v1/presence", requireAuth)
	{
		presenceGroup.GET("/online", handlers.Presence.Online)
		presenceGroup.GET("/:userId", handlers.Presence.Status)
	}

	s.engine.GET("/v1/stream", handlers.Stream.Handle)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
