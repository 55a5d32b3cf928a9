package main

import (
	"context"
	"log"
	"time"

	"ripple-chat/config"
	"ripple-chat/internal/auth"
	"ripple-chat/internal/chat"
	"ripple-chat/internal/docstore"
	"ripple-chat/internal/handler"
	"ripple-chat/internal/presence"
	"ripple-chat/internal/redis"
	"ripple-chat/internal/server"
	"ripple-chat/internal/storage"
	"ripple-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	defer l.Sync()
	logger.SetGlobalLogger(l)

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	store := docstore.NewRedisStore(redisClient, l)

	var s3Client *storage.Client
	var urlCache *redis.URLCache
	if cfg.S3Bucket != "" {
		var err error
		s3Client, err = storage.NewClient(context.Background(), storage.Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: 15 * time.Minute,
		})
		if err != nil {
			log.Fatalf("Failed to create s3 client: %v", err)
		}
		urlCache = redis.NewURLCache(redisClient, 10*time.Minute)
	}

	presenceStore := presence.NewStore(redisClient, store, l, 5*time.Minute)
	authService := auth.NewService(store, l, cfg.JWTSecret, time.Duration(cfg.JWTExpiryMin)*time.Minute)
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

	channels := chat.NewChannelService(store, l)
	messages := chat.NewMessageService(store, l)
	search := chat.NewSearch(store)

	hub := server.NewHub(presenceStore, server.NewWebSocketLogger())
	hub.Run()
	defer hub.Stop()

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:     handler.NewAuthHandler(authService, presenceStore),
		Channels: handler.NewChannelHandler(channels),
		Messages: handler.NewMessageHandler(messages),
		Users:    handler.NewUserHandler(search),
		Uploads:  handler.NewUploadHandler(s3Client, urlCache),
		Presence: handler.NewPresenceHandler(presenceStore),
		Stream:   server.NewStreamHandler(hub, authService, store, limiter, l),
	}, authService, limiter, redisClient)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
