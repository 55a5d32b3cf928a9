// Command seed loads a small demo data set into the document store:
// a handful of users, two channels, a seeded thread with replies, and a
// direct message exchange.
package main

import (
	"context"
	"log"
	"time"

	"ripple-chat/config"
	"ripple-chat/internal/chat"
	"ripple-chat/internal/docstore"
	"ripple-chat/internal/redis"
	"ripple-chat/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.LoadConfig()
	l := logger.New(cfg.AppMode)
	defer l.Sync()

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	store := docstore.NewRedisStore(redisClient, l)

	users := map[string]string{
		"frederik": "Frederik Beck",
		"sofia":    "Sofia Müller",
		"noah":     "Noah Braun",
		"guest":    "Gast",
	}
	for id, name := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		err = store.Set(ctx, docstore.UserPath(id), map[string]any{
			"name":         name,
			"email":        id + "@example.com",
			"passwordHash": string(hash),
			"imgUrl":       "",
			"isOnline":     false,
		})
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", id, err)
		}
	}

	channels := chat.NewChannelService(store, l)
	channelID, err := channels.Create(ctx, chat.CreateInput{
		Name:        "Entwicklerteam",
		Description: "Alles rund um die Entwicklung",
		CreatedBy:   "frederik",
		Members:     []string{"frederik", "sofia", "noah"},
	})
	if err != nil {
		log.Fatalf("Failed to seed channel: %v", err)
	}
	if _, err := channels.Create(ctx, chat.CreateInput{
		Name:        "Allgemein",
		Description: "Team-weite Ankündigungen",
		CreatedBy:   "sofia",
		Members:     []string{"frederik", "sofia", "noah", "guest"},
	}); err != nil {
		log.Fatalf("Failed to seed channel: %v", err)
	}

	messages := chat.NewMessageService(store, l)
	now := time.Now()

	threadID, err := messages.SendChannelMessage(ctx, channelID, chat.Outgoing{
		CreatedBy:    "sofia",
		Text:         "Welche Version welche weitere Funktionen beinhaltet, seht ihr im Changelog.",
		CreationDate: now.Add(-48 * time.Hour).UnixMilli(),
	})
	if err != nil {
		log.Fatalf("Failed to seed thread: %v", err)
	}
	replies := []chat.Outgoing{
		{CreatedBy: "frederik", Text: "Danke für den Hinweis!", CreationDate: now.Add(-47 * time.Hour).UnixMilli()},
		{CreatedBy: "noah", Text: "Ich schaue es mir gleich an.", CreationDate: now.Add(-2 * time.Hour).UnixMilli()},
	}
	for _, reply := range replies {
		if _, err := messages.SendThreadReply(ctx, channelID, threadID, reply); err != nil {
			log.Fatalf("Failed to seed reply: %v", err)
		}
	}

	if _, err := messages.SendDirectMessage(ctx, "frederik", "sofia", chat.Outgoing{
		CreatedBy:    "frederik",
		Text:         "Hast du kurz Zeit für ein Review?",
		CreationDate: now.Add(-30 * time.Minute).UnixMilli(),
	}); err != nil {
		log.Fatalf("Failed to seed direct message: %v", err)
	}

	l.Infof("Seed data loaded")
}
