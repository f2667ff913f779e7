package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/techagentng/photohire/config"
	"github.com/techagentng/photohire/db"
	"github.com/techagentng/photohire/logger"
	"github.com/techagentng/photohire/realtime"
	"github.com/techagentng/photohire/server"
	"github.com/techagentng/photohire/services"
	"github.com/techagentng/photohire/services/storage"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	sugar, err := logger.New(logger.Config{Development: conf.Debug || !conf.IsProduction()})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = sugar.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB := db.GetDB(conf)
	userRepo := db.NewUserRepo(gormDB)
	conversationRepo := db.NewConversationRepo(gormDB)
	messageRepo := db.NewMessageRepo(gormDB)

	store, err := storage.New(conf, sugar)
	if err != nil {
		sugar.Fatalw("unable to initialise attachment storage", "driver", conf.StorageDriver, "error", err)
	}

	hub := realtime.NewHub(sugar)
	var publisher services.Publisher = hub
	if conf.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		})
		defer rdb.Close()

		broker := realtime.NewRedisBroker(rdb, conf.RedisChannel, hub, sugar)
		go broker.Run(ctx)
		publisher = broker
		sugar.Infow("fanning out events through redis", "addr", conf.RedisAddr, "channel", conf.RedisChannel)
	}

	chatService := services.NewChatService(userRepo, conversationRepo, messageRepo, store, publisher, sugar, conf)

	s := &server.Server{
		Config:         conf,
		DB:             gormDB,
		UserRepository: userRepo,
		ChatService:    chatService,
		Hub:            hub,
		Log:            sugar,
	}
	if err := s.Start(ctx); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}
