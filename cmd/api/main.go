package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/adventureapp/adventure-api/internal/api"
	"github.com/adventureapp/adventure-api/internal/core/service"
	"github.com/adventureapp/adventure-api/internal/infrastructure/db/mongo"
	"github.com/adventureapp/adventure-api/internal/infrastructure/db/redis"
	"github.com/adventureapp/adventure-api/internal/infrastructure/httpfetch"
	"github.com/adventureapp/adventure-api/internal/infrastructure/openai"
	"github.com/adventureapp/adventure-api/internal/infrastructure/queue"
	"github.com/adventureapp/adventure-api/internal/infrastructure/s3"
	"github.com/adventureapp/adventure-api/internal/pkg/config"
	"github.com/adventureapp/adventure-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Connections ---
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	storage, err := s3.New(ctx, cfg.S3.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("s3 client setup failed")
	}

	// --- Repositories ---
	userRepo := mongo.NewUserRepository(db)
	adventureRepo := mongo.NewAdventureRepository(db)
	keyRepo := mongo.NewAPIKeyRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":      userRepo.EnsureIndexes,
		"adventures": adventureRepo.EnsureIndexes,
		"api_keys":   keyRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Background workers ---
	dispatcher := queue.NewDispatcher(cfg.Workers, log)
	dispatcher.Start(ctx)

	// --- Generators and pipelines ---
	oa := goopenai.NewClient(cfg.OpenAI.APIKey)
	stories := openai.NewStoryGenerator(oa, cfg.OpenAI.TextModel)
	images := openai.NewImageGenerator(oa, cfg.OpenAI.ImageModel)
	fetcher := httpfetch.NewImageFetcher()
	covers := service.NewCoverPipeline(images, fetcher, storage, cfg.S3.Bucket, cfg.S3.PresignTTL, cfg.Generator.Timeout)
	thumbCache := redis.NewThumbnailCache(rdb, cfg.Redis.ThumbTTL)

	// --- Services ---
	keyService := service.NewAPIKeyService(keyRepo, dispatcher, log)
	authService := service.NewAuthService(userRepo, keyService, cfg.JWTSecret, cfg.TokenTTL, log)
	adventureService := service.NewAdventureService(adventureRepo, authService, stories, covers, cfg.Generator.Timeout, log)
	imageService := service.NewImageService(adventureRepo, authService, covers, thumbCache, dispatcher, log)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Adventures: adventureService,
		Images:     imageService,
		Keys:       keyService,
		Mongo:      db,
		Redis:      rdb,
		Logger:     log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		os.Exit(1)
	}
}
