package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ieatsighpies/fyp-survey-website/internal/cache"
	"github.com/ieatsighpies/fyp-survey-website/internal/config"
	"github.com/ieatsighpies/fyp-survey-website/internal/llm"
	"github.com/ieatsighpies/fyp-survey-website/internal/logger"
	"github.com/ieatsighpies/fyp-survey-website/internal/repository"
	"github.com/ieatsighpies/fyp-survey-website/internal/service"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
	"github.com/ieatsighpies/fyp-survey-website/internal/transport/rest"
	"github.com/ieatsighpies/fyp-survey-website/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info")
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	log.Info().Str("db", cfg.MongoDB).Msg("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)
	if err := repository.EnsureCollections(ctx, db); err != nil {
		// Writes will surface their own failures; the session survives them
		log.Warn().Err(err).Msg("collection bootstrap failed")
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping Redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)

	// Initialize repositories and caches
	surveyRepo := repository.NewSurveyResponseRepo(db)
	chatRepo := repository.NewChatLogRepo(db)
	validatedRepo := repository.NewValidatedAnswerRepo(db)
	sessionCache := cache.NewSessionCache(rdb, cfg.SessionTTL)

	// Completion backend
	var completer llm.Completer
	if cfg.CompletionEnabled() {
		completer = llm.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		log.Info().Str("model", cfg.OpenAIModel).Msg("completion service configured")
	} else {
		completer = llm.Mock{}
		log.Warn().Msg("OPENAI_API_KEY not set, using canned replies")
	}

	// Initialize services
	form := survey.Default()
	sessions := session.NewStore(sessionCache, log)
	surveySvc := service.NewSurveyService(form, sessions, surveyRepo, log)
	dialogueSvc := service.NewDialogueService(form, sessions, completer, chatRepo, log)
	reviewSvc := service.NewReviewService(form, sessions, validatedRepo, log)

	// Inject the fragment sink (wsHub implements service.FragmentSink)
	surveySvc.SetSink(wsHub)
	dialogueSvc.SetSink(wsHub)

	// Create router with container
	container := &rest.Container{
		Form:            form,
		Sessions:        sessions,
		SurveyService:   surveySvc,
		DialogueService: dialogueSvc,
		ReviewService:   reviewSvc,
		WSHub:           wsHub,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Logger:          log,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen and serve")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
