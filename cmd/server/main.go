package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mockmate/internal/cache"
	"mockmate/internal/config"
	"mockmate/internal/metrics"
	"mockmate/internal/repository"
	"mockmate/internal/service"
	"mockmate/internal/transport/rest"
	"mockmate/internal/transport/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/server.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx := context.Background()

	// History storage: MongoDB when configured, local JSON files otherwise.
	var historyRepo repository.HistoryRepo
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB:", err)
		}
		log.Println("Connected to MongoDB")

		historyRepo = repository.NewMongoHistoryRepo(mongoClient.Database("mockmate"))
	} else {
		historyRepo, err = repository.NewFileHistoryRepo(cfg.DataDir)
		if err != nil {
			log.Fatal("Failed to open data dir:", err)
		}
		log.Printf("Using file history store in %s", cfg.DataDir)
	}

	// Question cache: Redis when configured, in-process otherwise.
	cacheTTL := time.Duration(cfg.Interview.QuestionCacheTTLMin) * time.Minute
	var questionCache cache.QuestionCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis")

		questionCache = cache.NewQuestionCache(rdb, cacheTTL)
	} else {
		questionCache = cache.NewMemoryQuestionCache(cacheTTL)
		log.Println("Using in-memory question cache")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize services
	m := metrics.NewMetrics()
	authSvc := service.NewAuthService(cfg.JWTSecret)
	questionSvc := service.NewQuestionService(cfg.QuestionBaseURL, questionCache)
	evaluator := service.NewEvaluatorService()
	followUps := service.NewFollowUpSelector(cfg.Interview.FollowUpMinWords, cfg.Interview.FollowUpProbability)

	historySvc, err := service.NewHistoryService(ctx, historyRepo, cfg.Interview.HistoryLimit)
	if err != nil {
		log.Fatal("Failed to load history:", err)
	}

	sessionSvc := service.NewSessionService(questionSvc, evaluator, followUps, historySvc, cfg.Interview, m)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		HistoryService: historySvc,
		Metrics:        m,
		WSHub:          wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/sessions")
		log.Println("  GET/DELETE /v1/sessions/{id}")
		log.Println("  POST /v1/sessions/{id}/reset")
		log.Println("  GET/DELETE /v1/history")
		log.Println("  GET  /v1/history/summary")
		log.Println("  GET/PUT/DELETE /v1/progress/{topic}")
		log.Println("  GET  /v1/metrics")
		log.Println("  WS   /v1/ws/sessions/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Flush live sessions so buffered answers reach the store.
	sessionSvc.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
