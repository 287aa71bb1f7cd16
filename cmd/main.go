/**
 * @description
 * This is the main entry point for the bnpl-service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, external API clients, message brokers, repositories, the core
 * application service, and the HTTP server. It wires everything together and
 * starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: Loads the optional local .env file.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/naverclient, pkg/riskclient, pkg/rabbitmq: External collaborator clients.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hanapay/bnpl-service/internal/api"
	"github.com/hanapay/bnpl-service/internal/app"
	"github.com/hanapay/bnpl-service/internal/config"
	"github.com/hanapay/bnpl-service/internal/store"
	"github.com/hanapay/bnpl-service/pkg/naverclient"
	bnplrabbit "github.com/hanapay/bnpl-service/pkg/rabbitmq"
	"github.com/hanapay/bnpl-service/pkg/riskclient"
)

func main() {
	// Load the optional local .env file before viper reads the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("level=info component=bootstrap msg=\"no .env file found; using environment values\"")
	}

	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.RiskAPIBaseURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"risk api base url must be configured\" env=RISK_API_BASE_URL")
	}

	log.Printf("level=info component=bootstrap msg=\"starting bnpl-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 10
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts behind poolers.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer for approval events. The service stays
	// up without a broker; events are then dropped by the fallback publisher.
	var producer bnplrabbit.Publisher
	rabbitProducer, err := bnplrabbit.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		producer = &bnplrabbit.EventProducerFallback{}
	} else {
		defer rabbitProducer.Close()
		producer = rabbitProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Connect to Redis for rate limiting and the news cache. A missing or
	// unreachable Redis degrades both features instead of blocking boot.
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"redis url missing; rate limiting and news cache disabled\" env=REDIS_URL")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; rate limiting and news cache disabled\" err=%v", parseErr)
		} else {
			redisClient = redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelPing()
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; rate limiting and news cache disabled\" err=%v", pingErr)
				redisClient.Close()
				redisClient = nil
			} else {
				defer redisClient.Close()
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
		}
	}

	// Initialize the data access layer and external collaborator clients.
	repository := store.NewPostgresRepository(dbpool)
	riskClient := riskclient.NewClient(cfg.RiskAPIBaseURL)
	naverClient := naverclient.NewClient(cfg.NaverClientID, cfg.NaverClientSecret)

	// Initialize the core application services.
	bnplService := app.NewService(
		repository,
		app.NewSampleProfileProvider(riskClient),
		riskClient,
		producer,
	)

	var newsCache redis.UniversalClient
	if redisClient != nil {
		newsCache = redisClient
	}
	newsService := app.NewNewsService(naverClient, newsCache)

	var limiter *app.RedisRateLimiter
	if redisClient != nil {
		limiter = app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
	}

	// Initialize the API handlers and router.
	handlers := api.NewBnplHandlers(bnplService, newsService, limiter, cfg.ApplyRateLimitPerMinute, time.Minute)
	router := api.BnplRoutes(handlers, cfg.JWTSecret, cfg.AllowedOriginList())

	// Start consuming merchant settlement events.
	usageConsumer := app.NewUsageEventConsumer(repository)

	rabbitConsumer, err := bnplrabbit.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq consumer unavailable; usage events disabled\" err=%v", err)
	} else {
		defer rabbitConsumer.Close()
		bindings := map[string]bnplrabbit.HandlerFunc{
			"bnpl.usage.recorded": usageConsumer.HandleUsageRecorded,
		}
		if err := rabbitConsumer.Consume("bnpl_events", cfg.UsageEventQueue, bindings); err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"usage consumer start failed\" err=%v", err)
		}
	}

	// Start the HTTP server.
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
