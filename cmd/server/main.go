package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/health-record-service/internal/auth"
	"github.com/iliyamo/health-record-service/internal/config"
	"github.com/iliyamo/health-record-service/internal/database"
	"github.com/iliyamo/health-record-service/internal/entity"
	"github.com/iliyamo/health-record-service/internal/handler"
	"github.com/iliyamo/health-record-service/internal/middleware"
	"github.com/iliyamo/health-record-service/internal/queue"
	"github.com/iliyamo/health-record-service/internal/repository"
	"github.com/iliyamo/health-record-service/internal/router"
	queue_publisher "github.com/iliyamo/health-record-service/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBDriver, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}

	reg := entity.DefaultRegistry()
	if err := database.Migrate(context.Background(), db, cfg.DBDriver, reg); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	engine := repository.NewEngine(reg)
	authSvc := auth.NewService(users, cfg.SecretKey, time.Duration(cfg.AccessTTLMin)*time.Minute, cfg.BcryptCost)

	var audit handler.AuditFunc
	if cfg.AuditEvents {
		audit = queue_publisher.PublishEntityChanged
		go func() {
			if err := queue.StartAuditConsumer(); err != nil {
				log.Printf("audit consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()

	// Redis-backed rate limiting and response caching degrade to no-ops
	// when the client is nil (Redis unreachable at startup).
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e, cfg.Version)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc))
	router.RegisterResources(e, db, engine, reg, authSvc, audit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
