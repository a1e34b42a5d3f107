package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/employee-task-hub/internal/config"
	"github.com/iliyamo/employee-task-hub/internal/database"
	"github.com/iliyamo/employee-task-hub/internal/handler"
	"github.com/iliyamo/employee-task-hub/internal/middleware"
	"github.com/iliyamo/employee-task-hub/internal/notify"
	"github.com/iliyamo/employee-task-hub/internal/otp"
	"github.com/iliyamo/employee-task-hub/internal/queue"
	"github.com/iliyamo/employee-task-hub/internal/realtime"
	"github.com/iliyamo/employee-task-hub/internal/repository"
	"github.com/iliyamo/employee-task-hub/internal/router"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs both the access-code store and the rate limiter. When it
	// is unreachable the service still runs: codes live in process memory
	// and the limiter becomes a pass-through.
	rdb := config.NewRedisClient()
	var codeStore otp.Store
	if rdb != nil {
		codeStore = otp.NewRedisStore(rdb)
	} else {
		log.Println("redis unavailable, access codes held in memory")
		codeStore = otp.NewMemoryStore()
	}

	authenticator := otp.New(codeStore, time.Duration(cfg.CodeTTLMin)*time.Minute, cfg.CodeMaxAttempts)
	dispatcher := notify.NewQueueDispatcher()

	identities := repository.NewIdentityRepo(db)
	tokens := repository.NewTokenRepo(db)
	tasks := repository.NewTaskRepo(db)
	conversations := repository.NewConversationRepo(db)
	messages := repository.NewMessageRepo(db)

	registry := realtime.NewRegistry()

	// The notification consumer drains notify.dispatch and records every
	// delivery attempt. It reconnects on its own; a missing broker only
	// costs the audit trail.
	go func() {
		if err := queue.StartNotifyConsumer(); err != nil {
			log.Printf("notify consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	codeLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.Register(e, router.Handlers{
		Health:    &handler.HealthHandler{DB: db},
		Auth:      handler.NewAuthHandler(cfg, identities, tokens, authenticator, dispatcher),
		Employees: handler.NewEmployeeHandler(identities, tokens, dispatcher),
		Tasks:     handler.NewTaskHandler(tasks, identities, registry),
		Messages:  handler.NewMessageHandler(conversations, messages, identities, registry),
		Realtime:  realtime.NewHandler(registry, cfg.JWTSecret),
	}, cfg.JWTSecret, codeLimiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
