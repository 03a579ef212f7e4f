package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stockflow/internal/api/handler"
	"stockflow/internal/config"
	"stockflow/internal/core/postgres/repository"
	"stockflow/internal/domain"
	"stockflow/internal/executor"
	"stockflow/internal/infrastructure/naver"
	redisinfra "stockflow/internal/infrastructure/redis"
	"stockflow/internal/metrics"
	"stockflow/internal/scheduler"
	"stockflow/internal/service"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	// 2. Set up database connection
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := db.AutoMigrate(&domain.Workflow{}, &domain.RunLog{}); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	workflowRepo := repository.NewWorkflowRepository(db)
	runLogRepo := repository.NewRunLogRepository(db)
	stockRepo := repository.NewStockRepository(db)

	// 3. Redis: per-workflow run lock + run-completed events
	redisClient, err := redisinfra.NewRedisClient(cfg.Redis.Addr)
	if err != nil {
		log.Fatal("Failed to connect to redis: ", err)
	}
	runLock := redisinfra.NewRunLock(redisClient)
	eventBus := redisinfra.NewRunEventBus(redisClient)

	// 4. Marketplace gateway
	naverClient := naver.NewClient(naver.Config{
		BaseURL:      cfg.Naver.BaseURL,
		ClientID:     cfg.Naver.ClientID,
		ClientSecret: cfg.Naver.ClientSecret,
	}, nil)
	gateway := naver.NewGateway(naverClient)

	// 5. Metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// 6. Executor + scheduler loop
	exec := executor.NewExecutor(
		workflowRepo, runLogRepo, stockRepo, stockRepo,
		gateway, runLock, eventBus, m,
		cfg.Scheduler.RunTimeout,
	)
	sched := scheduler.NewScheduler(workflowRepo, exec, cfg.Scheduler.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedulerDone := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(schedulerDone)
	}()

	// 7. HTTP API
	workflowSvc := service.NewWorkflowService(workflowRepo, runLogRepo, exec)
	workflowHandler := handler.NewWorkflowHandler(workflowSvc)

	router := gin.Default()
	workflowHandler.Register(router.Group("/api/v1"))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	server := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		log.Println("Server starting on ", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	// 8. Graceful shutdown: stop the API, then wait for in-flight runs so
	// every run log reaches a terminal state.
	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("HTTP server shutdown: ", err)
	}
	<-schedulerDone

	log.Println("Server stopped")
}
