package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/controller"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/repository"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/service"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/config"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/db"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/logger"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/server"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/session"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/telemetry"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init()

	// Initialize Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("failed to initialize redis: %v", err)
	}

	// Initialize SQLite DB
	DB, err := db.Connect(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}

	// Sessions
	sessions := session.NewRedisStore(rdb, cfg.SessionSecret)

	// Create repositories
	userRepo := repository.NewUserRepository(DB)
	listRepo := repository.NewListRepository(DB)
	itemRepo := repository.NewItemRepository(DB)

	// Create services
	userService := service.NewUserService(userRepo, sessions)
	todoService := service.NewTodoService(listRepo, itemRepo)

	// Create controllers
	userController := controller.NewUserController(userService)
	todoController := controller.NewTodoController(todoService)

	// Create the Gin-based server
	srv := server.NewServer(cfg, userController, todoController, userService)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("http server started on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
