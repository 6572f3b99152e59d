package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"todohub/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"todohub/internal/auth"
	"todohub/internal/cache"
	"todohub/internal/config"
	"todohub/internal/db"
	"todohub/internal/handler"
	"todohub/internal/mail"
	"todohub/internal/model"
	"todohub/internal/repository"
	"todohub/internal/router"
	"todohub/internal/service"
)

// @title Todohub API
// @version 1.0
// @description Todo API with owner-scoped todos, JWT authentication, and email verification.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Todo{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	todoRepo := repository.NewTodoRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, auth.TTL{
		Access:  cfg.AccessTokenTTL,
		Refresh: cfg.RefreshTokenTTL,
		Email:   cfg.EmailTokenTTL,
		Reset:   cfg.ResetTokenTTL,
	})
	tokenStore := auth.NewTokenStore(cacheClient)

	mailer := mail.NewSMTPMailer(cfg, slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, mailer)
	todoService := service.NewTodoService(todoRepo, cacheClient)
	userService := service.NewUserService(userRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	todoHandler := handler.NewTodoHandler(todoService)
	userHandler := handler.NewUserHandler(userService)

	// Register routes
	router.Register(
		e,
		cfg,
		gormDB,
		jwtService,
		tokenStore,
		authHandler,
		todoHandler,
		userHandler,
	)

	log.Printf("Swagger documentation available at: %s/swagger/index.html", cfg.BaseURL)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
