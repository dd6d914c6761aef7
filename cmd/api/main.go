package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"flashfix/internal/config"
	"flashfix/internal/database"
	"flashfix/internal/middleware"
	"flashfix/internal/modules/auth"
	"flashfix/internal/modules/catalog"
	"flashfix/internal/modules/order"
	"flashfix/internal/modules/user"
	jwtsvc "flashfix/internal/pkg/jwt"
	"flashfix/internal/repository"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	logRepo := repository.NewOrderLogRepository(db)
	serviceRepo := repository.NewServiceRepository(db)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	hub := order.NewHub()
	defer hub.Close()

	authHandler := auth.NewHandler(auth.NewService(userRepo, tokens))
	orderHandler := order.NewHandler(order.NewService(orderRepo, logRepo, serviceRepo, userRepo, hub), hub)
	catalogHandler := catalog.NewHandler(catalog.NewService(serviceRepo))
	userHandler := user.NewHandler(user.NewService(userRepo))

	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"service":   "flashfix-api",
			"version":   version,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := r.Group("/api/v1")
	authHandler.RegisterPublicRoutes(api)
	catalogHandler.RegisterPublicRoutes(api)

	protected := api.Group("", middleware.Auth(tokens))
	authHandler.RegisterProtectedRoutes(protected)
	catalogHandler.RegisterProtectedRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	userHandler.RegisterRoutes(protected)

	log.Printf("listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
