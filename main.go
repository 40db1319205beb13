package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"civicflow-be/config"
	"civicflow-be/controllers"
	"civicflow-be/monitor"
	"civicflow-be/reportgen"
	"civicflow-be/routes"
	"civicflow-be/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var st *store.Store
	switch os.Getenv("STORE_DRIVER") {
	case "mongo":
		db := config.ConnectDB()
		if db == nil {
			log.Fatal("Failed to connect to MongoDB")
		}
		st = store.NewMongo(db)
		log.Println("Using MongoDB store")
	default:
		st = store.NewMemory()
		log.Println("Using in-memory store")
	}

	config.ConnectRedis()

	var drafts reportgen.Generator
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		model := os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-5"
		}
		drafts = reportgen.NewClient(apiKey, model)
	}

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	routes.AuthRoutes(r, controllers.NewAuthController(st))
	routes.IssueRoutes(r, controllers.NewIssueController(st, drafts))
	routes.NotificationRoutes(r, controllers.NewNotificationController(st))
	routes.AnnouncementRoutes(r, controllers.NewAnnouncementController(st))
	routes.UserRoutes(r, controllers.NewUserController(st))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	sweepInterval := 5 * time.Minute
	if v := os.Getenv("SLA_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			sweepInterval = d
		}
	}
	go monitor.New(st, sweepInterval).Start(context.Background())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
