package main

import (
	"context"
	"log"
	"time"

	"rental-app/config"
	"rental-app/database"
	routes "rental-app/internal/app/http"
	"rental-app/internal/infra/cache"
	"rental-app/internal/infra/storage"
	"rental-app/internal/jobs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	if err := cache.Init(); err != nil {
		log.Fatal("Failed to connect to redis: ", err)
	}

	store, err := storage.NewMinioStore(
		config.MINIO_ENDPOINT,
		config.MINIO_ACCESS_KEY,
		config.MINIO_SECRET_KEY,
		config.MINIO_BUCKET,
		config.MINIO_USE_SSL == "true",
		config.MINIO_PUBLIC_URL,
	)
	if err != nil {
		log.Fatal("Failed to connect to object storage: ", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, store)

	jobs.StartViewSync(context.Background(), database.DB)

	r.Run(":" + config.PORT)
}
