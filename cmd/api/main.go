// main.go - The entry point and router setup.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quoc48/receipt-parser/configs"
	"github.com/quoc48/receipt-parser/internal/api"
	"github.com/quoc48/receipt-parser/internal/storage"
)

func main() {
	configs.LoadConfig()

	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := os.MkdirAll(configs.UPLOAD_DIR, 0755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	if err := storage.InitMongoDB(); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer storage.CloseMongoDB()

	if storage.IsEnabled() {
		if err := storage.EnsureCategories(); err != nil {
			log.Printf("⚠️  Failed to seed category catalog: %v", err)
		}
	}

	router := gin.Default()

	// CORS middleware - configure allowed origins for production
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", configs.ALLOWED_ORIGINS)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Root endpoint for SSL verification
	router.GET("/", func(c *gin.Context) {
		c.String(200, "ok")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":      "ok",
			"service":     "receipt-parser",
			"version":     "1.0.0",
			"persistence": storage.IsEnabled(),
		})
	})

	router.POST("/api/v1/parse-receipt", api.ParseReceiptHandler)
	router.POST("/api/v1/parse-text", api.ParseTextHandler)
	router.GET("/api/v1/categories", api.CategoriesHandler)

	srv := &http.Server{
		Addr:           ":" + configs.PORT,
		Handler:        router,
		ReadTimeout:    30 * time.Second, // image uploads arrive on slow mobile links
		WriteTimeout:   3 * time.Minute,  // OCR plus model parsing can run long
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Starting server on :%s", configs.PORT)
		log.Println("API Endpoints:")
		log.Println("  POST /api/v1/parse-receipt")
		log.Println("  POST /api/v1/parse-text")
		log.Println("  GET  /api/v1/categories")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
