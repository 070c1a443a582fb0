package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"procurement-api/config"
	"procurement-api/middleware"
	"procurement-api/migrations"
	"procurement-api/routes"
	"procurement-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize logging before anything writes
	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database
	config.InitDB()

	// Run schema migrations when enabled
	if os.Getenv("AUTO_MIGRATE") == "true" {
		if err := migrations.Run(config.DB); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Register /logs route early (before 404 catch-all in SetupRoutes)
	router.GET("/logs", func(c *gin.Context) {
		accessToken := os.Getenv("LOG_ACCESS_TOKEN")
		if accessToken == "" || c.Query("token") != accessToken {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}

		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}

		c.Data(200, "text/plain; charset=utf-8", logData)
	})

	// Setup routes
	routes.SetupRoutes(router)

	// Create upload directory if not exists
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create upload directory: %v", err)
	}

	// Start the approval reminder scheduler when enabled
	if os.Getenv("ENABLE_REMINDERS") == "true" {
		thresholdHours := 48
		if v, err := strconv.Atoi(os.Getenv("REMINDER_THRESHOLD_HOURS")); err == nil && v > 0 {
			thresholdHours = v
		}
		cronSpec := os.Getenv("REMINDER_CRON")
		if cronSpec == "" {
			cronSpec = "0 8 * * *"
		}

		job := services.NewReminderJob(config.DB, time.Duration(thresholdHours)*time.Hour)
		if err := job.Start(cronSpec); err != nil {
			log.Printf("Warning: Failed to start reminder job: %v", err)
		} else {
			defer job.Stop()
			log.Printf("Reminder job scheduled (%s, threshold %dh)", cronSpec, thresholdHours)
		}
	}

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
