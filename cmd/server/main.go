package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Arman-Bisht/med-connect/internal/auth"
	"github.com/Arman-Bisht/med-connect/internal/database"
	"github.com/Arman-Bisht/med-connect/internal/handlers"
	"github.com/Arman-Bisht/med-connect/internal/mailer"
	"github.com/Arman-Bisht/med-connect/internal/store"
	"github.com/Arman-Bisht/med-connect/internal/summarizer"
	"github.com/Arman-Bisht/med-connect/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: Could not load .env file")
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database
	db, err := database.NewMongoDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	st := store.NewMongo(db)
	jwt := auth.NewJWT(mustEnv("JWT_SECRET"), 24*time.Hour)

	// Services
	authSvc := auth.NewService(st, jwt)
	ai := summarizer.New(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_BASE_URL"))
	mail := mailer.FromEnv()

	// Handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	patientHandler := handlers.NewPatientHandler(st, ai)
	userHandler := handlers.NewUserHandler(st)
	caseHandler := handlers.NewCaseHandler(st, mail)

	// Snapshot feed
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub(st)
	go hub.Run(ctx)

	// Setup router
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{getEnv("ALLOWED_ORIGIN", "*")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "med-connect-backend",
		})
	})

	// Routes
	api := r.Group("/api/v1")
	{
		api.POST("/auth/signup", authHandler.SignUp)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		protected := api.Group("")
		protected.Use(auth.Middleware(jwt))
		{
			protected.GET("/auth/me", authHandler.Me)

			protected.GET("/patients", patientHandler.List)
			protected.GET("/patients/:id", patientHandler.Get)
			protected.POST("/patients", patientHandler.Create)
			protected.POST("/patients/:id/summary", patientHandler.Summarize)

			protected.GET("/users", userHandler.List)
			protected.GET("/specialists", userHandler.Specialists)

			protected.POST("/cases", caseHandler.Create)
			protected.GET("/cases", caseHandler.List)
			protected.GET("/cases/:id", caseHandler.Get)
			protected.POST("/cases/:id/messages", caseHandler.AppendMessage)
			protected.POST("/cases/:id/status", caseHandler.ChangeStatus)
			protected.POST("/cases/:id/calls", caseHandler.ProposeCall)
			protected.POST("/cases/:id/calls/:callID/confirm", caseHandler.ConfirmCall)
			protected.POST("/cases/:id/calls/:callID/cancel", caseHandler.CancelCall)
			protected.POST("/cases/:id/calls/:callID/complete", caseHandler.CompleteCall)

			protected.GET("/ws", func(c *gin.Context) {
				ws.Handle(hub, c)
			})
		}
	}

	port := getEnv("PORT", "8080")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("🚀 Server starting on port %s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server shutdown error: %v", err)
	}

	log.Println("✅ Server stopped gracefully.")
}

// Helper functions to get environment variables
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("missing env %s", key)
	}
	return v
}
