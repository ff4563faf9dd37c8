package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"civicpulse-be/config"
	"civicpulse-be/controllers"
	"civicpulse-be/models"
	"civicpulse-be/realtime"
	"civicpulse-be/routes"
	"civicpulse-be/services"
	"civicpulse-be/stores"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	log.Info("MongoDB connection established successfully!")

	config.ConnectRedis()

	notificationCol := db.Collection("notifications")
	if err := models.EnsureNotificationIndex(notificationCol); err != nil {
		log.WithError(err).Warn("failed to ensure notification index")
	}

	issueStore := stores.NewIssueStore(db.Collection("issues"))
	userStore := stores.NewUserStore(db.Collection("users"))
	auditStore := stores.NewAuditStore(db.Collection("audits"))
	notificationStore := stores.NewNotificationStore(notificationCol)

	hub := realtime.NewHub(log)
	mailer := services.NewSMTPMailerFromEnv(log)
	notifier := services.NewNotifier(notificationStore, hub, mailer, log)
	recorder := services.NewAuditRecorder(auditStore, userStore, log)
	issueService := services.NewIssueService(issueStore, userStore, recorder, notifier, log)
	sweeper := services.NewSweeper(issueStore, userStore, notifier, sweepInterval(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweeper.Run(ctx)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin()},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r, controllers.NewAuthController(userStore))
	routes.IssueRoutes(r, controllers.NewIssueController(issueService, issueStore, userStore, recorder), issueCreateLimit())
	routes.NotificationRoutes(r, controllers.NewNotificationController(notificationStore))
	routes.AdminRoutes(r, controllers.NewAdminController(userStore, issueStore, notificationStore))
	routes.SocketRoutes(r, hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Infof("Server listening on :%s", port)

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
}

func sweepInterval() time.Duration {
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return 10 * time.Minute
}

func issueCreateLimit() int {
	if raw := os.Getenv("ISSUE_CREATE_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 20
}

func origin() string {
	if o := os.Getenv("ORIGIN"); o != "" {
		return o
	}
	return "http://localhost:3000"
}
