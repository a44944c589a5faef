package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/mosesmwila/zareat-api/configs"
	"github.com/mosesmwila/zareat-api/internal/api/handlers"
	"github.com/mosesmwila/zareat-api/internal/api/middleware"
	job "github.com/mosesmwila/zareat-api/internal/jobs"
	"github.com/mosesmwila/zareat-api/internal/notify"
	"github.com/mosesmwila/zareat-api/internal/queue"
	"github.com/mosesmwila/zareat-api/internal/repository"
	"github.com/mosesmwila/zareat-api/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    20 * 1024 * 1024, // 20 MB, invoice uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// Notifications from request handlers and the sweep go through the
	// asynq queue; the worker below delivers them over SMTP.
	queueNotifier := queue.NewNotifier(client)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, queueNotifier)
	accessService := service.NewAccessService(subscriptionRepo)
	invoiceService := service.NewInvoiceService(*cfg, subscriptionRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	subscription := handlers.NewSubscriptionHandler(subscriptionService, accessService)
	app.Get("/content", authMiddleware.OptionalAuth(), subscription.GetContent)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	api.Post("/subscriptions/request", subscription.RequestSubscription)

	admin := handlers.NewAdminHandler(subscriptionService, invoiceService)
	adminGroup := api.Group("/admin")
	adminGroup.Use(authMiddleware.AdminOnly())
	adminGroup.Get("/subscriptions", admin.ListSubscriptions)
	adminGroup.Post("/subscriptions", admin.AddSubscription)
	adminGroup.Post("/subscriptions/:id/approve", admin.ApproveSubscription)
	adminGroup.Post("/subscriptions/:id/invoice", admin.UploadInvoice)
	adminGroup.Get("/invoices", admin.ListInvoices)

	// cron jobs
	expirationJob := job.NewExpirationJob(subscriptionRepo, userRepo, queueNotifier)

	// queue
	queueW := queue.NewQueue(notify.NewSMTPNotifier(cfg.SMTP))

	c := cron.New()
	c.AddFunc("@daily", expirationJob.CheckExpirations)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSendNotification, queueW.HandleSendNotificationTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
