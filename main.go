package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawcare/config"
	"pawcare/cron"
	"pawcare/database"
	appointmentRepo "pawcare/database/repository/appointment"
	notificationRepo "pawcare/database/repository/notification"
	providerRepo "pawcare/database/repository/provider"
	serviceRepo "pawcare/database/repository/service"
	"pawcare/handlers"
	"pawcare/routes"
	"pawcare/services/notification"
	"pawcare/services/scheduling"
	"pawcare/services/tasks"
	"pawcare/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	provRepo := providerRepo.NewMongoProviderRepo()
	svcRepo := serviceRepo.NewMongoServiceRepo()
	notifRepo := notificationRepo.NewMongoNotificationRepo()

	for name, ensure := range map[string]func() error{
		"appointments": apptRepo.EnsureIndexes,
		"providers":    provRepo.EnsureIndexes,
		"services":     svcRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure %s indexes: %v", name, err)
		}
	}

	// services.
	notificationService := &notification.DefaultNotificationService{
		Repo: notifRepo,
	}

	taskScheduler := tasks.NewScheduler(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	bookingService := &scheduling.DefaultBookingService{
		Appointments: apptRepo,
		Providers:    provRepo,
		Services:     svcRepo,
		Gateway:      scheduling.NewStripeGateway(),
		Notifier:     notificationService,
		Tasks:        taskScheduler,
	}
	lifecycleService := &scheduling.DefaultLifecycleService{
		Appointments: apptRepo,
		Providers:    provRepo,
		Notifier:     notificationService,
	}
	slotResolver := &scheduling.DefaultSlotResolver{
		Providers:    provRepo,
		Services:     svcRepo,
		Appointments: apptRepo,
	}
	availabilityService := &scheduling.DefaultAvailabilityService{
		Services: svcRepo,
	}

	// Background worker for reminders and pending-appointment expiry.
	cron.InitWorker(notificationService, lifecycleService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Appointment:  handlers.NewAppointmentHandler(bookingService, lifecycleService, logger),
		Provider:     handlers.NewProviderHandler(slotResolver, availabilityService),
		Webhook:      handlers.NewWebhookHandler(bookingService),
		Notification: handlers.NewNotificationHandler(notificationService),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
