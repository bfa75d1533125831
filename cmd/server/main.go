package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/trainerdesk/backend/docs"
	"github.com/trainerdesk/backend/internal/audit"
	"github.com/trainerdesk/backend/internal/billing"
	"github.com/trainerdesk/backend/internal/calendar"
	"github.com/trainerdesk/backend/internal/config"
	"github.com/trainerdesk/backend/internal/database"
	"github.com/trainerdesk/backend/internal/handlers"
	"github.com/trainerdesk/backend/internal/jobs"
	"github.com/trainerdesk/backend/internal/logger"
	mW "github.com/trainerdesk/backend/internal/middleware"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/notify"
	"github.com/trainerdesk/backend/internal/repository"
	"github.com/trainerdesk/backend/internal/services"
)

// @title TrainerDesk Billing API
// @version 1.0
// @description Billing, invoicing and prepaid ledger API for personal trainers
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	log := logger.L

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	db := database.InitDatabase(cfg.Database)
	defer db.Close()

	redisClient := database.InitRedis(cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Repositories
	settingsRepo := repository.NewSettingsRepository(db)
	settingsStore := repository.NewCachedSettingsStore(settingsRepo, cfg.Billing.SettingsCacheTTL)
	billingRepo := repository.NewBillingRepository(db, settingsStore)
	invoiceRepo := repository.NewInvoiceRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)

	auditLogger := audit.NewAuditLogger(log)
	locker := jobs.NewLocker(redisClient, cfg.Cron.LockTTL, log)

	// Services
	notifier := services.NewNotificationService(notificationRepo, senders(cfg, log), cfg.Notifications, log)
	payments := services.NewPaymentQRService(redisClient, cfg.Payments)
	billingService := services.NewBillingService(billing.NewAggregator(billingRepo, log), log)
	settingsService := services.NewSettingsService(settingsStore, log)
	ledger := services.NewPrepaidLedger(ledgerRepo, cfg.Ledger, auditLogger, log)
	invoiceService := services.NewInvoiceService(invoiceRepo, billingRepo, settingsRepo, locker, notifier, payments, auditLogger, cfg, log)
	calendarService := services.NewCalendarService(calendarRepo, calendar.NewGoogleProvider(cfg.Google), cfg.Cron.Concurrency, log)
	appointmentService := services.NewAppointmentService(appointmentRepo, calendarService, log)

	// Handlers
	billingHandler := handlers.NewBillingHandler(billingService, settingsService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	prepaidHandler := handlers.NewPrepaidHandler(ledger, billingRepo)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, calendarService)
	cronHandler := handlers.NewCronHandler(invoiceService, notifier, calendarService, locker, log)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Get("/pay/{token}", invoiceHandler.ResolvePayment)

		// Scheduler endpoints
		r.Route("/cron", func(r chi.Router) {
			r.Use(mW.CronAuth(cfg.Cron.Secret))

			r.Post("/monthly-invoices", cronHandler.MonthlyInvoices)
			r.Post("/notifications/retry", cronHandler.RetryNotifications)
			r.Post("/calendar/sync", cronHandler.SyncCalendars)
		})

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware(cfg.JWT.SecretKey))

			// Clients may read their own prepaid history
			r.Get("/clients/{clientId}/prepaid/transactions", prepaidHandler.GetTransactions)

			r.With(mW.RequireRole(models.RoleAdmin)).
				Get("/clients/{clientId}/prepaid/reconcile", prepaidHandler.Reconcile)

			r.Group(func(r chi.Router) {
				r.Use(mW.RequireRole(models.RoleAdmin, models.RoleTrainer))

				r.Get("/billing/preview", billingHandler.Preview)

				r.Get("/trainers/{trainerId}/settings", billingHandler.GetSettings)
				r.Put("/trainers/{trainerId}/settings", billingHandler.UpdateSettings)
				r.Post("/trainers/{trainerId}/calendar/sync", appointmentHandler.SyncCalendar)

				r.Get("/invoices", invoiceHandler.ListInvoices)
				r.Get("/invoices/{invoiceId}", invoiceHandler.GetInvoice)
				r.Post("/invoices/{invoiceId}/payment-link", invoiceHandler.PaymentLink)

				r.Post("/clients/{clientId}/prepaid/credits", prepaidHandler.AddCredit)
				r.Post("/clients/{clientId}/prepaid/debits", prepaidHandler.Consume)

				r.Patch("/appointments/{appointmentId}/status", appointmentHandler.UpdateStatus)
			})
		})
	})

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let in-flight calendar deletions finish
	calendarService.Wait()
	_ = log.Sync()

	log.Info("Server stopped")
}

// senders picks real providers when credentials are configured and falls
// back to logging the message otherwise.
func senders(cfg *config.Config, log *logger.Logger) map[models.NotificationChannel]notify.Sender {
	out := map[models.NotificationChannel]notify.Sender{
		models.ChannelEmail: notify.NewLogSender(string(models.ChannelEmail), log),
		models.ChannelSMS:   notify.NewLogSender(string(models.ChannelSMS), log),
	}
	if cfg.Resend.APIKey != "" {
		out[models.ChannelEmail] = notify.NewResendSender(cfg.Resend.APIKey, cfg.Resend.From, log)
	}
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		out[models.ChannelSMS] = notify.NewTwilioSender(cfg.Twilio, log)
	}
	return out
}
