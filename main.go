package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"elite-coaching/config"
	"elite-coaching/consumer"
	"elite-coaching/gateways"
	"elite-coaching/handlers"
	"elite-coaching/middleware"
	"elite-coaching/models"
	"elite-coaching/monitoring"
	"elite-coaching/notify"
	"elite-coaching/utils"
)

func main() {
	logger := log.New(os.Stdout, "COACHING: ", log.LstdFlags|log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		logger.Printf("No .env file loaded: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.Sentry.DSN != "" {
		if err := utils.InitSentry(cfg.Sentry.DSN); err != nil {
			logger.Printf("Failed to initialize Sentry: %v", err)
		}
	}

	monitoring.Init()

	repo, err := models.NewPostgresRepository(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to initialize repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Printf("Error closing database connection: %v", err)
		}
	}()

	// Redis with startup retries
	var redisClient utils.RedisClient
	maxRetries := 5
	retryDelay := 3 * time.Second

	for i := 0; i < maxRetries; i++ {
		redisClient, err = utils.NewRedisClient(cfg.Redis)
		if err == nil {
			break
		}
		logger.Printf("Attempt %d: Failed to connect to Redis: %v", i+1, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		logger.Fatalf("Failed to initialize Redis after %d attempts: %v", maxRetries, err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Printf("Error closing Redis connection: %v", err)
		}
	}()

	var kafkaProducer utils.KafkaProducer
	kafkaProducer, err = utils.NewKafkaProducer(cfg.Kafka)
	if err != nil {
		logger.Printf("Kafka unavailable, CRM events disabled: %v", err)
		kafkaProducer = nil
	} else {
		defer kafkaProducer.Close()
	}

	var searchClient utils.SearchClient
	if cfg.Elastic.URL != "" {
		searchClient, err = utils.NewElasticsearchClient(cfg.Elastic)
		if err != nil {
			logger.Printf("Elasticsearch unavailable, lead search disabled: %v", err)
			searchClient = nil
		}
	}

	var notifier notify.Notifier
	if cfg.EmailEnabled() {
		notifier = notify.NewEmailService(cfg.Email, cfg.Storage.PublicBaseURL)
	} else {
		logger.Printf("RESEND_API_KEY not set; transactional emails disabled")
	}

	var cardGateway gateways.CardGateway
	if cfg.StripeEnabled() {
		cardGateway = gateways.NewStripeGateway(cfg.Stripe.SecretKey)
	}

	var regionalGateway gateways.RegionalGateway
	if cfg.ChargilyEnabled() {
		regionalGateway = gateways.NewChargilyClient(cfg.Chargily.APIKey)
	}

	var walletGateway gateways.WalletGateway
	if cfg.PayPalEnabled() {
		paypalClient, err := gateways.NewPayPalClient(
			cfg.PayPal.ClientID, cfg.PayPal.ClientSecret, cfg.PayPal.Mode, cfg.PayPal.WebhookID,
		)
		if err != nil {
			logger.Printf("PayPal unavailable, wallet checkout disabled: %v", err)
		} else {
			walletGateway = paypalClient
		}
	}

	checkoutHandler := handlers.NewCheckoutHandler(cardGateway, regionalGateway, walletGateway, cfg.SiteURL)
	webhookHandler := handlers.NewWebhookHandler(repo, notifier, walletGateway, kafkaProducer, cfg.Chargily.WebhookSecret)
	leadHandler := handlers.NewLeadHandler(repo, notifier, kafkaProducer)
	contactHandler := handlers.NewContactHandler(repo, notifier)
	adminHandler := handlers.NewAdminHandler(repo, redisClient, searchClient, cfg.Admin.Secret)

	if kafkaProducer != nil {
		crmConsumer := consumer.NewCRMConsumer(cfg.Kafka, redisClient, searchClient)
		crmConsumer.Start(context.Background())
		defer crmConsumer.Stop()
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SentryMiddleware(), middleware.ErrorHandler(), middleware.PrometheusMetrics())

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := redisClient.SetToCache(ctx, "healthcheck", "ping", 10*time.Second); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "degraded",
					"details": gin.H{"redis": "unavailable"},
					"error":   err.Error(),
				})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"details": gin.H{"redis": "available"},
			})
		})

		api.POST("/checkout/stripe", checkoutHandler.CreateStripeCheckout)
		api.POST("/checkout/chargily", checkoutHandler.CreateChargilyCheckout)
		api.POST("/checkout/paypal", checkoutHandler.CreatePayPalOrder)

		api.POST("/webhooks/chargily", webhookHandler.HandleChargilyWebhook)
		api.POST("/webhooks/paypal", webhookHandler.HandlePayPalWebhook)

		api.POST("/leads", leadHandler.CreateLead)
		api.POST("/contact", contactHandler.SubmitContact)

		admin := api.Group("/admin")
		{
			admin.GET("/leads", adminHandler.ListLeads)
			admin.GET("/leads/search", adminHandler.SearchLeads)
			admin.GET("/payments", adminHandler.ListPayments)
			admin.GET("/contacts", adminHandler.ListContactMessages)
		}
	}

	router.GET("/metrics", gin.WrapH(monitoring.Handler()))

	logger.Printf("Server is running on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
