package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/alarab-orderbot/database"
	"github.com/Ananth-NQI/alarab-orderbot/internal/ai"
	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/handlers"
	"github.com/Ananth-NQI/alarab-orderbot/internal/jobs"
	"github.com/Ananth-NQI/alarab-orderbot/internal/routes"
	"github.com/Ananth-NQI/alarab-orderbot/internal/services"
	"github.com/Ananth-NQI/alarab-orderbot/internal/sheets"
	"github.com/Ananth-NQI/alarab-orderbot/internal/storage"
	"github.com/Ananth-NQI/alarab-orderbot/internal/utils"
)

const version = "1.0.0"

// Sheet timestamps are written in restaurant time
const restaurantTimeZone = "Asia/Karachi"

func main() {
	// Load .env file for local development
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	content, err := loadContent(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to load conversation content")
	}

	// Initialize storage
	var store storage.Store
	if cfg.UseMemoryStore {
		log.Warn("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Info("📦 Connecting to PostgreSQL database...")
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}

		log.Info("🔄 Running database migrations...")
		if err := storage.Migrate(db); err != nil {
			log.WithError(err).Fatal("Failed to migrate database")
		}
		log.Info("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(db)
	}

	// Initialize Twilio service
	var sender services.Sender
	twilioService, err := services.NewTwilioService(cfg.Twilio, log)
	if err != nil {
		log.WithError(err).Warn("⚠️  Twilio service not initialized - responses will only be logged")
		sender = services.LogSender{Log: log}
	} else {
		log.Info("✅ Twilio service initialized")
		sender = twilioService
	}

	transcript := services.NewConversationLog(store, log)
	sender = services.NewRecordingSender(sender, transcript)

	if cfg.OpenAI.APIKey == "" {
		log.Warn("⚠️  OPENAI_API_KEY not set - extraction and replies will fall back")
	}
	oracle := ai.NewClient(cfg.OpenAI)

	mirror := newMirror(cfg, log)

	sessionManager := services.NewSessionManager()
	languages := services.NewLanguageResolver(content.Keywords.Language)
	history := services.NewHistory(services.MaxHistoryTurns)

	engine := services.NewEngine(services.EngineOptions{
		Sessions:   sessionManager,
		Languages:  languages,
		History:    history,
		Store:      store,
		Sender:     sender,
		Extractor:  ai.NewFieldExtractor(oracle, content.Restaurant.Name),
		Classifier: ai.NewConfirmationClassifier(oracle),
		Replier:    ai.NewReplyGenerator(oracle, content.Restaurant),
		Mirror:     mirror,
		Transcript: transcript,
		Content:    content,
		MenuURL:    cfg.MenuDocumentURL,
		Logger:     log,
	})
	orderService := services.NewOrderStatusService(store, sender, mirror, log)

	// Drop abandoned conversations
	cleanupJob := jobs.NewSessionCleanupJob(sessionManager, history, cfg.SessionIdleTTL, time.Minute, log)
	cleanupJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Al Arab Order Bot v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, OPTIONS",
	}))

	integrations := handlers.Integrations{
		Twilio: twilioService != nil,
		OpenAI: cfg.OpenAI.APIKey != "",
		Sheets: cfg.Sheets.Configured(),
	}
	routes.SetupRoutes(app, routes.Handlers{
		Health:     handlers.NewHealthHandler(version, store, sessionManager, integrations),
		WhatsApp:   handlers.NewWhatsAppHandler(engine, log),
		Orders:     handlers.NewOrderHandler(orderService, log),
		Sessions:   handlers.NewSessionsHandler(sessionManager, languages),
		Version:    version,
		TestRoutes: cfg.IsDevelopment(),
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("🛑 Gracefully shutting down...")
		log.Info("⏹️  Stopping session cleanup...")
		cleanupJob.Stop()
		log.Info("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	log.Info("========================================")
	log.Infof("🚀 %s order bot starting on port %s", content.Restaurant.Name, cfg.Port)
	log.Infof("📊 Storage: %s", storageType(cfg))
	log.Infof("🌍 Environment: %s", cfg.Environment)
	log.Infof("📱 WhatsApp: %s", configured(integrations.Twilio))
	log.Infof("🤖 OpenAI model: %s", cfg.OpenAI.Model)
	log.Infof("📄 Sheets mirror: %s", configured(integrations.Sheets))
	log.Info("========================================")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func loadContent(cfg *config.Config) (*config.Content, error) {
	if cfg.ContentFile != "" {
		return config.LoadContent(cfg.ContentFile)
	}
	return config.DefaultContent()
}

func newMirror(cfg *config.Config, log *logrus.Logger) services.Mirror {
	if !cfg.Sheets.Configured() {
		log.Warn("⚠️  Google Sheets not configured - orders will not be mirrored")
		return sheets.NoopMirror{Log: log}
	}

	loc, err := time.LoadLocation(restaurantTimeZone)
	if err != nil {
		loc = time.FixedZone("PKT", 5*60*60)
	}

	// The service keeps this context for token refreshes
	mirror, err := sheets.NewMirror(context.Background(), cfg.Sheets.SheetID, loc, log, sheets.ClientOptions(cfg.Sheets)...)
	if err != nil {
		log.WithError(err).Error("Failed to initialize Google Sheets - orders will not be mirrored")
		return sheets.NoopMirror{Log: log}
	}
	log.Info("✅ Google Sheets mirror initialized")
	return mirror
}

func storageType(cfg *config.Config) string {
	if cfg.UseMemoryStore {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func configured(ok bool) string {
	if ok {
		return "Configured"
	}
	return "Not configured"
}
