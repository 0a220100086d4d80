package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vizhaa-backend/config"
	"vizhaa-backend/database"
	"vizhaa-backend/httpServices/twofactor"
	"vizhaa-backend/logger"
	"vizhaa-backend/metrics"
	"vizhaa-backend/middleware"
	"vizhaa-backend/routes"
	bookingService "vizhaa-backend/services/booking"
	documentService "vizhaa-backend/services/document"
	eventService "vizhaa-backend/services/event"
	otpService "vizhaa-backend/services/otp"
	"vizhaa-backend/services/storage"
	"vizhaa-backend/services/throttle"
	"vizhaa-backend/services/token"
	userService "vizhaa-backend/services/user"
	"vizhaa-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warning(fmt.Sprintf("No .env file loaded: %v", err))
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration: " + err.Error())
	}
	logger.SetLevel(os.Getenv("LOG_LEVEL"))

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cipher, err := utils.NewCipher(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal("Invalid ENCRYPTION_KEY: " + err.Error())
	}

	var provider twofactor.Provider
	if cfg.OTPProvider == "fake" {
		logger.Warning("Using the fake OTP provider; codes are returned in API responses")
		provider = twofactor.NewFake()
	} else {
		provider = twofactor.NewClient(cfg.OTPBaseURL, cfg.OTPAPIKey, cfg.OTPTimeout)
	}

	var limiter throttle.Limiter = throttle.NewMemoryLimiter(cfg.OTPSendLimit, cfg.OTPSendWindow)
	if cfg.RedisAddr != "" {
		client, err := throttle.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Error("Redis unavailable, falling back to in-memory OTP throttle", err)
		} else {
			defer client.Close()
			limiter = throttle.NewRedisLimiter(client, "vizhaa:otp:", cfg.OTPSendLimit, cfg.OTPSendWindow)
		}
	}

	var store storage.Store = storage.NewDiskStore(cfg.UploadDir)
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.S3Bucket)
		if err != nil {
			logger.Fatal("Failed to configure S3 storage: " + err.Error())
		}
		store = s3Store
	}

	var reader documentService.Reader
	if cfg.GeminiAPIKey != "" {
		gemini, err := documentService.NewGeminiReader(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Document reader disabled", err)
		} else {
			reader = gemini
		}
	}

	otp := otpService.NewOTPService(db, provider, limiter, cfg.OTPTimeout)
	documents := documentService.NewService(db, store, reader)
	services := routes.Services{
		DB:        db,
		Env:       cfg.AppEnv,
		Users:     userService.NewService(db, cipher),
		OTP:       otp,
		Tokens:    token.NewService(cfg.JWTSecret, cfg.JWTExpiresIn),
		Events:    eventService.NewService(db),
		Bookings:  bookingService.NewService(db),
		Documents: documents,
	}

	metrics.MustRegister()
	asyncLogger := logger.NewAsyncLogger(db)
	asyncLogger.Start()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go otp.RunSweeper(sweepCtx, cfg.OTPSweepEvery)

	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768, // 32KB read buffer
		WriteBufferSize: 32768, // 32KB write buffer
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		BodyLimit:       10 * 1024 * 1024,
		ErrorHandler:    middleware.ErrorHandler(cfg.IsDevelopment()),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.Metrics())
	app.Use(middleware.RequestLog(asyncLogger))

	routes.SetupRoutes(app, services)

	go func() {
		logger.Success("Server is running on " + cfg.Addr() + " (" + cfg.AppEnv + ")")
		if err := app.Listen(cfg.Addr()); err != nil {
			logger.Error("Server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
	stopSweep()
	documents.Wait()
	asyncLogger.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Success("Server stopped")
}
