package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Khalick/student-portal-api/internal/config"
	"github.com/Khalick/student-portal-api/internal/database"
	"github.com/Khalick/student-portal-api/internal/handler"
	"github.com/Khalick/student-portal-api/internal/middleware"
	"github.com/Khalick/student-portal-api/internal/models"
	"github.com/Khalick/student-portal-api/internal/repository"
	"github.com/Khalick/student-portal-api/internal/router"
	"github.com/Khalick/student-portal-api/internal/service"
	"github.com/Khalick/student-portal-api/internal/storage"
	cloud "github.com/Khalick/student-portal-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Student{},
		&models.FeeRecord{},
		&models.Unit{},
		&models.AllocatedUnit{},
		&models.RegisteredUnit{},
		&models.StudentDocument{},
		&models.ExamCard{},
		&models.FinanceRecord{},
		&models.ResultRecord{},
		&models.Timetable{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var remote storage.RemoteStore
	if cfg.CloudinaryConfigured() {
		cloudStore, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		remote = cloudStore
	} else {
		logger.Warn().Msg("cloudinary not configured, uploads will use local storage only")
	}

	local, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL, logger)
	if err != nil {
		log.Fatalf("failed to initialise local storage: %v", err)
	}

	blobs, err := storage.NewAdapter(remote, local, logger)
	if err != nil {
		log.Fatalf("failed to initialise storage adapter: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	legacyRepo := repository.NewLegacyDocumentRepository(db)

	studentService := service.NewStudentService(studentRepo, validate, logger)
	allocationService := service.NewAllocationService(studentService, allocationRepo, unitRepo, validate, logger)
	documentService := service.NewDocumentService(blobs, documentRepo, studentService, cfg.MaxUploadMB, logger)
	legacyService := service.NewLegacyDocumentService(documentService, studentService, legacyRepo, cfg.MinUploadBytes, logger)

	studentHandler := handler.NewStudentHandler(studentService, logger)
	allocationHandler := handler.NewAllocationHandler(allocationService, logger)
	documentHandler := handler.NewDocumentHandler(documentService, logger)
	legacyHandler := handler.NewLegacyDocumentHandler(legacyService, documentHandler, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler:        studentHandler,
		AllocationHandler:     allocationHandler,
		DocumentHandler:       documentHandler,
		LegacyDocumentHandler: legacyHandler,
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
		AdminMiddleware:       middleware.RequireRole("admin"),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
