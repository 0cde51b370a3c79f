package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"packslip/internal/config"
	"packslip/internal/dispatch"
	"packslip/internal/dispatch/asynqueue"
	"packslip/internal/handler"
	"packslip/internal/identifier"
	"packslip/internal/ocr"
	"packslip/internal/ocr/tesseract"
	"packslip/internal/parser"
	"packslip/internal/pipeline"
	"packslip/internal/port"
	"packslip/internal/repository/postgres"
	"packslip/internal/router"
	"packslip/internal/service"
	s3storage "packslip/internal/storage/s3"
	"packslip/internal/textlayer"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// A missing .env is fine outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: reading .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	catalogRepo := postgres.NewCatalogRepo(db)
	queueRepo := postgres.NewOrderQueueRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize parsing
	profiles := parser.DefaultProfiles()
	if cfg.Parser.ProfilesPath != "" {
		profiles, err = parser.LoadProfiles(cfg.Parser.ProfilesPath)
		if err != nil {
			return fmt.Errorf("failed to load platform profiles: %w", err)
		}
		log.Printf("Loaded platform profiles from %s", cfg.Parser.ProfilesPath)
	}
	pipe := pipeline.New(textlayer.NewMux(), newRecognizer(&cfg.OCR), profiles, pipelineConfig(&cfg.Parser))

	// Initialize queue dispatch
	var dispatcher port.ParseDispatcher = dispatch.Poll{}
	var asynqDispatcher *asynqueue.Dispatcher
	if cfg.Queue.Driver == config.QueueDriverAsynq {
		asynqDispatcher, err = asynqueue.NewDispatcher(cfg.Queue.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() { _ = asynqDispatcher.Close() }()
		dispatcher = asynqDispatcher
	}

	// Initialize services
	resolver := identifier.NewResolver(catalogRepo)
	ingestionSvc := service.NewIngestionService(queueRepo, profiles)
	docSvc := service.NewDocumentService(docRepo, s3Client, pipe, resolver, ingestionSvc, dispatcher, &cfg.S3)
	orderSvc := service.NewOrderQueueService(queueRepo)
	catalogSvc := service.NewCatalogService(catalogRepo, queueRepo)
	statsSvc := service.NewStatsService(statsRepo, profiles)

	// Setup router
	r := router.Setup(router.Handlers{
		Document: handler.NewDocumentHandler(docSvc),
		Order:    handler.NewOrderHandler(orderSvc),
		Catalog:  handler.NewCatalogHandler(catalogSvc),
		Stats:    handler.NewStatsHandler(statsSvc),
		Health:   handler.NewHealthHandler(db),
	}, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the parse consumer
	workerDone := make(chan struct{})
	switch cfg.Queue.Driver {
	case config.QueueDriverAsynq:
		taskServer, err := asynqueue.NewServer(asynqueue.ServerConfig{
			RedisURL:    cfg.Queue.RedisURL,
			Concurrency: cfg.Queue.Concurrency,
			MaxRetries:  cfg.Queue.MaxRetries,
		}, docRepo, docSvc)
		if err != nil {
			return fmt.Errorf("failed to initialize task server: %w", err)
		}
		go func() {
			if err := taskServer.Run(); err != nil {
				log.Printf("ERROR: task server stopped: %v", err)
			}
		}()
		go func() {
			defer close(workerDone)
			<-ctx.Done()
			taskServer.Shutdown()
		}()
	default:
		worker := service.NewParseQueueWorker(docRepo, docSvc, service.ParseQueueConfig{
			PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
			MaxRetries:   cfg.Queue.MaxRetries,
			Concurrency:  cfg.Queue.Concurrency,
		})
		go func() {
			defer close(workerDone)
			worker.Start(ctx)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (queue driver: %s)", cfg.Server.Port, cfg.Queue.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stop()
			<-workerDone
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Printf("Shutdown signal received, draining")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: http shutdown: %v", err)
	}
	<-workerDone
	log.Printf("Shutdown complete")

	return nil
}

// newRecognizer builds the OCR fallback chain. It returns nil when OCR is off.
func newRecognizer(cfg *config.OCRConfig) port.Recognizer {
	switch cfg.Provider {
	case "tesseract":
		return ocr.NewFallbackRecognizer(
			[]port.Recognizer{tesseract.New(cfg.Languages, cfg.Cooldown)},
			[]string{"tesseract"},
		)
	case "", "none":
		return nil
	default:
		log.Printf("WARN: unknown OCR provider %q, OCR disabled", cfg.Provider)
		return nil
	}
}

func pipelineConfig(cfg *config.ParserConfig) pipeline.Config {
	pc := pipeline.DefaultConfig()
	if cfg.PageWorkers > 0 {
		pc.PageWorkers = cfg.PageWorkers
	}
	pc.YTolerance = cfg.YTolerance
	pc.EdgeMargin = cfg.EdgeMargin
	pc.Tolerances = parser.Tolerances{
		RowEpsilon:    cfg.RowEpsilon,
		WrapTolerance: cfg.WrapTolerance,
		BoundaryPad:   cfg.BoundaryPad,
	}
	return pc
}
