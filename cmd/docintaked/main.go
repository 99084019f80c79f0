package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clinops/docintake/internal/async"
	"github.com/clinops/docintake/internal/common"
	"github.com/clinops/docintake/internal/export"
	"github.com/clinops/docintake/internal/extract"
	"github.com/clinops/docintake/internal/ocr"
	"github.com/clinops/docintake/internal/pipeline"
	"github.com/clinops/docintake/internal/repository"
	"github.com/clinops/docintake/internal/server"
	"github.com/clinops/docintake/internal/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := openDatabase(ctx, cfg, logger)
	defer db.Close()

	activityRepo := repository.NewActivityRepository(db, logger)
	patientRepo := repository.NewPatientRepository(db, activityRepo, logger)
	orderRepo := repository.NewOrderRepository(db, activityRepo, logger)
	documentRepo := repository.NewDocumentRepository(db, activityRepo, logger)

	ocrx := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
	processor := pipeline.NewProcessor(
		pipeline.Config{AcquireTimeout: cfg.Pipeline.AcquireTimeout},
		extract.NewOCRAdapter(ocrx),
		extract.RuleFieldExtractor{},
		logger,
	)

	intake := services.NewIntakeService(documentRepo, patientRepo, orderRepo, processor, cfg.Server.UploadDir, logger)

	pool := async.NewPool(cfg.Pipeline.BatchWorkers, cfg.Pipeline.BatchWorkers*4,
		cfg.Pipeline.AcquireTimeout+30*time.Second,
		func(jobCtx context.Context, job async.Job) error {
			if job.TraceID != "" {
				jobCtx = common.WithRequestID(jobCtx, job.TraceID)
			}
			_, err := intake.ProcessDocument(jobCtx, job.DocumentID)
			return err
		}, logger)

	exporter := export.NewService(orderRepo, patientRepo, logger)

	srv, err := server.New(cfg.Server, intake, documentRepo, orderRepo, patientRepo, activityRepo, exporter, pool, db, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr, "database", string(db.Dialect()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	pool.Shutdown(shutdownCtx)
	logger.Info("shutdown complete")
}

// openDatabase connects to Postgres when DB_URL is set and reachable, and
// falls back to the in-memory database otherwise.
func openDatabase(ctx context.Context, cfg *common.Config, logger *slog.Logger) *repository.DB {
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err == nil {
			err = db.HealthCheck(ctx, cfg.Database.DialTimeout)
			if err == nil {
				if berr := db.Bootstrap(ctx); berr != nil {
					logger.Error("schema bootstrap failed", "error", berr)
					os.Exit(1)
				}
				return db
			}
			db.Close()
		}
		logger.Warn("database unreachable, using in-memory fallback", "error", err)
	} else {
		logger.Warn("DB_URL not set, using in-memory fallback")
	}

	db, err := repository.OpenMemory(ctx, logger)
	if err != nil {
		logger.Error("failed to open in-memory database", "error", err)
		os.Exit(1)
	}
	return db
}
