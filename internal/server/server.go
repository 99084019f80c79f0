// Package server exposes the document intake REST API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clinops/docintake/internal/async"
	"github.com/clinops/docintake/internal/common"
	"github.com/clinops/docintake/internal/export"
	"github.com/clinops/docintake/internal/repository"
	"github.com/clinops/docintake/internal/services"
)

type Server struct {
	cfg       common.ServerConfig
	intake    *services.IntakeService
	documents repository.DocumentRepository
	orders    repository.OrderRepository
	patients  repository.PatientRepository
	activity  repository.ActivityRepository
	exporter  *export.Service
	queue     async.Queue
	db        *repository.DB
	schemas   *schemaSet
	logger    *slog.Logger
}

func New(
	cfg common.ServerConfig,
	intake *services.IntakeService,
	documents repository.DocumentRepository,
	orders repository.OrderRepository,
	patients repository.PatientRepository,
	activity repository.ActivityRepository,
	exporter *export.Service,
	queue async.Queue,
	db *repository.DB,
	logger *slog.Logger,
) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:       cfg,
		intake:    intake,
		documents: documents,
		orders:    orders,
		patients:  patients,
		activity:  activity,
		exporter:  exporter,
		queue:     queue,
		db:        db,
		schemas:   schemas,
		logger:    logger,
	}, nil
}

// Router builds the chi router with all routes attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)

	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", s.handleUploadDocument)
			r.Post("/batch", s.handleBatchUpload)
			r.Post("/test", s.handleTestExtraction)
			r.Get("/", s.handleListDocuments)
			r.Get("/{id}", s.handleGetDocument)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", s.handleCreateOrder)
			r.Get("/", s.handleListOrders)
			r.Get("/export", s.handleExportOrders)
			r.Get("/{id}", s.handleGetOrder)
			r.Put("/{id}", s.handleUpdateOrder)
			r.Delete("/{id}", s.handleDeleteOrder)
		})
		r.Route("/patients", func(r chi.Router) {
			r.Post("/", s.handleCreatePatient)
			r.Get("/", s.handleListPatients)
			r.Get("/search", s.handleSearchPatients)
			r.Get("/{id}", s.handleGetPatient)
			r.Put("/{id}", s.handleUpdatePatient)
		})
		r.Get("/activity", s.handleListActivity)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) maxUploadBytes() int64 {
	return s.cfg.MaxUploadMB << 20
}
