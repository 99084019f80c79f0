package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/clinops/docintake/constants"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "ok"
	code := http.StatusOK
	if err := s.db.HealthCheck(r.Context(), 2*time.Second); err != nil {
		status = "degraded"
		dbStatus = err.Error()
		code = http.StatusServiceUnavailable
	}
	writeJson(w, code, map[string]any{
		"status":   status,
		"database": dbStatus,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	exts := make([]string, 0, len(constants.AllowedExtensions))
	for ext := range constants.AllowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	writeJson(w, http.StatusOK, map[string]any{
		"name":               "docintake",
		"version":            Version,
		"database":           string(s.db.Dialect()),
		"allowed_extensions": exts,
		"max_upload_mb":      s.cfg.MaxUploadMB,
	})
}
