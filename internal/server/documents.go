package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/clinops/docintake/internal/async"
	"github.com/clinops/docintake/internal/common"
	"github.com/clinops/docintake/internal/entity"
	"github.com/clinops/docintake/internal/pipeline"
)

type uploadResponse struct {
	Document *entity.Document `json:"document"`
}

// handleUploadDocument accepts one multipart file, stores it and runs the
// extraction pipeline inline. The response carries the full document state
// including extracted fields; processing failures come back as 422 with the
// document in the failed state.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file part: %w", err))
		return
	}
	defer file.Close()

	orderID, err := optionalUUID(r.FormValue("order_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	doc, err := s.intake.SaveUpload(r.Context(), header.Filename, file, orderID)
	if err != nil {
		writeRepoError(w, err)
		return
	}

	doc, err = s.intake.ProcessDocument(r.Context(), doc.ID)
	if err != nil {
		if pipeline.IsUnsupportedFormat(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		// doc carries the failed state when processing broke down
		if doc != nil {
			writeJson(w, http.StatusUnprocessableEntity, uploadResponse{Document: doc})
			return
		}
		writeRepoError(w, err)
		return
	}

	writeJson(w, http.StatusCreated, uploadResponse{Document: doc})
}

// handleBatchUpload accepts several multipart files, stores them all and fans
// processing out over the worker pool. Clients poll the documents for results.
func (s *Server) handleBatchUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("no files provided"))
		return
	}

	orderID, err := optionalUUID(r.FormValue("order_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	type batchItem struct {
		Filename   string `json:"filename"`
		DocumentID string `json:"document_id,omitempty"`
		Error      string `json:"error,omitempty"`
	}
	items := make([]batchItem, 0, len(r.MultipartForm.File["files"]))

	traceID := middleware.GetReqID(r.Context())
	for _, header := range r.MultipartForm.File["files"] {
		item := batchItem{Filename: header.Filename}
		f, err := header.Open()
		if err != nil {
			item.Error = err.Error()
			items = append(items, item)
			continue
		}
		doc, err := s.intake.SaveUpload(r.Context(), header.Filename, f, orderID)
		_ = f.Close()
		if err != nil {
			item.Error = err.Error()
			items = append(items, item)
			continue
		}
		item.DocumentID = doc.ID.String()
		if err := s.queue.Enqueue(r.Context(), async.Job{
			DocumentID:  doc.ID,
			SubmittedAt: time.Now().UTC(),
			TraceID:     traceID,
		}); err != nil {
			item.Error = err.Error()
		}
		items = append(items, item)
	}

	writeJson(w, http.StatusAccepted, map[string]any{"accepted": items})
}

// handleTestExtraction runs the pipeline over an upload and returns the result
// without persisting anything. Useful for checking what a document would yield
// before committing it.
func (s *Server) handleTestExtraction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file part: %w", err))
		return
	}
	defer file.Close()

	res, err := s.intake.ExtractOnly(r.Context(), header.Filename, file)
	if err != nil {
		if pipeline.IsUnsupportedFormat(err) || errors.Is(err, common.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if pipeline.IsAcquisitionError(err) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, res)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid document id: %w", err))
		return
	}
	doc, err := s.documents.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("order_id"); raw != "" {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid order id: %w", err))
			return
		}
		docs, err := s.documents.ListByOrder(r.Context(), orderID)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJson(w, http.StatusOK, listBody(docs))
		return
	}

	skip, limit := paging(r)
	docs, err := s.documents.List(r.Context(), skip, limit)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, listBody(docs))
}

func listBody[T any](items []T) map[string]any {
	if items == nil {
		items = []T{}
	}
	return map[string]any{"items": items, "count": len(items)}
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, common.NewAppError("INVALID_INPUT", "invalid order_id", common.ErrInvalidInput)
	}
	return &id, nil
}
