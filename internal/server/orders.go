package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinops/docintake/internal/entity"
)

type orderCreateRequest struct {
	PatientID   *uuid.UUID `json:"patient_id"`
	OrderType   string     `json:"order_type"`
	Description *string    `json:"description"`
}

type orderUpdateRequest struct {
	PatientID   *uuid.UUID `json:"patient_id"`
	OrderType   *string    `json:"order_type"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateBody(s.schemas.orderCreate, body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req orderCreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.PatientID != nil {
		if _, err := s.patients.GetByID(r.Context(), *req.PatientID); err != nil {
			writeRepoError(w, err)
			return
		}
	}

	order := entity.NewOrder(req.PatientID, req.OrderType, req.Description)
	if err := s.orders.Create(r.Context(), order); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid order id: %w", err))
		return
	}
	order, err := s.orders.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	skip, limit := paging(r)
	orders, err := s.orders.List(r.Context(), skip, limit)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, listBody(orders))
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid order id: %w", err))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateBody(s.schemas.orderUpdate, body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req orderUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	order, err := s.orders.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if req.PatientID != nil {
		if _, err := s.patients.GetByID(r.Context(), *req.PatientID); err != nil {
			writeRepoError(w, err)
			return
		}
		order.PatientID = req.PatientID
	}
	if req.OrderType != nil {
		order.OrderType = *req.OrderType
	}
	if req.Description != nil {
		order.Description = req.Description
	}
	if req.Status != nil {
		if err := order.UpdateStatus(*req.Status); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	if err := s.orders.Update(r.Context(), order); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid order id: %w", err))
		return
	}
	if err := s.orders.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	data, err := s.exporter.ExportOrdersXLSX(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}
