package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinops/docintake/internal/entity"
)

type patientRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateBody(s.schemas.patient, body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req patientRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	now := time.Now().UTC()
	patient := &entity.Patient{
		ID:          uuid.New(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.patients.Create(r.Context(), patient); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusCreated, patient)
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid patient id: %w", err))
		return
	}
	patient, err := s.patients.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, patient)
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	skip, limit := paging(r)
	patients, err := s.patients.List(r.Context(), skip, limit)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, listBody(patients))
}

// handleSearchPatients looks one patient up by exact name, case-insensitively.
func (s *Server) handleSearchPatients(w http.ResponseWriter, r *http.Request) {
	first := r.URL.Query().Get("first_name")
	last := r.URL.Query().Get("last_name")
	if first == "" || last == "" {
		writeError(w, http.StatusBadRequest, errors.New("first_name and last_name are required"))
		return
	}
	patient, err := s.patients.FindByName(r.Context(), first, last)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, patient)
}

func (s *Server) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid patient id: %w", err))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateBody(s.schemas.patient, body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req patientRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	patient, err := s.patients.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if req.FirstName != nil {
		patient.FirstName = req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = req.LastName
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}

	if err := s.patients.Update(r.Context(), patient); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJson(w, http.StatusOK, patient)
}
