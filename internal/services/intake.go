package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/clinops/docintake/constants"
	"github.com/clinops/docintake/internal/common"
	"github.com/clinops/docintake/internal/entity"
	"github.com/clinops/docintake/internal/pipeline"
	"github.com/clinops/docintake/internal/repository"
)

// IntakeService owns the document lifecycle: accept an upload, run the
// extraction pipeline over it, persist the results and upsert the patient the
// document names.
type IntakeService struct {
	documents repository.DocumentRepository
	patients  repository.PatientRepository
	orders    repository.OrderRepository
	processor *pipeline.Processor
	uploadDir string
	logger    *slog.Logger
}

func NewIntakeService(
	documents repository.DocumentRepository,
	patients repository.PatientRepository,
	orders repository.OrderRepository,
	processor *pipeline.Processor,
	uploadDir string,
	logger *slog.Logger,
) *IntakeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntakeService{
		documents: documents,
		patients:  patients,
		orders:    orders,
		processor: processor,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// SaveUpload stores the uploaded bytes under the upload directory and creates
// the document row in the uploaded state. The stored name is the document ID,
// never the client-supplied filename.
func (s *IntakeService) SaveUpload(ctx context.Context, filename string, src io.Reader, orderID *uuid.UUID) (*entity.Document, error) {
	v := common.NewValidator()
	v.Field("filename", filename, common.Required, common.MaxLength(255))
	if v.HasErrors() {
		return nil, common.NewAppError("INVALID_INPUT", v.ErrorMessage(), common.ErrInvalidInput)
	}

	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, common.NewAppError("INVALID_INPUT",
			fmt.Sprintf("file type %q is not allowed", ext), common.ErrInvalidInput)
	}
	if orderID != nil {
		if _, err := s.orders.GetByID(ctx, *orderID); err != nil {
			return nil, common.NewAppError("ORDER_NOT_FOUND", "order not found", err)
		}
	}

	doc := entity.NewDocument(filename, "", ext, orderID)
	doc.SourcePath = filepath.Join(s.uploadDir, doc.ID.String()+"."+ext)

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	dst, err := os.Create(doc.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(doc.SourcePath)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	doc.FileSize = n

	if err := s.documents.Create(ctx, doc); err != nil {
		_ = os.Remove(doc.SourcePath)
		return nil, err
	}
	s.logger.Info("document uploaded",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"format", doc.Format,
		"size_bytes", doc.FileSize,
	)
	return doc, nil
}

// ExtractOnly runs the extraction pipeline over an upload without creating a
// document row or touching patients. The bytes live in a temp file only for
// the duration of the call.
func (s *IntakeService) ExtractOnly(ctx context.Context, filename string, src io.Reader) (*pipeline.Result, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, common.NewAppError("INVALID_INPUT",
			fmt.Sprintf("file type %q is not allowed", ext), common.ErrInvalidInput)
	}

	tmp, err := os.CreateTemp("", "di-preview-*."+ext)
	if err != nil {
		return nil, fmt.Errorf("create preview file: %w", err)
	}
	defer os.Remove(tmp.Name())
	_, err = io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write preview file: %w", err)
	}

	return s.processor.Process(ctx, pipeline.Request{Path: tmp.Name(), Format: constants.MapExtToFormat(ext)})
}

// ProcessDocument runs the extraction pipeline for a stored document and
// persists the outcome. The returned document reflects the final state even
// when processing failed.
func (s *IntakeService) ProcessDocument(ctx context.Context, documentID uuid.UUID) (*entity.Document, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	doc.Status = constants.DocStatusProcessing
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}

	res, err := s.processor.Process(ctx, pipeline.Request{Path: doc.SourcePath, Format: doc.Format})
	if err != nil {
		doc.SetFailed(err.Error())
		if uerr := s.documents.Update(ctx, doc); uerr != nil {
			s.logger.Error("failed to persist failure state", "document_id", doc.ID, "error", uerr)
		}
		return doc, err
	}

	patientData := make(map[string]string, len(res.Fields))
	scores := make(map[string]float32, len(res.Fields))
	for _, f := range res.Fields {
		patientData[string(f.Name)] = f.Value
		scores[string(f.Name)] = f.Confidence
	}

	doc.SetExtracted(res.Text, patientData, scores, res.Duration.Seconds())
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Info("document processed",
		"document_id", doc.ID,
		"fields", len(patientData),
		"pages", res.Pages,
		"request_id", common.RequestIDFromContext(ctx),
	)

	if patient := s.upsertPatient(ctx, doc); patient != nil {
		s.linkOrderPatient(ctx, doc, patient)
	}
	return doc, nil
}

// upsertPatient creates or enriches the patient a document identifies. Both
// name fields are required before a record is touched; partial identities stay
// on the document only.
func (s *IntakeService) upsertPatient(ctx context.Context, doc *entity.Document) *entity.Patient {
	first := doc.PatientData["first_name"]
	last := doc.PatientData["last_name"]
	if first == "" || last == "" {
		return nil
	}
	dob := doc.PatientData["date_of_birth"]

	patient, err := s.patients.FindByName(ctx, first, last)
	if err == nil {
		if dob != "" && (patient.DateOfBirth == nil || *patient.DateOfBirth == "") {
			patient.DateOfBirth = &dob
			if uerr := s.patients.Update(ctx, patient); uerr != nil {
				s.logger.Error("failed to enrich patient", "patient_id", patient.ID, "error", uerr)
			}
		}
		return patient
	}
	if !common.IsNotFound(err) {
		s.logger.Error("patient lookup failed", "error", err)
		return nil
	}

	patient = &entity.Patient{
		ID:            uuid.New(),
		FirstName:     &first,
		LastName:      &last,
		ExtractedFrom: &doc.Filename,
		CreatedAt:     doc.UpdatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	if dob != "" {
		patient.DateOfBirth = &dob
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		s.logger.Error("failed to create patient", "error", err)
		return nil
	}
	s.logger.Info("patient created from document",
		"patient_id", patient.ID,
		"document_id", doc.ID,
		"name", strings.TrimSpace(first+" "+last),
	)
	return patient
}

func (s *IntakeService) linkOrderPatient(ctx context.Context, doc *entity.Document, patient *entity.Patient) {
	if doc.OrderID == nil {
		return
	}
	order, err := s.orders.GetByID(ctx, *doc.OrderID)
	if err != nil {
		s.logger.Error("failed to load order for patient link", "order_id", *doc.OrderID, "error", err)
		return
	}
	if order.PatientID != nil {
		return
	}
	order.PatientID = &patient.ID
	if err := s.orders.Update(ctx, order); err != nil {
		s.logger.Error("failed to link order patient", "order_id", order.ID, "error", err)
	}
}
