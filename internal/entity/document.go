package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinops/docintake/constants"
)

// Document represents an uploaded clinical document and its extraction
// results for data transfer between layers.
type Document struct {
	ID         uuid.UUID                `json:"id"`
	Filename   string                   `json:"filename"`
	SourcePath string                   `json:"source_path"`
	FileExt    string                   `json:"file_ext"`
	Format     constants.Format         `json:"format"`
	OrderID    *uuid.UUID               `json:"order_id,omitempty"`
	Status     constants.DocumentStatus `json:"status"`
	FileSize   int64                    `json:"file_size"`

	ExtractedText    *string            `json:"extracted_text,omitempty"`
	PatientData      map[string]string  `json:"patient_data,omitempty"`
	ConfidenceScores map[string]float32 `json:"confidence_scores,omitempty"`

	ProcessingTime *float64   `json:"processing_time,omitempty"` // seconds
	ErrorMessage   *string    `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
}

// NewDocument returns a document in the uploaded state.
func NewDocument(filename, sourcePath, fileExt string, orderID *uuid.UUID) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:         uuid.New(),
		Filename:   filename,
		SourcePath: sourcePath,
		FileExt:    constants.NormalizeExt(fileExt),
		Format:     constants.MapExtToFormat(fileExt),
		OrderID:    orderID,
		Status:     constants.DocStatusUploaded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetExtracted records a successful extraction run.
func (d *Document) SetExtracted(text string, patientData map[string]string, scores map[string]float32, seconds float64) {
	now := time.Now().UTC()
	d.ExtractedText = &text
	d.PatientData = patientData
	d.ConfidenceScores = scores
	d.ProcessingTime = &seconds
	d.Status = constants.DocStatusCompleted
	d.ProcessedAt = &now
	d.UpdatedAt = now
}

// SetFailed records a failed extraction run.
func (d *Document) SetFailed(message string) {
	now := time.Now().UTC()
	d.ErrorMessage = &message
	d.Status = constants.DocStatusFailed
	d.UpdatedAt = now
}
