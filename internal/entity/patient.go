package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient represents a patient record for data transfer between layers.
// Identity fields usually originate from document extraction; ExtractedFrom
// keeps the source filename when they do.
type Patient struct {
	ID            uuid.UUID `json:"id"`
	FirstName     *string   `json:"first_name,omitempty"`
	LastName      *string   `json:"last_name,omitempty"`
	DateOfBirth   *string   `json:"date_of_birth,omitempty"` // MM/DD/YYYY
	ExtractedFrom *string   `json:"extracted_from,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FullName returns the patient's display name.
func (p *Patient) FullName() string {
	var parts []string
	if p.FirstName != nil && *p.FirstName != "" {
		parts = append(parts, *p.FirstName)
	}
	if p.LastName != nil && *p.LastName != "" {
		parts = append(parts, *p.LastName)
	}
	if len(parts) == 0 {
		return "Unknown Patient"
	}
	return strings.Join(parts, " ")
}
