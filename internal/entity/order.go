package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinops/docintake/constants"
)

// Order represents a clinical order for data transfer between layers.
type Order struct {
	ID          uuid.UUID             `json:"id"`
	PatientID   *uuid.UUID            `json:"patient_id,omitempty"`
	OrderType   string                `json:"order_type"`
	Description *string               `json:"description,omitempty"`
	Status      constants.OrderStatus `json:"status"`
	Documents   []uuid.UUID           `json:"documents"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// NewOrder returns an order in the pending state. OrderType defaults to
// "general" like the upload form does.
func NewOrder(patientID *uuid.UUID, orderType string, description *string) *Order {
	if orderType == "" {
		orderType = "general"
	}
	now := time.Now().UTC()
	return &Order{
		ID:          uuid.New(),
		PatientID:   patientID,
		OrderType:   orderType,
		Description: description,
		Status:      constants.OrderStatusPending,
		Documents:   []uuid.UUID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateStatus transitions the order. Completing stamps CompletedAt.
func (o *Order) UpdateStatus(status string) error {
	if !constants.IsValidOrderStatus(status) {
		return fmt.Errorf("invalid status %q, must be one of %v", status, constants.OrderStatuses())
	}
	o.Status = constants.OrderStatus(status)
	now := time.Now().UTC()
	o.UpdatedAt = now
	if o.Status == constants.OrderStatusCompleted {
		o.CompletedAt = &now
	}
	return nil
}

// AddDocument links a document to the order (idempotent).
func (o *Order) AddDocument(documentID uuid.UUID) {
	for _, id := range o.Documents {
		if id == documentID {
			return
		}
	}
	o.Documents = append(o.Documents, documentID)
	o.UpdatedAt = time.Now().UTC()
}
