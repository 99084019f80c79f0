package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityLog is one audit-trail row. Details carries action-specific context
// as raw JSON.
type ActivityLog struct {
	ID         uuid.UUID       `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}
