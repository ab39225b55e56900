package model

import (
	"time"

	"github.com/google/uuid"
)

// Change event kinds published to the record-change exchange.
const (
	EventProjectCreated  = "project.created"
	EventProjectUpdated  = "project.updated"
	EventProjectDeleted  = "project.deleted"
	EventTaskUpdated     = "task.updated"
	EventExpenseRecorded = "expense.recorded"
	EventDispatchRecorded = "material.dispatch_recorded"
)

// ChangeEvent describes one mutation of the record store, published
// best-effort for downstream consumers.
type ChangeEvent struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	ProjectID string    `json:"project_id"`
	Payload   any       `json:"payload,omitempty"`
	At        time.Time `json:"at"`
}

// NewChangeEvent stamps a ChangeEvent with a fresh ID and time.
func NewChangeEvent(kind, projectID string, payload any) ChangeEvent {
	return ChangeEvent{
		ID:        uuid.New(),
		Kind:      kind,
		ProjectID: projectID,
		Payload:   payload,
		At:        time.Now().UTC(),
	}
}
