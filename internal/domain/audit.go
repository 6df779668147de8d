package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies the operator that created or last touched a record.
type ActorRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AuditMetadata is carried by every aggregate root. The persistence layer
// fills CreatedAt/UpdatedAt; services fill the actor refs from the request
// context.
type AuditMetadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy ActorRef  `json:"createdBy"`
	UpdatedBy ActorRef  `json:"updatedBy"`
}
