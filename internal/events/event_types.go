package events

import (
	"time"

	"github.com/spec-kit/storefront-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventProductCreated         EventType = "product_created"
	EventProductDeleted         EventType = "product_deleted"
	EventProductFeaturedToggled EventType = "product_featured_toggled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// ProductCreatedPayload payload.
type ProductCreatedPayload struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Featured bool    `json:"featured"`
}

// ProductDeletedPayload payload.
type ProductDeletedPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ProductFeaturedToggledPayload payload.
type ProductFeaturedToggledPayload struct {
	Name     string `json:"name"`
	Featured bool   `json:"featured"`
}
