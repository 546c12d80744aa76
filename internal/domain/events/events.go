// Package events defines domain events that represent significant catalog occurrences.
// Events are immutable facts about what happened in the past.
//
// Pattern: Domain Events
// - Events are collected by use cases while a Unit of Work is running
// - They are published only after the transaction has committed
// - Subscribers (search indexer, mailer, analytics) react asynchronously
package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the base interface for all domain events.
// All events must have an ID, timestamp, and type.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() int64 // ID of the entity that raised this event
}

// BaseEvent provides common fields for all events.
// Embedded in specific event types to avoid duplication (DRY).
type BaseEvent struct {
	eventID     uuid.UUID
	eventType   string
	occurredAt  time.Time
	aggregateID int64
}

func newBaseEvent(eventType string, aggregateID int64) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New(),
		eventType:   eventType,
		occurredAt:  time.Now().UTC(),
		aggregateID: aggregateID,
	}
}

func (e BaseEvent) EventID() uuid.UUID {
	return e.eventID
}

func (e BaseEvent) EventType() string {
	return e.eventType
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e BaseEvent) AggregateID() int64 {
	return e.aggregateID
}

// Event Types (constants for type checking)
const (
	EventTypeProductCreated = "product.created"
	EventTypeProductDeleted = "product.deleted"
	EventTypeUserCreated    = "user.created"
	EventTypeUserDeleted    = "user.deleted"
	EventTypeUserActivated  = "user.activated"
)

// ===== Product Events =====

// ProductCreated is raised when the product composition workflow commits.
type ProductCreated struct {
	BaseEvent
	ProductName string
	CategoryID  *int64
	VendorID    *int64
	PhotoCount  int
}

func NewProductCreated(productID int64, name string, categoryID, vendorID *int64, photoCount int) *ProductCreated {
	return &ProductCreated{
		BaseEvent:   newBaseEvent(EventTypeProductCreated, productID),
		ProductName: name,
		CategoryID:  categoryID,
		VendorID:    vendorID,
		PhotoCount:  photoCount,
	}
}

// ProductDeleted is raised after a product and its owned rows were removed.
type ProductDeleted struct {
	BaseEvent
	ProductName string
}

func NewProductDeleted(productID int64, name string) *ProductDeleted {
	return &ProductDeleted{
		BaseEvent:   newBaseEvent(EventTypeProductDeleted, productID),
		ProductName: name,
	}
}

// ===== User Events =====

// UserCreated is raised when a new user is created.
type UserCreated struct {
	BaseEvent
	Email    string
	FullName string
}

func NewUserCreated(userID int64, email, fullName string) *UserCreated {
	return &UserCreated{
		BaseEvent: newBaseEvent(EventTypeUserCreated, userID),
		Email:     email,
		FullName:  fullName,
	}
}

// UserDeleted is raised after a user was removed and its relations unbound.
type UserDeleted struct {
	BaseEvent
	Email string
}

func NewUserDeleted(userID int64, email string) *UserDeleted {
	return &UserDeleted{
		BaseEvent: newBaseEvent(EventTypeUserDeleted, userID),
		Email:     email,
	}
}

// UserActivated is raised when the activation link was followed.
type UserActivated struct {
	BaseEvent
}

func NewUserActivated(userID int64) *UserActivated {
	return &UserActivated{BaseEvent: newBaseEvent(EventTypeUserActivated, userID)}
}
