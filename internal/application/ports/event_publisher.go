// Package ports - EventPublisher для публикации domain events.
//
// Pattern: Publisher/Subscriber (Observer на уровне инфраструктуры)
package ports

import (
	"context"

	"github.com/Haleralex/storehub/internal/domain/events"
)

// EventPublisher определяет контракт для публикации domain events.
//
// Реализации:
// - NATS (messaging/nats)
// - No-op (если брокер не сконфигурирован)
//
// Use cases вызывают Publish только из AfterCommit hook:
// откаченная операция ничего не анонсирует.
type EventPublisher interface {
	// Publish публикует одно событие.
	//
	// Behaviour:
	// - At-least-once delivery (может быть дубликаты)
	// - Consumers должны быть идемпотентными!
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch публикует несколько событий за один вызов.
	// Останавливается на первой ошибке.
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// NopEventPublisher drops every event.
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, events.DomainEvent) error { return nil }

func (NopEventPublisher) PublishBatch(context.Context, []events.DomainEvent) error { return nil }
