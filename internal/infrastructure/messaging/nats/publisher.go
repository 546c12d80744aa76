// Package nats публикует domain events и письма активации в NATS.
//
// Subjects:
//   - <prefix>.<event_type>  (например, storehub.product.created)
//   - <mail subject>         (очередь писем, читается отдельным mail worker)
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/events"
)

// Conn - часть *nats.Conn, которая нужна publisher'у.
type Conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// Config - настройки публикации.
type Config struct {
	URL           string
	SubjectPrefix string
	MailSubject   string
}

// Envelope - формат сообщения на проводе.
type Envelope struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID int64           `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// ActivationMail - сообщение очереди писем.
type ActivationMail struct {
	To   string `json:"to"`
	Link string `json:"link"`
}

// Publisher реализует ports.EventPublisher и ports.Mailer.
type Publisher struct {
	conn   Conn
	cfg    Config
	logger *slog.Logger
}

var (
	_ ports.EventPublisher = (*Publisher)(nil)
	_ ports.Mailer         = (*Publisher)(nil)
)

// Connect подключается к NATS и возвращает publisher и функцию закрытия.
func Connect(cfg Config, logger *slog.Logger) (*Publisher, func(), error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("storehub"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil && logger != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return New(nc, cfg, logger), nc.Close, nil
}

// New wraps an existing connection.
func New(conn Conn, cfg Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "storehub"
	}
	if cfg.MailSubject == "" {
		cfg.MailSubject = cfg.SubjectPrefix + ".mail.activation"
	}
	return &Publisher{conn: conn, cfg: cfg, logger: logger}
}

// Ping делает round-trip до сервера (readiness check).
func (p *Publisher) Ping(ctx context.Context) error {
	return p.conn.FlushWithContext(ctx)
}

// Subject returns the subject an event type is published to.
func (p *Publisher) Subject(eventType string) string {
	return p.cfg.SubjectPrefix + "." + eventType
}

// Publish отправляет событие в <prefix>.<event_type>.
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	data, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.Subject(event.EventType()), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType(), err)
	}
	p.logger.DebugContext(ctx, "event published",
		"event_type", event.EventType(),
		"aggregate_id", event.AggregateID(),
	)
	return nil
}

// PublishBatch публикует события по порядку и делает flush.
func (p *Publisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	for _, e := range evts {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	if len(evts) == 0 {
		return nil
	}
	return p.conn.FlushWithContext(ctx)
}

// SendActivationMail ставит письмо активации в очередь.
func (p *Publisher) SendActivationMail(ctx context.Context, to, link string) error {
	data, err := json.Marshal(ActivationMail{To: to, Link: link})
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.cfg.MailSubject, data); err != nil {
		return fmt.Errorf("failed to queue activation mail: %w", err)
	}
	return nil
}

func encode(event events.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", event.EventType(), err)
	}
	return json.Marshal(Envelope{
		ID:          event.EventID().String(),
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     payload,
	})
}
