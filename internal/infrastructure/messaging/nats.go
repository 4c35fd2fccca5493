package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
)

// Options параметры подключения к NATS
type Options struct {
	URL            string
	Subject        string // префикс, события идут в <Subject>.gate, итоги в <Subject>.pass
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// Publisher рассылает события гейта и итоги проходов в NATS
type Publisher struct {
	conn    *nats.Conn
	pub     publisher
	subject string
	log     zerolog.Logger
}

// Connect подключается к NATS
func Connect(opts Options, logger zerolog.Logger) (*Publisher, error) {
	natsOpts := []nats.Option{
		nats.Name("ppe-gate"),
		nats.Timeout(opts.ConnectTimeout),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.MaxReconnects(opts.MaxReconnects),
	}

	conn, err := nats.Connect(opts.URL, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", opts.URL, err)
	}

	p := newPublisher(conn, opts.Subject, logger)
	p.conn = conn
	p.log.Info().Str("url", opts.URL).Str("subject", opts.Subject).Msg("NATS connection established")
	return p, nil
}

func newPublisher(pub publisher, subject string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		pub:     pub,
		subject: subject,
		log:     logger.With().Str("component", "nats").Logger(),
	}
}

// GateSubject тема событий гейта
func (p *Publisher) GateSubject() string {
	return p.subject + ".gate"
}

// PassSubject тема итогов проходов
func (p *Publisher) PassSubject() string {
	return p.subject + ".pass"
}

// NotifyGateEvent публикует событие гейта
func (p *Publisher) NotifyGateEvent(_ context.Context, event entity.GateEvent) error {
	return p.publish(p.GateSubject(), event)
}

// NotifyOutcome публикует итог прохода
func (p *Publisher) NotifyOutcome(_ context.Context, outcome entity.PassOutcome) error {
	return p.publish(p.PassSubject(), outcome)
}

func (p *Publisher) publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if err := p.pub.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// IsConnected true, если соединение живо
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Shutdown дожидается отправки буфера и закрывает соединение
func (p *Publisher) Shutdown(ctx context.Context) error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
		p.conn.Close()
	}
	return nil
}

var _ port.Notifier = (*Publisher)(nil)
