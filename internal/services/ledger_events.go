package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/bhavisyaji/backend/internal/models"
)

const (
	LedgerEventsQueue   = "ledger_events"
	LedgerEventsSubject = "ledger.transactions.created"
)

// EventPublisher announces committed ledger transactions to downstream
// consumers. Publishing happens after commit and never undoes a mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LedgerEvent) error
}

type RedisEventPublisher struct {
	rdb   *redis.Client
	queue string
}

func NewRedisEventPublisher(rdb *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{rdb: rdb, queue: LedgerEventsQueue}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, event models.LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal ledger event: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("push ledger event: %w", err)
	}
	return nil
}

// natsConn is the slice of *nats.Conn the publisher needs.
type natsConn interface {
	Publish(subject string, data []byte) error
}

type NatsEventPublisher struct {
	nc      natsConn
	subject string
}

func NewNatsEventPublisher(nc natsConn) *NatsEventPublisher {
	return &NatsEventPublisher{nc: nc, subject: LedgerEventsSubject}
}

func (p *NatsEventPublisher) Publish(_ context.Context, event models.LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal ledger event: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish ledger event: %w", err)
	}
	return nil
}

type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, models.LedgerEvent) error { return nil }
