package domain

import "context"

// EventPublisher publishes domain events, transactionally when a tx is
// available (outbox pattern).
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
	PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error
}
