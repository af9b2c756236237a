package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the narrow interface the dispatch tick driver depends on, so
// a disabled run can wire in a no-op implementation instead of a real
// client.
type Publisher interface {
	PublishTickSnapshot(ctx context.Context, snapshot any) error
}

// NoopPublisher discards every snapshot. Used when --rabbitmq is not set,
// so the tick loop never has a nil check sprinkled through it.
type NoopPublisher struct{}

func (NoopPublisher) PublishTickSnapshot(context.Context, any) error { return nil }

// MQPublisher publishes tick snapshots as JSON to TickExchange.
type MQPublisher struct {
	Client *Client
}

// PublishTickSnapshot marshals snapshot and publishes it with a persistent
// delivery mode, waiting for the broker's confirm up to 5 seconds.
func (p *MQPublisher) PublishTickSnapshot(ctx context.Context, snapshot any) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal tick snapshot: %w", err)
	}

	ch := p.Client.currentChannel()
	if ch == nil {
		return fmt.Errorf("rabbitmq channel not ready")
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, TickExchange, TickSnapshotRoutingKey, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish tick snapshot: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ok, err := confirm.WaitContext(waitCtx)
	if err != nil {
		return fmt.Errorf("wait for publish confirm: %w", err)
	}
	if !ok {
		return fmt.Errorf("broker nacked tick snapshot publish")
	}
	return nil
}
