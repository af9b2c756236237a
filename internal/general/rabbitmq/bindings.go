package rabbitmq

import amqp "github.com/rabbitmq/amqp091-go"

const (
	// TickExchange carries one message per finalized tick.
	TickExchange = "dispatch_topic"

	// TickSnapshotRoutingKey is the routing key every tick snapshot is
	// published under.
	TickSnapshotRoutingKey = "tick.snapshot"

	tickSnapshotQueue = "dispatch.tick_snapshot"
)

// declareTopology declares the exchange, queue and binding the
// tick-snapshot tee uses. Idempotent: declaring an already-existing
// exchange/queue with matching arguments is a no-op.
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(TickExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(tickSnapshotQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	return ch.QueueBind(q.Name, TickSnapshotRoutingKey, TickExchange, false, nil)
}
