package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"dispatch-sim/internal/general/config"
	"dispatch-sim/internal/general/logger"
)

// Client wraps an amqp091 connection/channel pair with auto-reconnect and
// publisher confirms. Used only when the tick-snapshot tee is enabled
// (--rabbitmq); the core simulation never blocks on it.
type Client struct {
	log  *logger.Logger
	dsn  string

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// Connect dials RabbitMQ, declares the tick-snapshot topology, and starts a
// background watcher that reconnects on unexpected closure.
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)

	c := &Client{log: log, dsn: dsn}
	if err := c.connectOnce(ctx); err != nil {
		return nil, err
	}

	go c.watch(ctx)
	return c, nil
}

func (c *Client) connectOnce(ctx context.Context) error {
	conn, err := amqp.Dial(c.dsn)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("enable publisher confirms: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare topology: %w", err)
	}

	c.mu.Lock()
	c.conn, c.channel = conn, ch
	c.mu.Unlock()

	c.log.Info(ctx, "rabbitmq_connected", "connected to rabbitmq", nil)
	return nil
}

// watch reconnects with exponential backoff whenever the connection drops,
// until ctx is cancelled or Close is called.
func (c *Client) watch(ctx context.Context) {
	notify := c.currentConn().NotifyClose(make(chan *amqp.Error, 1))
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-notify:
			if !ok {
				return
			}
			c.mu.RLock()
			closed := c.closed
			c.mu.RUnlock()
			if closed {
				return
			}

			c.log.Error(ctx, "rabbitmq_connection_lost", "rabbitmq connection closed, reconnecting", err, nil)
			for {
				if ctx.Err() != nil {
					return
				}
				if rerr := c.connectOnce(ctx); rerr == nil {
					backoff = time.Second
					notify = c.currentConn().NotifyClose(make(chan *amqp.Error, 1))
					break
				}
				time.Sleep(backoff)
				if backoff < 30*time.Second {
					backoff *= 2
				}
			}
		}
	}
}

func (c *Client) currentConn() *amqp.Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

func (c *Client) currentChannel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close shuts the connection down for good.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}
